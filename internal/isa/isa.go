// Package isa describes the stack-machine instruction set the code
// generator targets (§4.3): a fixed mnemonic vocabulary, expressed as a
// Set so that an alternate assembler dialect can be loaded from a TOML
// file instead of hard-coding the spec's own spelling.
package isa

import (
	"github.com/BurntSushi/toml"

	"github.com/minic-lang/minic/pkg/token"
)

// Set names every mnemonic and register the generator emits. Default
// holds the spelling documented in §4.3; a dialect file loaded with
// LoadTOML may override any subset of these — any field left blank in
// the file keeps its Default value.
type Set struct {
	Push  string `toml:"push"`
	PushR string `toml:"pushr"`
	PopR  string `toml:"popr"`
	PushM string `toml:"pushm"`
	PopM  string `toml:"popm"`

	Add string `toml:"add"`
	Sub string `toml:"sub"`
	Mul string `toml:"mul"`
	Div string `toml:"div"`
	Pow string `toml:"pow"`
	Sqr string `toml:"sqr"`
	Or  string `toml:"or"`
	And string `toml:"and"`

	In  string `toml:"in"`
	Out string `toml:"out"`

	Jmp string `toml:"jmp"`
	Je  string `toml:"je"`
	Jne string `toml:"jne"`
	Ja  string `toml:"ja"`
	Jb  string `toml:"jb"`
	Jae string `toml:"jae"`
	Jbe string `toml:"jbe"`

	Call string `toml:"call"`
	Ret  string `toml:"ret"`
	Hlt  string `toml:"hlt"`

	RegA0 string `toml:"reg_a0"`
	RegSP string `toml:"reg_sp"`
}

// Default is the mnemonic set documented in §4.3 verbatim.
var Default = Set{
	Push:  "PUSH",
	PushR: "PUSHR",
	PopR:  "POPR",
	PushM: "PUSHM",
	PopM:  "POPM",

	Add: "ADD",
	Sub: "SUB",
	Mul: "MUL",
	Div: "DIV",
	Pow: "POW",
	Sqr: "SQR",
	Or:  "OR",
	And: "AND",

	In:  "IN",
	Out: "OUT",

	Jmp: "JMP",
	Je:  "JE",
	Jne: "JNE",
	Ja:  "JA",
	Jb:  "JB",
	Jae: "JAE",
	Jbe: "JBE",

	Call: "CALL",
	Ret:  "RET",
	Hlt:  "HLT",

	RegA0: "A0",
	RegSP: "SP",
}

// LoadTOML reads a dialect-override file and returns a Set starting
// from Default with every mnemonic the file specifies overlaid on top.
func LoadTOML(path string) (Set, error) {
	set := Default
	var overlay Set
	if _, err := toml.DecodeFile(path, &overlay); err != nil {
		return Set{}, err
	}
	overlayInto(&set, overlay)
	return set, nil
}

func overlayInto(dst *Set, src Set) {
	fields := []struct {
		dst *string
		src string
	}{
		{&dst.Push, src.Push}, {&dst.PushR, src.PushR}, {&dst.PopR, src.PopR},
		{&dst.PushM, src.PushM}, {&dst.PopM, src.PopM},
		{&dst.Add, src.Add}, {&dst.Sub, src.Sub}, {&dst.Mul, src.Mul},
		{&dst.Div, src.Div}, {&dst.Pow, src.Pow}, {&dst.Sqr, src.Sqr},
		{&dst.Or, src.Or}, {&dst.And, src.And},
		{&dst.In, src.In}, {&dst.Out, src.Out},
		{&dst.Jmp, src.Jmp}, {&dst.Je, src.Je}, {&dst.Jne, src.Jne},
		{&dst.Ja, src.Ja}, {&dst.Jb, src.Jb}, {&dst.Jae, src.Jae}, {&dst.Jbe, src.Jbe},
		{&dst.Call, src.Call}, {&dst.Ret, src.Ret}, {&dst.Hlt, src.Hlt},
		{&dst.RegA0, src.RegA0}, {&dst.RegSP, src.RegSP},
	}
	for _, f := range fields {
		if f.src != "" {
			*f.dst = f.src
		}
	}
}

// Jump returns the conditional-jump mnemonic for a comparison token type
// (EQ, NEQ, GT, LT, GEQ, LEQ) per §4.3's `<J*>` table.
func (s Set) Jump(t token.Type) string {
	switch t {
	case token.EQ:
		return s.Je
	case token.NEQ:
		return s.Jne
	case token.GT:
		return s.Ja
	case token.LT:
		return s.Jb
	case token.GEQ:
		return s.Jae
	case token.LEQ:
		return s.Jbe
	default:
		return ""
	}
}

// Arith returns the arithmetic/logical opcode mnemonic for a binary
// operator token type (+ - * / ^ | &); §4.3 documents the first five,
// OR/AND follow the identical "emit left, emit right, emit opcode"
// shape since the grammar gives them no other form.
func (s Set) Arith(t token.Type) string {
	switch t {
	case token.ADD:
		return s.Add
	case token.SUB:
		return s.Sub
	case token.MUL:
		return s.Mul
	case token.DIV:
		return s.Div
	case token.POW:
		return s.Pow
	case token.OR:
		return s.Or
	case token.AND:
		return s.And
	default:
		return ""
	}
}

// IsComparison reports whether t is one of the six comparison operators
// that use the 0/1-materializing jump idiom rather than a direct opcode.
func IsComparison(t token.Type) bool {
	switch t {
	case token.EQ, token.NEQ, token.GT, token.LT, token.GEQ, token.LEQ:
		return true
	}
	return false
}
