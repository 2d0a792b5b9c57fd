// Package compilerrors formats compiler diagnostics with source context
// and a caret pointing at the offending column (§7), adapted from the
// teacher's error-formatting package and retargeted at this compiler's
// four error kinds instead of DWScript's runtime exceptions.
package compilerrors

import (
	"fmt"
	"strings"

	"github.com/minic-lang/minic/pkg/token"
)

// Kind classifies a CompilerError per §7.
type Kind string

const (
	Lexical              Kind = "LexicalError"
	Syntax               Kind = "SyntaxError"
	UnresolvedIdentifier Kind = "UnresolvedIdentifier"
	IO                    Kind = "IoError"
)

// CompilerError is a single diagnostic with enough context to print the
// offending source line and a caret under the exact column.
type CompilerError struct {
	Kind    Kind
	Pos     token.Position
	Message string
	Source  string
	File    string
}

func New(kind Kind, pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Kind: kind, Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface with the single-line form
// `<file>:<line>:<col>: <kind>: <message>` the driver prints per §7's
// no-recovery policy.
func (e *CompilerError) Error() string {
	file := e.File
	if file == "" {
		file = "<stdin>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", file, e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
}

// Format renders the diagnostic with the offending source line and a
// caret underneath the error column, teacher-style.
func (e *CompilerError) Format() string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		sb.WriteString("^\n")
	}

	fmt.Fprintf(&sb, "%s: %s", e.Kind, e.Message)
	return sb.String()
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll formats multiple errors back to back, each followed by a
// blank line — used when a caller wants full context even though the
// core's no-recovery policy means there is normally exactly one.
func FormatAll(errs []*CompilerError) string {
	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString(e.Format())
		sb.WriteString("\n\n")
	}
	return sb.String()
}
