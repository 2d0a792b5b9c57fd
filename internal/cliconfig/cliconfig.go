// Package cliconfig loads .minic.yaml, supplying default flag values for
// the minic-front and minic-back commands (§6). Both commands mark
// --in, --out and --log as required flags, so from the command line the
// config's in/out/log values never take effect; the dialect value does,
// as minic-back's --isa default.
package cliconfig

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Config holds default values for the --in/--out/--log flags and the
// ISA dialect file.
type Config struct {
	In      string `yaml:"in,omitempty"`
	Out     string `yaml:"out,omitempty"`
	Log     string `yaml:"log,omitempty"`
	Dialect string `yaml:"dialect,omitempty"` // path to an isa.LoadTOML override file
}

// DefaultNames are the filenames Find searches for, nearest directory
// first.
var DefaultNames = []string{".minic.yaml", ".minic.yml"}

// Find walks up from dir looking for one of DefaultNames, returning the
// first match or an error if none exists before the filesystem root.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range DefaultNames {
			candidate := filepath.Join(abs, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", os.ErrNotExist
		}
		abs = parent
	}
}

// Load reads and parses a .minic.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadNearest finds and loads the nearest config starting from dir. It
// returns a zero Config, not an error, when no config file exists —
// callers fall back entirely to explicit flags in that case.
func LoadNearest(dir string) (*Config, error) {
	path, err := Find(dir)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// ApplyDefaults fills any of in/out/log/dialect that the caller left
// empty with the config's value, leaving explicitly-set flags alone.
func (c *Config) ApplyDefaults(in, out, log, dialect string) (resIn, resOut, resLog, resDialect string) {
	resIn, resOut, resLog, resDialect = in, out, log, dialect
	if resIn == "" {
		resIn = c.In
	}
	if resOut == "" {
		resOut = c.Out
	}
	if resLog == "" {
		resLog = c.Log
	}
	if resDialect == "" {
		resDialect = c.Dialect
	}
	return
}
