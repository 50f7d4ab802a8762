// Package config loads the optional duckymux.yaml supervisor config,
// reading a YAML file and overlaying the package's defaults onto
// whatever it leaves unset.
package config

import (
	"os"

	"github.com/itzmetanjim/duckymux/internal/supervisor"
	"gopkg.in/yaml.v3"
)

// DefaultInterpreter is used for any child without a per-app override.
const DefaultInterpreter = "python3"

// DefaultAppsDir is the directory scanned for child programs.
const DefaultAppsDir = "apps"

// DefaultExtension is the file extension child programs must carry.
const DefaultExtension = ".py"

// Config is the parsed contents of duckymux.yaml.
type Config struct {
	// AppsDir overrides the directory scanned for child programs.
	AppsDir string `yaml:"apps_dir"`
	// Extension overrides the file extension child programs must carry.
	Extension string `yaml:"extension"`
	// Interpreter is the default interpreter binary for any child without
	// an entry in Interpreters.
	Interpreter string `yaml:"interpreter"`
	// Interpreters maps a child's discovered filename to the interpreter
	// binary it should be launched with, overriding Interpreter.
	Interpreters map[string]string `yaml:"interpreters"`
}

// Load reads and parses path. A missing file is not an error: it yields the
// zero Config, which Resolved fills in with the package defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Resolved returns a copy of c with every unset field replaced by its
// package default.
func (c Config) Resolved() Config {
	if c.AppsDir == "" {
		c.AppsDir = DefaultAppsDir
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.Interpreter == "" {
		c.Interpreter = DefaultInterpreter
	}
	return c
}

// Interpreters resolves the interpreter binary and argv for a discovered
// child program, implementing supervisor.Interpreter. programPath is
// passed as the sole argument: argv[0] is the interpreter, argv[1] is the
// program path.
type Interpreters struct {
	Default  string
	PerChild map[string]string
}

// NewInterpreters builds an Interpreters resolver from a resolved Config.
func NewInterpreters(c Config) Interpreters {
	return Interpreters{Default: c.Interpreter, PerChild: c.Interpreters}
}

// For implements supervisor.Interpreter.
func (in Interpreters) For(name supervisor.ChildName, programPath string) (string, []string) {
	bin := in.Default
	if override, ok := in.PerChild[string(name)]; ok && override != "" {
		bin = override
	}
	return bin, []string{programPath}
}
