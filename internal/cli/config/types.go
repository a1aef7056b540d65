// Package config provides configuration management for the ifclint CLI.
//
// Values are merged from defaults, an ifclint.yaml file, IFCLINT_
// environment variables and command-line flags, in increasing order of
// precedence.
package config

import (
	"github.com/leapstack-labs/ifclint/internal/engine"
	"github.com/leapstack-labs/ifclint/pkg/report"
	"github.com/leapstack-labs/ifclint/pkg/storey"
)

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool   `koanf:"verbose" yaml:"verbose"`
	OutputFormat string `koanf:"output" yaml:"output"`
	Author       string `koanf:"author" yaml:"author"`

	// ModelsDir is scanned for model pairs when no model is named.
	ModelsDir string `koanf:"models_dir" yaml:"models_dir"`
	// Report is the BCF file written by check.
	Report string `koanf:"report" yaml:"report"`
	// Reference is an architectural model measured for expected floor levels.
	Reference string `koanf:"reference" yaml:"reference,omitempty"`

	Categories    []string `koanf:"categories" yaml:"categories"`
	Workers       int      `koanf:"workers" yaml:"workers"`
	TieBreak      string   `koanf:"tie_break" yaml:"tie_break"`
	StoreyCeiling float64  `koanf:"storey_ceiling" yaml:"storey_ceiling"`
	DisabledRules []string `koanf:"disabled_rules" yaml:"disabled_rules"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// Default configuration values.
const (
	DefaultModelsDir = "."
	DefaultReport    = "structural_issues.bcfzip"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultAuthor    = report.DefaultAuthor
	DefaultTieBreak  = string(storey.TieLowest)
	DefaultCeiling   = storey.DefaultCeiling
)

// ConfigFileNames are the file names searched for, in order.
var ConfigFileNames = []string{"ifclint.yaml", "ifclint.yml"}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		OutputFormat:  DefaultOutput,
		Author:        DefaultAuthor,
		ModelsDir:     DefaultModelsDir,
		Report:        DefaultReport,
		Categories:    append([]string(nil), engine.DefaultCategories...),
		TieBreak:      DefaultTieBreak,
		StoreyCeiling: DefaultCeiling,
		DisabledRules: []string{},
	}
}

// EngineConfig converts the CLI settings for one structural model into
// an engine configuration. A configured Reference takes precedence over
// the fallback reference, usually the model's architectural sibling.
func (c *Config) EngineConfig(modelPath, fallbackReference string) engine.Config {
	reference := c.Reference
	if reference == "" {
		reference = fallbackReference
	}
	return engine.Config{
		ModelPath:     modelPath,
		ReferencePath: reference,
		Categories:    c.Categories,
		Workers:       c.Workers,
		TieBreak:      c.TieBreak,
		StoreyCeiling: c.StoreyCeiling,
		DisabledRules: c.DisabledRules,
		Author:        c.Author,
	}
}
