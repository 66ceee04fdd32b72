// Package config loads the optional concretegen.yaml that sits next to the
// annotated sources. Everything in it has a working default; a missing file
// is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the scanned directory.
const DefaultFileName = "concretegen.yaml"

// DefaultSuffix is the filename suffix of generated files. The scanner skips
// files with this suffix, so generation is idempotent.
const DefaultSuffix = ".gen.go"

// Config carries generator settings.
type Config struct {
	Output Output `yaml:"output"`
	// Packages registers import paths whose last identifier (or explicit
	// alias) may be used as shorthand in type-path tags.
	Packages []PackageAlias `yaml:"packages" validate:"dive"`
	// Dispatch declares bridges in addition to the in-source directives.
	Dispatch []DispatchRule `yaml:"dispatch" validate:"dive"`
}

type Output struct {
	// Suffix overrides DefaultSuffix. It must keep a .go extension for the
	// generated files to compile.
	Suffix string `yaml:"suffix"`
}

type PackageAlias struct {
	Path  string `yaml:"path" validate:"required"`
	Alias string `yaml:"alias"`
}

type DispatchRule struct {
	Enums []string `yaml:"enums" validate:"min=1,max=5,dive,required"`
	Func  string   `yaml:"func" validate:"required"`
	Name  string   `yaml:"name"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Output: Output{Suffix: DefaultSuffix}}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Output.Suffix == "" {
		cfg.Output.Suffix = DefaultSuffix
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir loads the config file from dir, falling back to defaults when the
// file does not exist.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Aliases returns the registered shorthand-to-import-path table. An entry
// without an explicit alias uses the path's last segment.
func (c *Config) Aliases() map[string]string {
	if len(c.Packages) == 0 {
		return nil
	}
	aliases := make(map[string]string, len(c.Packages))
	for _, p := range c.Packages {
		alias := p.Alias
		if alias == "" {
			alias = filepath.Base(p.Path)
		}
		aliases[alias] = p.Path
	}
	return aliases
}
