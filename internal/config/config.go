package config

import (
	"encoding/json"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"cairogen/errors"
)

// Config represents the complete configuration of one compilation.
type Config struct {
	Package       string            `yaml:"package" json:"package"`
	Contract      string            `yaml:"contract" json:"contract"`
	RuntimeImport string            `yaml:"runtimeImport" json:"runtimeImport"`
	Template      string            `yaml:"template" json:"template"`
	Aliases       map[string]string `yaml:"aliases" json:"aliases"`
	Derives       []string          `yaml:"derives" json:"derives"`
}

// New creates a new Config with default values.
func New() *Config {
	opts := DefaultOptions()
	return &opts
}

// LoadFile loads configuration from a file (YAML or JSON based on extension).
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.InvalidConfig(path, fmt.Errorf("reading config file: %w", err))
	}

	ext := strings.ToLower(filepath.Ext(path))

	var loaded Config
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return errors.InvalidConfig(path, fmt.Errorf("parsing YAML config: %w", err))
		}
	case ".json":
		if err := json.Unmarshal(data, &loaded); err != nil {
			return errors.InvalidConfig(path, fmt.Errorf("parsing JSON config: %w", err))
		}
	default:
		// Try YAML first, then JSON
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			if err := json.Unmarshal(data, &loaded); err != nil {
				return errors.InvalidConfig(path, fmt.Errorf("unable to parse config as YAML or JSON"))
			}
		}
	}

	c.Merge(&loaded)
	return c.Validate(path)
}

// Merge overlays the non-empty values of other onto c. Aliases are merged
// per key; a non-empty derive list replaces the current one.
func (c *Config) Merge(other *Config) {
	if other.Package != "" {
		c.Package = other.Package
	}
	if other.Contract != "" {
		c.Contract = other.Contract
	}
	if other.RuntimeImport != "" {
		c.RuntimeImport = other.RuntimeImport
	}
	if other.Template != "" {
		c.Template = other.Template
	}
	if len(other.Aliases) > 0 {
		if c.Aliases == nil {
			c.Aliases = make(map[string]string, len(other.Aliases))
		}
		for k, v := range other.Aliases {
			c.Aliases[k] = v
		}
	}
	if len(other.Derives) > 0 {
		c.Derives = append([]string(nil), other.Derives...)
	}
}

// Validate checks the values that end up verbatim in generated code. source
// names the origin of the configuration in errors.
func (c *Config) Validate(source string) error {
	if !token.IsIdentifier(c.Package) {
		return errors.InvalidConfig(source, fmt.Errorf("package %q is not a valid Go identifier", c.Package))
	}
	if c.RuntimeImport == "" {
		return errors.InvalidConfig(source, fmt.Errorf("runtime import path is empty"))
	}
	for _, d := range c.Derives {
		if d == "" || strings.IndexFunc(d, unicode.IsSpace) >= 0 {
			return errors.InvalidConfig(source, fmt.Errorf("derive %q must be a non-empty word", d))
		}
	}
	return nil
}
