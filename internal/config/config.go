// Package config loads optional defaults from an iborb.yaml file,
// merging them underneath whatever flags the command line supplies.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds defaults that would otherwise have to be repeated on
// every invocation: include/define lists and the output directory.
type Config struct {
	OutputDir    string   `yaml:"outputDir"`
	Includes     []string `yaml:"includes"`
	Defines      []string `yaml:"defines"`
	NoPreprocess bool     `yaml:"noPreprocess"`
	WithDoxygen  bool     `yaml:"withDoxygen"`
}

// New returns a zero-value Config; absent any loaded file, every field
// stays at its Go zero value and the CLI's own flag defaults apply.
func New() *Config {
	return &Config{}
}

// LoadFile reads path as YAML and merges it into c. A loaded list field
// replaces the default rather than appending, mirroring how command
// line flags are expected to override rather than accumulate.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing YAML config: %w", err)
	}
	c.merge(&loaded)
	return nil
}

func (c *Config) merge(loaded *Config) {
	if loaded.OutputDir != "" {
		c.OutputDir = loaded.OutputDir
	}
	if len(loaded.Includes) > 0 {
		c.Includes = loaded.Includes
	}
	if len(loaded.Defines) > 0 {
		c.Defines = loaded.Defines
	}
	if loaded.NoPreprocess {
		c.NoPreprocess = true
	}
	if loaded.WithDoxygen {
		c.WithDoxygen = true
	}
}
