package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// pyproject mirrors the part of pyproject.toml that napcheck reads.
type pyproject struct {
	Tool struct {
		Napcheck *Config `toml:"napcheck"`
	} `toml:"tool"`
}

// FromTOML parses a standalone napcheck TOML configuration.
func FromTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}

	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}

	return cfg, nil
}

// FromPyproject extracts the [tool.napcheck] table from a pyproject.toml
// document. It returns nil and no error when the table is absent.
func FromPyproject(data []byte) (*Config, error) {
	var doc pyproject
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parse pyproject.toml: %w", err)
	}

	cfg := doc.Tool.Napcheck
	if cfg != nil && cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}

	return cfg, nil
}

// ToTOML serializes the configuration as a [tool.napcheck] table suitable
// for pasting into pyproject.toml.
func (c *Config) ToTOML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var doc pyproject
	doc.Tool.Napcheck = c

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return buf.Bytes(), nil
}
