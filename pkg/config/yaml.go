package config

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlIndent matches the indentation of the generated .napcheck.yaml.
const yamlIndent = 2

// FromYAML parses a .napcheck.yaml document.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}
	return &cfg, nil
}

// WriteYAML writes c as a .napcheck.yaml document. Each line of comment is
// written above the document as a "#" comment. CLI-only fields such as
// Format and Jobs are not part of the file format and are left out.
func (c *Config) WriteYAML(w io.Writer, comment string) error {
	if comment != "" {
		for line := range strings.Lines(comment) {
			line = strings.TrimRight(line, "\n")
			if !strings.HasPrefix(line, "#") {
				line = "# " + line
			}
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// Clone returns a copy of c that shares no slices or rule settings with it.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Ignore = slices.Clone(c.Ignore)
	clone.Extensions = slices.Clone(c.Extensions)
	clone.EnableRules = slices.Clone(c.EnableRules)
	clone.DisableRules = slices.Clone(c.DisableRules)
	if c.Rules != nil {
		clone.Rules = make(map[string]RuleConfig, len(c.Rules))
		for id, rc := range c.Rules {
			clone.Rules[id] = rc.Clone()
		}
	}
	return &clone
}

// Clone copies the pointers and the top level of Options; values nested
// inside Options stay shared.
func (rc RuleConfig) Clone() RuleConfig {
	return RuleConfig{
		Enabled:  clonePtr(rc.Enabled),
		Severity: clonePtr(rc.Severity),
		Options:  maps.Clone(rc.Options),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
