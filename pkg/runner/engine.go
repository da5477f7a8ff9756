package runner

import (
	"fmt"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/docstring"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/pyast"
	"github.com/yaklabco/napcheck/pkg/rst"
)

// NewEngine assembles a lint engine from the concrete parser, normalizer
// and markup checker selected by cfg. origin is stamped on every
// diagnostic.
func NewEngine(cfg *config.Config, registry *lint.Registry, origin string) (*lint.Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	normalizer, err := docstring.ForConvention(string(cfg.Convention))
	if err != nil {
		return nil, err
	}

	level := rst.LevelWarning
	if cfg.ReportLevel != "" {
		level, err = rst.ParseLevel(string(cfg.ReportLevel))
		if err != nil {
			return nil, fmt.Errorf("report_level: %w", err)
		}
	}

	parser := pyast.NewParser()
	checker := rst.NewChecker()
	checker.MinLevel = level
	parser.RegisterCodeCheckers(checker)

	engine := lint.NewEngine(parser, registry, normalizer, checker)
	engine.Origin = origin
	return engine, nil
}
