// Package configloader finds, reads, merges and validates napcheck
// configuration from files, NAPCHECK_* environment variables and flags.
package configloader

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/yaklabco/napcheck/internal/logging"
	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
)

// ErrNoToolTable is returned when an explicit pyproject.toml has no
// [tool.napcheck] table.
var ErrNoToolTable = errors.New("no [tool.napcheck] table")

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir starts the project config search. Defaults to the
	// process working directory.
	WorkingDir string

	// ExplicitPath comes from --config and outranks discovered files.
	ExplicitPath string

	// Skip leaves out discovered files of these scopes.
	Skip []Scope

	IgnoreEnv bool

	// Registry resolves rule names used as keys in config files.
	// Defaults to lint.DefaultRegistry.
	Registry *lint.Registry

	// CLIConfig holds flag values and outranks every other source.
	CLIConfig *config.Config
}

// LoadResult is the merged configuration and where it came from.
type LoadResult struct {
	Config *config.Config

	// Sources are the files that contributed, lowest precedence first.
	Sources []Source
	// LoadedFrom holds the paths of Sources.
	LoadedFrom []string

	// Warnings are problems that did not stop loading.
	Warnings []string
}

// Load merges, lowest precedence first: defaults, the system, user and
// project files, the --config file, NAPCHECK_* variables and flags. Each
// file is validated on its own so errors name it.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	logger := logging.FromContext(ctx)
	registry := cmp.Or(opts.Registry, lint.DefaultRegistry)

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	sources, err := Discover(ctx, workDir)
	if err != nil {
		return nil, err
	}
	sources = slices.DeleteFunc(sources, func(s Source) bool { return slices.Contains(opts.Skip, s.Scope) })
	if opts.ExplicitPath != "" {
		sources = append(sources, Source{ScopeExplicit, opts.ExplicitPath})
	}

	result := &LoadResult{}
	layers := []*config.Config{config.NewConfig()}

	for _, src := range sources {
		layer, err := LoadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", src.Scope, err)
		}
		if layer == nil {
			if src.Scope == ScopeExplicit {
				return nil, fmt.Errorf("load %s config: %s: %w", src.Scope, src.Path, ErrNoToolTable)
			}
			continue
		}

		result.Warnings = append(result.Warnings, normalizeRuleKeys(layer, registry)...)
		check := ValidateWithRegistry(layer, registry).inFile(src.Path)
		if err := check.Err(); err != nil {
			return nil, err
		}
		for _, w := range check.Warnings {
			result.Warnings = append(result.Warnings, w.Error())
		}

		layers = append(layers, layer)
		result.Sources = append(result.Sources, src)
		result.LoadedFrom = append(result.LoadedFrom, src.Path)
		logger.Debug("loaded config", logging.FieldSource, src.Scope, logging.FieldPath, src.Path)
	}

	cfg := merge(layers...)
	if !opts.IgnoreEnv {
		if err := applyEnv(cfg, processEnv); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	cfg = merge(cfg, opts.CLIConfig)

	// Files were checked above; this catches values from the environment
	// and flags.
	if err := ValidateWithRegistry(cfg, nil).Err(); err != nil {
		return nil, err
	}

	result.Config = cfg
	return result, nil
}

// LoadFile reads one configuration file by its name: pyproject.toml yields
// its [tool.napcheck] table or nil, other .toml files are napcheck TOML and
// everything else is YAML.
func LoadFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	switch {
	case filepath.Base(path) == PyprojectFile:
		return config.FromPyproject(content)
	case filepath.Ext(path) == ".toml":
		return config.FromTOML(content)
	default:
		return config.FromYAML(content)
	}
}

// normalizeRuleKeys rewrites rule names and aliases to codes, so a file
// can say param-order for NAP004. Unknown keys are left for validation to
// report. It returns a warning for each rule configured under two keys.
func normalizeRuleKeys(cfg *config.Config, registry *lint.Registry) []string {
	if len(cfg.Rules) == 0 {
		return nil
	}

	var warnings []string
	keys := slices.Sorted(maps.Keys(cfg.Rules))
	byCode := make(map[string]config.RuleConfig, len(keys))
	keyFor := make(map[string]string, len(keys))

	for _, key := range keys {
		code, _, ok := registry.Resolve(key)
		if !ok {
			code = key
		}
		if prev, dup := keyFor[code]; dup {
			warnings = append(warnings, fmt.Sprintf(
				"duplicate rule configuration: %q and %q both refer to %s; using %q", prev, key, code, key))
		}
		keyFor[code] = key
		byCode[code] = cfg.Rules[key]
	}

	cfg.Rules = byCode
	return warnings
}
