package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/fsutil"
	"github.com/yaklabco/napcheck/pkg/pyast"
)

// ErrParseFailure marks a file that is not valid Python. A flake8 host
// reports such files as E999 and runs no plugin checks; napcheck reports
// them as file errors the same way.
var ErrParseFailure = errors.New("parse failure")

// PipelineResult is the lint outcome of one source.
type PipelineResult struct {
	*FileResult

	Path string

	// Snapshot is the file as read from disk; nil for in-memory sources.
	Snapshot *fsutil.Snapshot
}

// Pipeline feeds sources to an Engine.
type Pipeline struct {
	Engine *Engine
}

func NewPipeline(engine *Engine) *Pipeline {
	return &Pipeline{Engine: engine}
}

// Lint reads path and lints it. Read errors wrap fsutil.ErrNotFound or
// fsutil.ErrPermissionDenied where they apply.
func (p *Pipeline) Lint(ctx context.Context, path string, cfg *config.Config) (*PipelineResult, error) {
	content, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	result, err := p.LintSource(ctx, path, content, cfg)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap
	return result, nil
}

// LintSource lints content that is already in memory, such as stdin.
func (p *Pipeline) LintSource(ctx context.Context, path string, content []byte, cfg *config.Config) (*PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lint %s: %w", path, err)
	}

	fr, err := p.Engine.LintFile(ctx, path, content, cfg)
	switch {
	case errors.Is(err, pyast.ErrSyntax):
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	case err != nil:
		return nil, err
	}
	return &PipelineResult{FileResult: fr, Path: path}, nil
}
