package runner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/napcheck/pkg/lint"
)

// Runner lints many files at once through a lint.Pipeline.
type Runner struct {
	Pipeline *lint.Pipeline
}

func New(pipeline *lint.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run lints the files opts selects.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.RunFiles(ctx, files, opts)
}

// RunFiles lints files on opts.Jobs workers, one per CPU when unset, and
// keeps their order in the result. A file that cannot be linted is recorded
// in its outcome and the others go on. Cancellation stops the run; the
// result then holds the files that were started.
func (r *Runner) RunFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	slots := make([]*FileOutcome, len(files))

	var group errgroup.Group
	group.SetLimit(workers(opts.Jobs, len(files)))
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			outcome := FileOutcome{Path: path}
			outcome.Result, outcome.Error = r.Pipeline.Lint(ctx, path, opts.Config)
			slots[i] = &outcome
			return nil
		})
	}
	_ = group.Wait() // outcomes carry the errors

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: Stats{FilesDiscovered: len(files)},
	}
	for _, outcome := range slots {
		if outcome != nil {
			result.add(*outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func workers(jobs, files int) int {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return max(1, min(jobs, files))
}
