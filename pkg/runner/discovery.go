package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/napcheck/pkg/langdetect"
)

// scriptHeadSize is how much of an extension-less file is read to look
// for a Python shebang.
const scriptHeadSize = 512

// discoverer carries the compiled state of one discovery run.
type discoverer struct {
	opts       Options
	workDir    string
	extensions []string
	exclude    *PatternSet
	include    *PatternSet
}

// Discover finds Python files matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
//
// Paths named explicitly on the command line are always linted when they
// are regular files with a matching extension, even if they sit in a
// vendored directory. Ignore patterns still apply to them.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	d, err := newDiscoverer(opts)
	if err != nil {
		return nil, err
	}
	workDir := d.workDir

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.targets() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if info.IsDir() {
			discovered, err := d.walkDirectory(ctx, absPath)
			if err != nil {
				return nil, err
			}
			for _, f := range discovered {
				add(f)
			}
		} else if d.matchesFile(absPath, true) {
			add(absPath)
		}
	}

	slices.Sort(files)

	return files, nil
}

// newDiscoverer compiles the patterns and resolves the working directory.
func newDiscoverer(opts Options) (*discoverer, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	exclude, err := CompilePatterns(opts.ExcludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("ignore patterns: %w", err)
	}
	include, err := CompilePatterns(opts.IncludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}

	return &discoverer{
		opts:       opts,
		workDir:    workDir,
		extensions: opts.extensions(),
		exclude:    exclude,
		include:    include,
	}, nil
}

// skipDir reports whether a directory below a walk root is pruned.
func (d *discoverer) skipDir(path string) bool {
	// Hidden directories cover .git, .tox, .venv and .mypy_cache.
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	rel := d.relPath(path)
	if d.exclude.MatchDir(rel) {
		return true
	}
	return !d.opts.IncludeVendored && langdetect.IsVendored(rel+"/")
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// relPath returns path relative to the working directory, or path itself.
func (d *discoverer) relPath(path string) string {
	rel, err := filepath.Rel(d.workDir, path)
	if err != nil {
		return path
	}
	return rel
}

// walkDirectory recursively walks a directory and returns matching Python files.
func (d *discoverer) walkDirectory(ctx context.Context, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path != root && d.skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			realPath, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return nil //nolint:nilerr // Intentionally skip broken symlinks
			}
			info, statErr := os.Stat(realPath)
			if statErr != nil {
				return nil //nolint:nilerr // Intentionally skip inaccessible symlink targets
			}
			if info.IsDir() {
				if !d.opts.FollowSymlinks {
					return nil
				}
				// Walk the symlink target; WalkDir uses Lstat on its root.
				subFiles, err := d.walkDirectory(ctx, realPath)
				if err != nil {
					return err
				}
				files = append(files, subFiles...)
				return nil
			}
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if d.matchesFile(path, false) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

// matchesFile checks if a file path matches the inclusion criteria.
// explicit is true for files named directly by the user.
func (d *discoverer) matchesFile(path string, explicit bool) bool {
	rel := d.relPath(path)

	if d.exclude.MatchFile(rel) {
		return false
	}
	if !d.include.empty() && !d.include.MatchFile(rel) {
		return false
	}
	if !explicit && !d.opts.IncludeVendored && langdetect.IsVendored(rel) {
		return false
	}

	switch {
	case hasMatchingExtension(path, d.extensions):
	case d.opts.Scripts && filepath.Ext(path) == "" && isPythonScript(path):
	default:
		return false
	}

	if !d.opts.IncludeGenerated && !explicit && isGenerated(path) {
		return false
	}
	return true
}

// hasMatchingExtension checks if the file has a matching extension.
func hasMatchingExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// isPythonScript reads the start of an extension-less file and checks its shebang.
func isPythonScript(path string) bool {
	head, err := readHead(path, scriptHeadSize)
	if err != nil {
		return false
	}
	return langdetect.IsPythonScript(head)
}

// isGenerated reports whether a file is generated code. Read failures are
// left for the pipeline to report.
func isGenerated(path string) bool {
	head, err := readHead(path, 4*scriptHeadSize)
	if err != nil {
		return false
	}
	return langdetect.IsGenerated(path, head)
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf[:read], nil
}
