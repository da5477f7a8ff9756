package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/napcheck/internal/logging"
	"github.com/yaklabco/napcheck/pkg/fsutil"
)

// DefaultDebounce is how long the watcher waits for a burst of file system
// events to settle before re-linting.
const DefaultDebounce = 200 * time.Millisecond

// ErrNoWatchRoots is returned when none of the requested paths can be watched.
var ErrNoWatchRoots = errors.New("no directories to watch")

// WatchOptions tunes Watch.
type WatchOptions struct {
	// Debounce delays re-linting until events stop arriving for this long.
	// Zero means DefaultDebounce.
	Debounce time.Duration
}

// Watch lints the files selected by opts, then keeps watching their
// directories and re-lints files as they change. onResult receives the
// initial result and one result per settled batch of changes. Watch
// returns when ctx is cancelled.
//
// A batch only contains files that still exist and whose content differs
// from the last linted version, so editor save storms cost one pass.
func (r *Runner) Watch(ctx context.Context, opts Options, wopts WatchOptions, onResult func(*Result)) error {
	logger := logging.FromContext(ctx)

	debounce := wopts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	disc, err := newDiscoverer(opts)
	if err != nil {
		return err
	}

	files, err := Discover(ctx, opts)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	scope := newWatchScope(disc, opts.targets())
	roots := scope.roots()
	watched := 0
	for _, root := range roots {
		n, addErr := addRecursive(fsw, disc, root)
		if addErr != nil {
			logger.Warn("cannot watch directory", logging.FieldPath, root, logging.FieldError, addErr)
		}
		watched += n
	}
	if watched == 0 {
		return ErrNoWatchRoots
	}

	known := make(map[string]*fsutil.Snapshot, len(files))
	lintBatch := func(batch []string) error {
		result, runErr := r.RunFiles(ctx, batch, opts)
		if result != nil {
			for _, outcome := range result.Files {
				if outcome.Result != nil && outcome.Result.Snapshot != nil {
					known[outcome.Path] = outcome.Result.Snapshot
				}
			}
			onResult(result)
		}
		return runErr
	}

	if err := lintBatch(files); err != nil {
		return watchStopped(ctx, err)
	}
	logger.Debug("watching for changes", logging.FieldPaths, roots)

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if disc.skipDir(event.Name) || !scope.includes(event.Name) {
						continue
					}
					if _, addErr := addRecursive(fsw, disc, event.Name); addErr != nil {
						logger.Warn("cannot watch directory", logging.FieldPath, event.Name, logging.FieldError, addErr)
						continue
					}
					for _, path := range filesUnder(ctx, disc, event.Name) {
						pending[path] = struct{}{}
					}
					timer.Reset(debounce)
					continue
				}
			}

			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(known, event.Name)
				delete(pending, event.Name)
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !scope.includes(event.Name) {
				continue
			}
			if _, named := scope.files[event.Name]; !named && !disc.matchesFile(event.Name, false) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(debounce)

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", logging.FieldError, watchErr)

		case <-timer.C:
			batch := changedFiles(ctx, pending, known)
			clear(pending)
			if len(batch) == 0 {
				continue
			}
			logger.Debug("re-linting changed files", logging.FieldFiles, len(batch))
			if err := lintBatch(batch); err != nil {
				return watchStopped(ctx, err)
			}
		}
	}
}

// watchStopped maps an error caused by cancellation to a clean stop.
func watchStopped(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// watchScope is what the user asked to watch: whole directories, plus
// single files whose parent directory is watched on their behalf.
type watchScope struct {
	dirs  []string
	files map[string]struct{}
}

// newWatchScope resolves paths against the working directory. Paths that
// do not exist are ignored.
func newWatchScope(d *discoverer, paths []string) watchScope {
	scope := watchScope{files: make(map[string]struct{})}
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(d.workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			continue
		}
		if info.IsDir() {
			if !slices.Contains(scope.dirs, abs) {
				scope.dirs = append(scope.dirs, abs)
			}
			continue
		}
		scope.files[abs] = struct{}{}
	}
	return scope
}

// roots returns the directories to register with the watcher. A file
// contributes its parent directory.
func (s watchScope) roots() []string {
	roots := slices.Clone(s.dirs)
	for file := range s.files {
		dir := filepath.Dir(file)
		if !slices.Contains(roots, dir) {
			roots = append(roots, dir)
		}
	}
	slices.Sort(roots)
	return roots
}

// includes reports whether path was requested, either by name or by lying
// under a requested directory. Siblings of a requested file are not.
func (s watchScope) includes(path string) bool {
	if _, ok := s.files[path]; ok {
		return true
	}
	for _, dir := range s.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addRecursive registers root and every directory below it that discovery
// would descend into. It returns the number of directories added.
func addRecursive(fsw *fsnotify.Watcher, d *discoverer, root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && d.skipDir(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		added++
		return nil
	})
	return added, err
}

// filesUnder lists the lintable files in a newly created directory.
func filesUnder(ctx context.Context, d *discoverer, dir string) []string {
	files, err := d.walkDirectory(ctx, dir)
	if err != nil {
		return nil
	}
	return files
}

// changedFiles returns the sorted pending paths whose content differs from
// the version last linted. Unknown files always count as changed.
func changedFiles(ctx context.Context, pending map[string]struct{}, known map[string]*fsutil.Snapshot) []string {
	batch := make([]string, 0, len(pending))
	for path := range pending {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if snap, ok := known[path]; ok {
			if changed, err := snap.Changed(ctx); err == nil && !changed {
				continue
			}
		}
		batch = append(batch, path)
	}
	slices.Sort(batch)
	return batch
}
