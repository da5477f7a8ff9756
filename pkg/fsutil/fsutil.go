// Package fsutil reads source files for linting and writes napcheck's own
// configuration files safely.
package fsutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var (
	ErrNotFound         = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIsDirectory      = errors.New("path is a directory")

	// ErrExists is returned instead of overwriting a file.
	ErrExists = errors.New("file already exists")
)

// Snapshot records a source file as it was when read, so watch mode can
// tell an edit from a save that changed nothing.
type Snapshot struct {
	Path string
	Size int64
	Sum  [sha256.Size]byte
}

// ReadFile returns the content of path and a Snapshot of it, taken from
// the same open file.
func ReadFile(ctx context.Context, path string) ([]byte, *Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, classify(path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	var buf bytes.Buffer
	buf.Grow(int(stat.Size()))
	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(&buf, hash), f); err != nil {
		return nil, nil, classify(path, err)
	}

	snap := &Snapshot{Path: path, Size: stat.Size()}
	hash.Sum(snap.Sum[:0])
	return buf.Bytes(), snap, nil
}

// Changed reports whether the file on disk differs from the snapshot. A
// removed file has changed. Mod times are ignored: a save that leaves the
// content as it was is not a change.
func (s *Snapshot) Changed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	stat, err := os.Stat(s.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	case err != nil:
		return false, classify(s.Path, err)
	case stat.Size() != s.Size:
		return true, nil
	}

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return false, classify(s.Path, err)
	}
	return sha256.Sum256(content) != s.Sum, nil
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}
