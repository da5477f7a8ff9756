package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0o644

// WriteAtomic writes content to path through a temp file in the same
// directory followed by a rename, so readers never observe a partial file.
// The existing mode is kept; new files get mode, or DefaultFileMode when
// mode is 0. On error the target is left untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("write atomic: %w", ctx.Err())
	default:
	}

	if stat, err := os.Stat(path); err == nil {
		mode = stat.Mode().Perm()
	} else if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// CreateFile writes a new file atomically. An existing file is only
// replaced when overwrite is true; otherwise ErrExists is returned.
func CreateFile(ctx context.Context, path string, content []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	return WriteAtomic(ctx, path, content, DefaultFileMode)
}

// AppendSection adds section to the end of path, creating the file when it
// does not exist. A blank line separates the section from existing content.
// It returns ErrExists when marker already occurs in the file, so running
// it twice does not duplicate a table.
func AppendSection(ctx context.Context, path string, section []byte, marker string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return classify(path, err)
	}

	if marker != "" && bytes.Contains(existing, []byte(marker)) {
		return fmt.Errorf("%w: %s already contains %s", ErrExists, path, marker)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 {
		if !bytes.HasSuffix(existing, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	buf.Write(section)

	return WriteAtomic(ctx, path, buf.Bytes(), DefaultFileMode)
}
