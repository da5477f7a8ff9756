package fsutil_test

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/napcheck/pkg/fsutil"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	const src = "def f():\n    pass\n"
	path := writeSource(t, src)

	content, snap, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, src, string(content))
	assert.Equal(t, path, snap.Path)
	assert.Equal(t, int64(len(src)), snap.Size)
	assert.Equal(t, sha256.Sum256([]byte(src)), snap.Sum)
}

func TestReadFile_Errors(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		path func(t *testing.T) string
		want error
	}{
		{
			name: "missing file",
			ctx:  context.Background(),
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.py") },
			want: fsutil.ErrNotFound,
		},
		{
			name: "directory",
			ctx:  context.Background(),
			path: func(t *testing.T) string { return t.TempDir() },
			want: fsutil.ErrIsDirectory,
		},
		{
			name: "cancelled context",
			ctx:  cancelled,
			path: func(*testing.T) string { return "whatever.py" },
			want: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content, snap, err := fsutil.ReadFile(tt.ctx, tt.path(t))
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, content)
			assert.Nil(t, snap)
		})
	}
}

func TestSnapshot_Changed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(t *testing.T, path string, snap *fsutil.Snapshot)
		want bool
	}{
		{
			name: "untouched",
			edit: func(*testing.T, string, *fsutil.Snapshot) {},
			want: false,
		},
		{
			name: "rewritten with the same content",
			edit: func(t *testing.T, path string, _ *fsutil.Snapshot) {
				require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
			},
			want: false,
		},
		{
			name: "same size but new content",
			edit: func(t *testing.T, path string, _ *fsutil.Snapshot) {
				require.NoError(t, os.WriteFile(path, []byte("y = 2\n"), 0o644))
			},
			want: true,
		},
		{
			name: "grown",
			edit: func(t *testing.T, path string, _ *fsutil.Snapshot) {
				require.NoError(t, os.WriteFile(path, []byte("x = 1\ny = 2\n"), 0o644))
			},
			want: true,
		},
		{
			name: "deleted",
			edit: func(t *testing.T, path string, _ *fsutil.Snapshot) {
				require.NoError(t, os.Remove(path))
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			path := writeSource(t, "x = 1\n")
			_, snap, err := fsutil.ReadFile(ctx, path)
			require.NoError(t, err)

			tt.edit(t, path, snap)

			changed, err := snap.Changed(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, changed)
		})
	}
}
