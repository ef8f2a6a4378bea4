package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tests := []struct {
		name      string
		baseDir   string
		wantError bool
	}{
		{name: "existing directory", baseDir: t.TempDir()},
		{name: "creates missing directory", baseDir: filepath.Join(t.TempDir(), "artifacts", "nested")},
		{name: "empty directory", baseDir: "", wantError: true},
		{name: "dot directory", baseDir: ".", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewLocalStorage(tt.baseDir)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
			info, err := os.Stat(tt.baseDir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "runs/0b7c/tagger/stdout.log"
	body := "Status Code: 200\nTagged: true\n"

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Upload(ctx, key, bytes.NewBufferString(body)))

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestLocalStorage_UploadOverwrites(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "a.log", bytes.NewBufferString("first")))
	require.NoError(t, s.Upload(ctx, "a.log", bytes.NewBufferString("second")))

	rc, err := s.Download(ctx, "a.log")
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "second", string(got))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestLocalStorage_UploadFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, s.Upload(ctx, "runs/x/stderr.log", failingReader{}))

	exists, err := s.Exists(ctx, "runs/x/stderr.log")
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := os.ReadDir(filepath.Join(dir, "runs", "x"))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Download(context.Background(), "missing.log")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_RejectsBadPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{"", "/etc/passwd", "../outside.log", "runs/../../outside.log", "."} {
		t.Run(p, func(t *testing.T) {
			assert.ErrorIs(t, s.Upload(ctx, p, bytes.NewBufferString("x")), ErrInvalidPath)
			_, err := s.Download(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPath)
			_, err = s.Exists(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}
