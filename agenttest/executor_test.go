package agenttest

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestLocalExecutor_Run(t *testing.T) {
	requireShell(t)
	exec := NewLocalExecutor()
	ctx := context.Background()

	tests := []struct {
		name       string
		script     string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{name: "success", script: "echo 'Status Code: 200'", wantExit: 0, wantStdout: "Status Code: 200\n"},
		{name: "non-zero exit is not an error", script: "echo oops >&2; exit 3", wantExit: 3, wantStderr: "oops\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := exec.Run(ctx, []string{"/bin/sh", "-c", tt.script}, ExecOpts{Timeout: 10 * time.Second})
			require.NoError(t, err)
			assert.Equal(t, tt.wantExit, res.ExitCode)
			assert.Equal(t, tt.wantStdout, res.Stdout)
			assert.Equal(t, tt.wantStderr, res.Stderr)
			assert.False(t, res.TimedOut)
			assert.Greater(t, res.Duration, time.Duration(0))
		})
	}
}

func TestLocalExecutor_Timeout(t *testing.T) {
	requireShell(t)
	exec := &LocalExecutor{WaitDelay: 100 * time.Millisecond}

	res, err := exec.Run(context.Background(), []string{"/bin/sh", "-c", "echo started; sleep 5"}, ExecOpts{Timeout: 300 * time.Millisecond})

	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestLocalExecutor_EnvAndWorkDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	exec := NewLocalExecutor()

	res, err := exec.Run(context.Background(), []string{"/bin/sh", "-c", `printf '%s|%s' "$MOCK_LAMBDAS" "$(pwd)"`}, ExecOpts{
		WorkDir: dir,
		Env:     []string{"MOCK_LAMBDAS=true"},
	})
	require.NoError(t, err)

	parts := strings.SplitN(res.Stdout, "|", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "true", parts[0])

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(parts[1])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocalExecutor_Errors(t *testing.T) {
	requireShell(t)
	exec := NewLocalExecutor()

	t.Run("empty command", func(t *testing.T) {
		_, err := exec.Run(context.Background(), nil, ExecOpts{})
		assert.Error(t, err)
	})

	t.Run("missing binary", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, ExecOpts{})
		assert.Error(t, err)
		assert.Equal(t, -1, res.ExitCode)
		assert.False(t, res.TimedOut)
	})

	t.Run("cancelled parent", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := exec.Run(ctx, []string{"/bin/sh", "-c", "sleep 5"}, ExecOpts{Timeout: time.Minute})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, -1, res.ExitCode)
	})
}
