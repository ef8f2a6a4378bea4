package agenttest

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ExecOpts controls a single subprocess execution.
type ExecOpts struct {
	WorkDir string
	// Env is the complete child environment. Nil inherits the parent's.
	Env     []string
	Timeout time.Duration
}

// ExecResult is what a finished subprocess produced. A non-zero exit code is
// reported here, not as an error.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Executor runs agent test commands.
type Executor interface {
	Run(ctx context.Context, cmd []string, opts ExecOpts) (ExecResult, error)
}

// LocalExecutor runs commands directly on the host.
type LocalExecutor struct {
	// WaitDelay bounds how long output pipes are drained after the process
	// is killed.
	WaitDelay time.Duration
}

// NewLocalExecutor returns a LocalExecutor.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{WaitDelay: 5 * time.Second}
}

// Run executes cmd and captures its output as text. It returns an error only
// when the process could not be run at all or the parent context was
// cancelled.
func (e *LocalExecutor) Run(ctx context.Context, cmd []string, opts ExecOpts) (ExecResult, error) {
	if len(cmd) == 0 {
		return ExecResult{}, fmt.Errorf("command cannot be empty")
	}

	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd[0], cmd[1:]...)
	c.Dir = opts.WorkDir
	c.Env = opts.Env
	c.WaitDelay = e.WaitDelay

	var stdout, stderr strings.Builder
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()

	result := ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		result.TimedOut = true
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	result.ExitCode = -1
	return result, fmt.Errorf("failed to run %s: %w", cmd[0], err)
}
