package agenttest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/logger"
)

const banner = "============================================================"

// Recorder receives every agent result as soon as it is known.
type Recorder interface {
	Observe(r Result)
}

// Runner executes the agent tests one after another.
type Runner struct {
	cfg      Config
	exec     Executor
	out      io.Writer
	log      logger.Logger
	recorder Recorder
	environ  func() []string
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithRecorder attaches a Recorder.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithEnviron replaces os.Environ as the source of the child environment.
func WithEnviron(environ func() []string) RunnerOption {
	return func(r *Runner) { r.environ = environ }
}

// NewRunner returns a Runner that prints its human-readable report to out.
func NewRunner(cfg Config, exec Executor, out io.Writer, log logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:     cfg,
		exec:    exec,
		out:     out,
		log:     log,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run tests every configured agent in order and prints the summary. A failing
// agent never stops the remaining ones.
func (r *Runner) Run(ctx context.Context) *Report {
	report := NewReport()

	r.printf("%s\n", banner)
	r.printf("TESTING ALL AGENTS\n")
	r.printf("Running individual %s in each agent directory\n", r.cfg.TestFile)
	r.printf("%s\n", banner)

	for _, agent := range r.cfg.Agents {
		r.printf("\n%s Agent:\n", strings.ToUpper(agent))
		report.Results.Set(r.RunAgent(ctx, agent))
	}

	report.Duration = time.Since(report.StartedAt)
	report.WriteSummary(r.out)

	if total := report.Results.Len(); total > 0 && report.Skipped() == total {
		r.log.Warn(ctx, "no agent tests were run, check the base directory", map[string]interface{}{
			"base_dir": r.cfg.BaseDir,
			"agents":   total,
		})
	}

	r.log.Info(ctx, "agent test run finished", map[string]interface{}{
		"run_id":   report.RunID.String(),
		"passed":   report.Passed(),
		"failed":   report.Failed(),
		"duration": report.Duration.String(),
	})
	return report
}

// RunAgent tests a single agent.
func (r *Runner) RunAgent(ctx context.Context, agent string) Result {
	result := r.runAgent(ctx, agent)

	r.log.Info(ctx, "agent test finished", map[string]interface{}{
		"agent":     agent,
		"outcome":   string(result.Outcome),
		"exit_code": result.ExitCode,
		"duration":  result.Duration.String(),
	})
	if r.recorder != nil {
		r.recorder.Observe(result)
	}
	return result
}

func (r *Runner) runAgent(ctx context.Context, agent string) Result {
	dir := filepath.Join(r.cfg.BaseDir, agent)
	if !isDir(dir) {
		r.printf("  [SKIP] %s: Directory not found\n", agent)
		return Result{Agent: agent, Outcome: OutcomeSkipped, SkipReason: "directory not found"}
	}
	if !isFile(filepath.Join(dir, r.cfg.TestFile)) {
		r.printf("  [SKIP] %s: No %s found, skipping\n", agent, r.cfg.TestFile)
		return Result{Agent: agent, Outcome: OutcomeSkipped, SkipReason: "no " + r.cfg.TestFile}
	}

	cmd := make([]string, 0, len(r.cfg.Command)+1)
	cmd = append(cmd, r.cfg.Command...)
	cmd = append(cmd, r.cfg.TestFile)

	r.printf("Running in %s: %s\n", dir, strings.Join(cmd, " "))
	r.printf("  [TESTING] May take 15-30 seconds due to LLM calls...\n")

	res, err := r.exec.Run(ctx, cmd, ExecOpts{
		WorkDir: dir,
		Env:     BuildEnv(r.environ()),
		Timeout: r.cfg.Timeout,
	})
	result := Result{
		Agent:    agent,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}

	switch {
	case err != nil:
		result.Outcome = OutcomeFailed
		r.printf("  [FAIL] %s: Could not run test: %v\n", agent, err)
		r.log.Error(ctx, "agent test could not run", map[string]interface{}{
			"agent": agent,
			"error": err.Error(),
		})

	case res.TimedOut:
		result.Outcome = OutcomeTimeout
		r.printf("  [FAIL] %s: Test TIMEOUT (>%ds)\n", agent, int(r.cfg.Timeout.Seconds()))

	case res.ExitCode == 0:
		result.Outcome = OutcomePassed
		r.printf("  [PASS] %s: Test passed\n", agent)
		for _, line := range highlights(res.Stdout, r.cfg.SuccessMarker) {
			r.printf("     %s\n", line)
		}

	default:
		result.Outcome = OutcomeFailed
		r.printf("  [FAIL] %s: Test failed (exit code: %d)\n", agent, res.ExitCode)
		for _, line := range errorContext(res.Stdout) {
			r.printf("     %s\n", line)
		}
		for _, line := range stderrErrors(res.Stderr) {
			r.printf("     stderr: %s\n", line)
		}
	}
	return result
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
