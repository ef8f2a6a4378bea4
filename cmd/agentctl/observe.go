package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/observability"
	"github.com/spf13/cobra"
)

var observeName string

// childStopGrace is how long an interrupted child gets to exit before it is
// killed.
const childStopGrace = 5 * time.Second

var observeCmd = &cobra.Command{
	Use:   "observe [--name NAME] -- COMMAND [ARGS...]",
	Short: "Run a command inside a LangFuse tracing session",
	Long: `Runs COMMAND once inside an observability session. When LANGFUSE_SECRET_KEY
is set, traces are exported to LangFuse and flushed before agentctl exits.
Tracing problems are logged and never change the command's exit status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		mgr := observability.NewManager(cfg.observabilityConfig(), cfg.newLogger())
		return observeCommand(ctx, mgr, observeName, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	observeCmd.Flags().StringVar(&observeName, "name", "", "span name (defaults to the command name)")
	rootCmd.AddCommand(observeCmd)
}

// observeCommand runs args inside a session managed by mgr. A non-zero exit
// of the child becomes an exitError with the same code. Cancelling ctx
// interrupts the child and the session is still flushed.
func observeCommand(ctx context.Context, mgr *observability.Manager, name string, args []string, stdout, stderr io.Writer) error {
	if name == "" {
		name = filepath.Base(args[0])
	}

	exitCode := 0
	err := mgr.Observe(ctx, name, func(ctx context.Context) error {
		c := exec.CommandContext(ctx, args[0], args[1:]...)
		c.Stdin = os.Stdin
		c.Stdout = stdout
		c.Stderr = stderr
		c.Cancel = func() error { return c.Process.Signal(os.Interrupt) }
		c.WaitDelay = childStopGrace

		if err := c.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
				if exitCode < 0 {
					exitCode = 1
				}
				return fmt.Errorf("%s exited with code %d", name, exitCode)
			}
			return fmt.Errorf("failed to run %s: %w", args[0], err)
		}
		return nil
	})

	if exitCode != 0 {
		return &exitError{code: exitCode}
	}
	return err
}
