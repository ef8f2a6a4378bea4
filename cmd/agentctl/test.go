package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hairizuanbinnoorazman/agent-backend/agenttest"
	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/storage"
	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run every agent's test script and summarise the results",
	Long: `Runs the test script of each configured agent in its own directory, one
after another, and prints a summary. The exit status is 1 when any agent
failed or timed out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		code, err := runTests(cmd.Context(), cfg, cmd.OutOrStdout(), cfg.newLogger())
		if err != nil {
			return err
		}
		if code != 0 {
			return &exitError{code: code}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}

// runTests runs the suite and returns the process exit code. Metrics and
// archive failures are logged and never change the exit code.
func runTests(ctx context.Context, cfg *Config, out io.Writer, log logger.Logger) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runnerCfg, err := cfg.agentTestConfig()
	if err != nil {
		return 0, err
	}

	metrics := agenttest.NewMetrics()
	runner := agenttest.NewRunner(runnerCfg, agenttest.NewLocalExecutor(), out, log,
		agenttest.WithRecorder(metrics))

	report := runner.Run(ctx)
	metrics.ObserveReport(report)

	if path := cfg.Runner.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Error(ctx, "failed to write metrics", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	if cfg.Runner.Archive {
		if err := archiveReport(ctx, cfg, report, log); err != nil {
			log.Error(ctx, "failed to archive test run", map[string]interface{}{
				"run_id": report.RunID.String(),
				"error":  err.Error(),
			})
		}
	}

	return report.ExitCode(), nil
}

func archiveReport(ctx context.Context, cfg *Config, report *agenttest.Report, log logger.Logger) error {
	store, closeFn, err := openRunStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	blobs, err := storage.NewBlobStorage(cfg.storageConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	_, err = agenttest.NewArchiver(store, blobs, log).Archive(ctx, report)
	return err
}
