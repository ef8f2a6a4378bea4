package agenttest

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/storage"
	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
)

// Archiver stores a finished report: captured output goes to blob storage
// and the run summary goes to the run store.
type Archiver struct {
	store testrun.Store
	blobs storage.BlobStorage
	log   logger.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(store testrun.Store, blobs storage.BlobStorage, log logger.Logger) *Archiver {
	return &Archiver{
		store: store,
		blobs: blobs,
		log:   log,
	}
}

// ArtifactKey is where the output stream of agent in run is stored.
func ArtifactKey(runID, agent, stream string) string {
	return path.Join("runs", runID, agent, stream+".log")
}

// Archive uploads non-empty output streams and stores the run.
func (a *Archiver) Archive(ctx context.Context, report *Report) (*testrun.Run, error) {
	runID := report.RunID.String()

	status := testrun.StatusPassed
	if report.ExitCode() != 0 {
		status = testrun.StatusFailed
	}

	run := &testrun.Run{
		ID:         report.RunID,
		Status:     status,
		Total:      report.Results.Len(),
		Passed:     report.Passed(),
		Failed:     report.Failed(),
		Skipped:    report.Skipped(),
		StartedAt:  report.StartedAt,
		FinishedAt: report.StartedAt.Add(report.Duration),
		DurationMs: report.Duration.Milliseconds(),
	}

	for i, res := range report.Results.All() {
		stdoutKey, err := a.upload(ctx, runID, res.Agent, "stdout", res.Stdout)
		if err != nil {
			return nil, err
		}
		stderrKey, err := a.upload(ctx, runID, res.Agent, "stderr", res.Stderr)
		if err != nil {
			return nil, err
		}

		run.Results = append(run.Results, testrun.AgentResult{
			Position:   i,
			Agent:      res.Agent,
			Outcome:    string(res.Outcome),
			ExitCode:   res.ExitCode,
			DurationMs: res.Duration.Milliseconds(),
			SkipReason: res.SkipReason,
			StdoutKey:  stdoutKey,
			StderrKey:  stderrKey,
		})
	}

	if err := a.store.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store test run: %w", err)
	}

	a.log.Info(ctx, "test run archived", map[string]interface{}{
		"run_id": runID,
		"status": string(status),
		"agents": run.Total,
	})
	return run, nil
}

func (a *Archiver) upload(ctx context.Context, runID, agent, stream, content string) (string, error) {
	if content == "" {
		return "", nil
	}
	key := ArtifactKey(runID, agent, stream)
	if err := a.blobs.Upload(ctx, key, strings.NewReader(content)); err != nil {
		a.log.Error(ctx, "failed to upload test output", map[string]interface{}{
			"run_id": runID,
			"agent":  agent,
			"stream": stream,
			"error":  err.Error(),
		})
		return "", fmt.Errorf("failed to upload %s of %s: %w", stream, agent, err)
	}
	return key, nil
}
