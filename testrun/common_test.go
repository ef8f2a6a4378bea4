package testrun

import (
	"testing"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/testutil"
)

func setupTestStore(t *testing.T) Store {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Run{}, &AgentResult{})
	return NewGormStore(db, logger.NewTestLogger())
}

// newRun builds a valid run from agent -> outcome pairs given in order.
func newRun(startedAt time.Time, outcomes ...[2]string) *Run {
	run := &Run{StartedAt: startedAt, FinishedAt: startedAt.Add(time.Minute), DurationMs: 60000}
	for i, o := range outcomes {
		run.Results = append(run.Results, AgentResult{Position: i, Agent: o[0], Outcome: o[1]})
		run.Total++
		switch o[1] {
		case OutcomePassed:
			run.Passed++
		case OutcomeSkipped:
			run.Passed++
			run.Skipped++
		default:
			run.Failed++
		}
	}
	run.Status = StatusPassed
	if run.Failed > 0 {
		run.Status = StatusFailed
	}
	return run
}
