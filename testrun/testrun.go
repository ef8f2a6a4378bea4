// Package testrun persists the history of agent test runs.
package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrRunNotFound is returned when a run does not exist.
	ErrRunNotFound = errors.New("test run not found")

	// ErrInvalidStatus is returned for an unknown run status.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidAgent is returned when a result has no agent name.
	ErrInvalidAgent = errors.New("agent is required")

	// ErrInvalidOutcome is returned for an unknown agent outcome.
	ErrInvalidOutcome = errors.New("invalid outcome")

	// ErrInvalidCounts is returned when the run totals disagree with its results.
	ErrInvalidCounts = errors.New("run counts do not match results")
)

// Status is the aggregate verdict of a run.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

func (s Status) IsValid() bool {
	return s == StatusPassed || s == StatusFailed
}

// Agent outcomes as stored.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
	OutcomeSkipped = "skipped"
)

func validOutcome(o string) bool {
	switch o {
	case OutcomePassed, OutcomeFailed, OutcomeTimeout, OutcomeSkipped:
		return true
	}
	return false
}

// Run is one execution of the agent test suite.
type Run struct {
	ID         uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	Status     Status        `json:"status" gorm:"type:varchar(20);not null;index:idx_agent_test_runs_status"`
	Total      int           `json:"total" gorm:"not null"`
	Passed     int           `json:"passed" gorm:"not null"`
	Failed     int           `json:"failed" gorm:"not null"`
	Skipped    int           `json:"skipped" gorm:"not null"`
	StartedAt  time.Time     `json:"started_at" gorm:"not null;index:idx_agent_test_runs_started_at"`
	FinishedAt time.Time     `json:"finished_at" gorm:"not null"`
	DurationMs int64         `json:"duration_ms" gorm:"not null"`
	Results    []AgentResult `json:"results,omitempty" gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Run) TableName() string {
	return "agent_test_runs"
}

func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks the run and every result attached to it.
func (r *Run) Validate() error {
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	if r.Passed+r.Failed != r.Total || r.Skipped > r.Passed {
		return ErrInvalidCounts
	}
	if len(r.Results) > 0 && len(r.Results) != r.Total {
		return ErrInvalidCounts
	}
	for i := range r.Results {
		if err := r.Results[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AgentResult is the stored outcome of one agent within a run.
type AgentResult struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	RunID      uuid.UUID `json:"run_id" gorm:"type:char(36);not null;uniqueIndex:idx_agent_test_results_run_agent"`
	Position   int       `json:"position" gorm:"not null"`
	Agent      string    `json:"agent" gorm:"type:varchar(100);not null;uniqueIndex:idx_agent_test_results_run_agent"`
	Outcome    string    `json:"outcome" gorm:"type:varchar(20);not null"`
	ExitCode   int       `json:"exit_code"`
	DurationMs int64     `json:"duration_ms"`
	SkipReason string    `json:"skip_reason,omitempty" gorm:"type:varchar(255)"`
	StdoutKey  string    `json:"stdout_key,omitempty" gorm:"type:varchar(512)"`
	StderrKey  string    `json:"stderr_key,omitempty" gorm:"type:varchar(512)"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AgentResult) TableName() string {
	return "agent_test_results"
}

func (a *AgentResult) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *AgentResult) Validate() error {
	if a.Agent == "" {
		return ErrInvalidAgent
	}
	if !validOutcome(a.Outcome) {
		return ErrInvalidOutcome
	}
	return nil
}

// ArtifactKey returns the stored key for stream ("stdout" or "stderr").
func (a *AgentResult) ArtifactKey(stream string) (string, bool) {
	switch stream {
	case "stdout":
		return a.StdoutKey, a.StdoutKey != ""
	case "stderr":
		return a.StderrKey, a.StderrKey != ""
	}
	return "", false
}
