package agenttest

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
)

// Report is the aggregate of one full run.
type Report struct {
	RunID     uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Results   *Results
}

// NewReport starts an empty report now.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Results:   NewResults(),
	}
}

// Passed counts passed and skipped agents.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results.All() {
		if res.Outcome.OK() {
			n++
		}
	}
	return n
}

// Failed counts failed and timed out agents.
func (r *Report) Failed() int {
	return r.Results.Len() - r.Passed()
}

// Skipped counts agents whose test was not found.
func (r *Report) Skipped() int {
	n := 0
	for _, res := range r.Results.All() {
		if res.Outcome == OutcomeSkipped {
			n++
		}
	}
	return n
}

// FailedAgents lists failing agents in run order.
func (r *Report) FailedAgents() []string {
	var out []string
	for _, res := range r.Results.All() {
		if !res.Outcome.OK() {
			out = append(out, res.Agent)
		}
	}
	return out
}

// ExitCode is 1 when any agent failed, otherwise 0.
func (r *Report) ExitCode() int {
	if r.Failed() > 0 {
		return 1
	}
	return 0
}

// WriteSummary prints the summary table and the final verdict.
func (r *Report) WriteSummary(w io.Writer) {
	total := r.Results.Len()

	fmt.Fprintf(w, "\n%s\n", banner)
	fmt.Fprintln(w, "TEST SUMMARY")
	fmt.Fprintln(w, banner)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tOUTCOME\tEXIT CODE\tDURATION")
	for _, res := range r.Results.All() {
		exit := "-"
		if res.Outcome != OutcomeSkipped && res.Outcome != OutcomeTimeout {
			exit = fmt.Sprintf("%d", res.ExitCode)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Agent, res.Outcome, exit, res.Duration.Round(time.Millisecond))
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Passed: %d/%d\n", r.Passed(), total)
	fmt.Fprintf(w, "Failed: %d/%d\n", r.Failed(), total)

	if failed := r.FailedAgents(); len(failed) > 0 {
		fmt.Fprintln(w, "\nFailed agents:")
		for _, agent := range failed {
			fmt.Fprintf(w, "  - %s\n", agent)
		}
	}
	fmt.Fprintln(w, banner)

	if r.Failed() > 0 {
		fmt.Fprintln(w, "\n[WARNING] SOME TESTS FAILED")
	} else {
		fmt.Fprintln(w, "\n[SUCCESS] ALL TESTS PASSED!")
	}
}
