package agenttest

import "time"

// Outcome is the verdict for one agent.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeTimeout Outcome = "timeout"
	OutcomeSkipped Outcome = "skipped"
)

// OK reports whether the outcome counts as a pass in the aggregate.
func (o Outcome) OK() bool {
	return o == OutcomePassed || o == OutcomeSkipped
}

// Result is the record kept for one agent.
type Result struct {
	Agent      string
	Outcome    Outcome
	ExitCode   int
	Duration   time.Duration
	Stdout     string
	Stderr     string
	SkipReason string
}

// Results maps agent names to results, keeping first-insertion order.
type Results struct {
	order   []string
	byAgent map[string]Result
}

// NewResults returns an empty Results.
func NewResults() *Results {
	return &Results{byAgent: map[string]Result{}}
}

// Set stores r. Replacing an existing agent keeps its original position.
func (rs *Results) Set(r Result) {
	if _, exists := rs.byAgent[r.Agent]; !exists {
		rs.order = append(rs.order, r.Agent)
	}
	rs.byAgent[r.Agent] = r
}

// Get returns the result for agent.
func (rs *Results) Get(agent string) (Result, bool) {
	r, ok := rs.byAgent[agent]
	return r, ok
}

// All returns every result in insertion order.
func (rs *Results) All() []Result {
	out := make([]Result, 0, len(rs.order))
	for _, agent := range rs.order {
		out = append(out, rs.byAgent[agent])
	}
	return out
}

// Len returns the number of agents recorded.
func (rs *Results) Len() int {
	return len(rs.order)
}
