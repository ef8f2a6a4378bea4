package agenttest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.Observe(Result{Agent: "tagger", Outcome: OutcomePassed, Duration: 20 * time.Second})
	m.Observe(Result{Agent: "tagger", Outcome: OutcomePassed, Duration: 25 * time.Second})
	m.Observe(Result{Agent: "reporter", Outcome: OutcomeTimeout, Duration: 120 * time.Second})
	m.Observe(Result{Agent: "planner", Outcome: OutcomeSkipped})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.results.WithLabelValues("tagger", "passed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.results.WithLabelValues("reporter", "timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.results.WithLabelValues("planner", "skipped")))

	// Skipped agents never ran, so they have no duration sample.
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestMetrics_ObserveReport(t *testing.T) {
	m := NewMetrics()
	report := newTestReport(
		Result{Agent: "tagger", Outcome: OutcomeFailed, ExitCode: 1},
		Result{Agent: "reporter", Outcome: OutcomeTimeout},
		Result{Agent: "charter", Outcome: OutcomePassed},
	)

	m.ObserveReport(report)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.failedAgents))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Observe(Result{Agent: "tagger", Outcome: OutcomePassed, Duration: time.Second})
	m.ObserveReport(newTestReport(Result{Agent: "tagger", Outcome: OutcomePassed}))

	path := filepath.Join(t.TempDir(), "agent_tests.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `agent_test_results_total{agent="tagger",outcome="passed"} 1`)
	assert.Contains(t, out, "agent_test_failed_agents 0")
	assert.Contains(t, out, "agent_test_duration_seconds_bucket")
}

func TestMetrics_WriteTextfileBadPath(t *testing.T) {
	m := NewMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "agent_tests.prom"))
	assert.Error(t, err)
}
