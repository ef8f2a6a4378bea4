package agenttest

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records agent test results as Prometheus metrics on a private
// registry so a one-shot run can dump them to a textfile.
type Metrics struct {
	registry     *prometheus.Registry
	results      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	failedAgents prometheus.Gauge
}

// NewMetrics creates the metric set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		results: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_test_results_total",
				Help: "Agent test results by agent and outcome",
			},
			[]string{"agent", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_test_duration_seconds",
				Help:    "Wall time of agent test subprocesses",
				Buckets: []float64{1, 5, 15, 30, 60, 90, 120, 180},
			},
			[]string{"agent"},
		),
		failedAgents: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agent_test_failed_agents",
				Help: "Number of agents that failed in the last run",
			},
		),
	}
}

// Observe implements Recorder.
func (m *Metrics) Observe(r Result) {
	m.results.WithLabelValues(r.Agent, string(r.Outcome)).Inc()
	if r.Outcome != OutcomeSkipped {
		m.duration.WithLabelValues(r.Agent).Observe(r.Duration.Seconds())
	}
}

// ObserveReport records run-level values.
func (m *Metrics) ObserveReport(report *Report) {
	m.failedAgents.Set(float64(report.Failed()))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
