// Package agenttest runs each agent's own test script in isolation and
// summarises the outcome for the whole backend.
package agenttest

import "time"

// DefaultAgents is the fixed set of agents exercised by a full run.
var DefaultAgents = []string{"tagger", "reporter", "charter", "retirement", "planner"}

const (
	DefaultTestFile      = "test_simple.py"
	DefaultTimeout       = 120 * time.Second
	DefaultSuccessMarker = "Status Code: 200"
)

// Config describes where agent tests live and how to run them.
type Config struct {
	// BaseDir contains one sub-directory per agent.
	BaseDir string
	Agents  []string
	// TestFile is looked up inside each agent directory.
	TestFile string
	// Command is run with TestFile appended as its last argument.
	Command []string
	Timeout time.Duration
	// SuccessMarker in stdout of a passing test enables the highlight lines.
	SuccessMarker string
}

// DefaultConfig returns the configuration for a standard backend checkout
// rooted at baseDir.
func DefaultConfig(baseDir string) Config {
	agents := make([]string, len(DefaultAgents))
	copy(agents, DefaultAgents)
	return Config{
		BaseDir:       baseDir,
		Agents:        agents,
		TestFile:      DefaultTestFile,
		Command:       []string{"uv", "run"},
		Timeout:       DefaultTimeout,
		SuccessMarker: DefaultSuccessMarker,
	}
}
