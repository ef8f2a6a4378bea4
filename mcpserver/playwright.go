// Package mcpserver describes the MCP tool servers the agents launch over stdio.
// It only builds configuration; starting and talking to the process is left to
// the agent runtime that consumes it.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"
)

const (
	// PlaywrightServerName is the key used for the browser server in manifests.
	PlaywrightServerName = "playwright"

	// DefaultTimeoutSeconds is the client session timeout used when none is given.
	DefaultTimeoutSeconds = 60
)

// playwrightArgs runs the browser headless inside containers without a
// usable sandbox or /dev/shm and tolerates self-signed certificates.
var playwrightArgs = []string{
	"@playwright/mcp",
	"--headless",
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--ignore-https-errors",
}

// StdioParams is how a stdio MCP server process is launched.
type StdioParams struct {
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args" yaml:"args"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// StdioServer is a named stdio MCP server plus the client session timeout
// the runtime should apply to it.
type StdioServer struct {
	Name                        string
	Params                      StdioParams
	ClientSessionTimeoutSeconds int
}

// Option customises a server built by NewPlaywrightServer.
type Option func(*StdioServer)

// WithTimeout sets the client session timeout in seconds. The value is not
// validated.
func WithTimeout(seconds int) Option {
	return func(s *StdioServer) {
		s.ClientSessionTimeoutSeconds = seconds
	}
}

// WithEnv adds an environment variable for the server process.
func WithEnv(key, value string) Option {
	return func(s *StdioServer) {
		if s.Params.Env == nil {
			s.Params.Env = map[string]string{}
		}
		s.Params.Env[key] = value
	}
}

// NewPlaywrightServer returns the Playwright MCP server configuration used for
// web browsing. Nothing is started.
func NewPlaywrightServer(opts ...Option) StdioServer {
	args := make([]string, len(playwrightArgs))
	copy(args, playwrightArgs)

	s := StdioServer{
		Name: PlaywrightServerName,
		Params: StdioParams{
			Command: "npx",
			Args:    args,
		},
		ClientSessionTimeoutSeconds: DefaultTimeoutSeconds,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ClientSessionTimeout returns the session timeout as a duration.
func (s StdioServer) ClientSessionTimeout() time.Duration {
	return time.Duration(s.ClientSessionTimeoutSeconds) * time.Second
}

// Command builds, without starting, the process a runtime would launch for
// this server. The child inherits the current environment plus Params.Env.
func (s StdioServer) Command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, s.Params.Command, s.Params.Args...)
	if len(s.Params.Env) > 0 {
		env := os.Environ()
		keys := make([]string, 0, len(s.Params.Env))
		for k := range s.Params.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			env = append(env, fmt.Sprintf("%s=%s", k, s.Params.Env[k]))
		}
		cmd.Env = env
	}
	return cmd
}
