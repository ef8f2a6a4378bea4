// Package observability wraps units of agent work in a tracing session.
//
// When LangFuse credentials are present in the environment a tracing client is
// installed before the work runs and flushed after it, on every exit path.
// Telemetry problems are logged and never reach the caller; errors and panics
// from the wrapped work are returned or re-raised untouched.
package observability

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Environment variables consulted by the session manager.
const (
	EnvSecretKey   = "LANGFUSE_SECRET_KEY"
	EnvPublicKey   = "LANGFUSE_PUBLIC_KEY"
	EnvHost        = "LANGFUSE_HOST"
	EnvProviderKey = "OPENAI_API_KEY"
)

const (
	DefaultServiceName = "alex_tagger_agent"
	DefaultHost        = "https://cloud.langfuse.com"
	DefaultFlushGrace  = 10 * time.Second

	// teardownTimeout bounds flush and shutdown once the caller's context
	// no longer applies.
	teardownTimeout = 30 * time.Second

	tracerName = "github.com/hairizuanbinnoorazman/agent-backend/observability"
)

// Config controls the tracing client created for a session.
type Config struct {
	ServiceName string
	// Host is used when LANGFUSE_HOST is unset.
	Host string
	// FlushGrace is how long teardown waits after shutdown so exports still
	// in flight can finish before a short-lived process exits.
	FlushGrace time.Duration
	// AuthCheck makes the client verify its credentials during setup.
	AuthCheck bool
}

// DefaultConfig returns the configuration used by the agents.
func DefaultConfig() Config {
	return Config{
		ServiceName: DefaultServiceName,
		Host:        DefaultHost,
		FlushGrace:  DefaultFlushGrace,
		AuthCheck:   true,
	}
}

// Client is a telemetry client that buffers trace data.
type Client interface {
	Flush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Initializer creates the telemetry client for a session.
type Initializer func(ctx context.Context, cfg Config, log logger.Logger) (Client, error)

// Manager opens observability sessions around units of work.
type Manager struct {
	cfg       Config
	log       logger.Logger
	init      Initializer
	lookupEnv func(string) (string, bool)
	sleep     func(time.Duration)
}

// Option customises a Manager.
type Option func(*Manager)

// WithInitializer replaces the LangFuse client initializer.
func WithInitializer(init Initializer) Option {
	return func(m *Manager) { m.init = init }
}

// WithLookupEnv replaces os.LookupEnv for the credential check.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(m *Manager) { m.lookupEnv = lookup }
}

// WithSleep replaces time.Sleep for the post-shutdown grace period.
func WithSleep(sleep func(time.Duration)) Option {
	return func(m *Manager) { m.sleep = sleep }
}

// NewManager returns a Manager using cfg.
func NewManager(cfg Config, log logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		log:       log,
		init:      NewLangfuseClient,
		lookupEnv: os.LookupEnv,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session is the state of one observability scope.
type Session struct {
	client  Client
	flushed bool
}

// Enabled reports whether a telemetry client is active for the session.
func (s *Session) Enabled() bool {
	return s != nil && s.client != nil
}

// Observe runs fn exactly once inside an observability session named name.
// Teardown runs however fn exits. fn's error is returned as is.
func (m *Manager) Observe(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	sess := m.Begin(ctx)
	defer m.End(ctx, sess)

	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Begin checks the environment and, when LangFuse is configured, installs the
// telemetry client. It never fails; setup problems leave the session disabled.
func (m *Manager) Begin(ctx context.Context) *Session {
	m.log.Info(ctx, "observability: checking configuration", nil)

	hasLangfuse := m.present(EnvSecretKey)
	hasProvider := m.present(EnvProviderKey)
	m.log.Info(ctx, "observability: credentials", map[string]interface{}{
		"langfuse_secret_key": hasLangfuse,
		"openai_api_key":      hasProvider,
	})

	sess := &Session{}
	if !hasLangfuse {
		m.log.Info(ctx, "observability: langfuse not configured, skipping setup", nil)
		return sess
	}
	if !hasProvider {
		m.log.Warn(ctx, "observability: OPENAI_API_KEY not set, traces may not export", nil)
	}

	client, err := m.setup(ctx)
	if err != nil {
		m.log.Error(ctx, "observability: setup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return sess
	}

	sess.client = client
	m.log.Info(ctx, "observability: setup complete, traces will be sent to langfuse", map[string]interface{}{
		"service_name": m.cfg.ServiceName,
	})
	return sess
}

// End flushes and shuts down the session's client, then waits for the flush
// grace period. It is a no-op for disabled or already flushed sessions.
// Cancellation of ctx does not cut teardown short.
func (m *Manager) End(ctx context.Context, sess *Session) {
	if !sess.Enabled() {
		m.log.Debug(ctx, "observability: no client to flush", nil)
		return
	}
	if sess.flushed {
		return
	}
	sess.flushed = true

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()

	m.log.Info(ctx, "observability: flushing traces", nil)
	flushErr := m.guard(func() error { return sess.client.Flush(ctx) })
	if flushErr != nil {
		m.log.Error(ctx, "observability: failed to flush traces", map[string]interface{}{
			"error": flushErr.Error(),
		})
	}

	shutdownErr := m.guard(func() error { return sess.client.Shutdown(ctx) })
	if shutdownErr != nil {
		m.log.Error(ctx, "observability: failed to shut down client", map[string]interface{}{
			"error": shutdownErr.Error(),
		})
	}

	m.log.Info(ctx, "observability: waiting for flush to complete", map[string]interface{}{
		"grace": m.cfg.FlushGrace.String(),
	})
	m.sleep(m.cfg.FlushGrace)

	if flushErr == nil && shutdownErr == nil {
		m.log.Info(ctx, "observability: traces flushed", nil)
	}
}

func (m *Manager) setup(ctx context.Context) (client Client, err error) {
	m.log.Info(ctx, "observability: setting up langfuse", nil)
	err = m.guard(func() error {
		var initErr error
		client, initErr = m.init(ctx, m.cfg, m.log)
		return initErr
	})
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("initializer returned no client")
	}
	return client, nil
}

// guard converts a panic raised by telemetry code into an error.
func (m *Manager) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (m *Manager) present(key string) bool {
	v, ok := m.lookupEnv(key)
	return ok && v != ""
}
