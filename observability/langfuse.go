package observability

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	otlpTracesPath = "/api/public/otel/v1/traces"
	projectsPath   = "/api/public/projects"
)

// LangfuseClient exports OpenTelemetry spans to LangFuse's OTLP endpoint.
// While active it is the global tracer provider, so anything instrumented
// with otel is captured.
type LangfuseClient struct {
	provider *sdktrace.TracerProvider
	previous trace.TracerProvider
	host     string
	auth     string
}

// NewLangfuseClient is the default Initializer. Keys and host come from the
// LANGFUSE_* environment variables; cfg.Host is the fallback host.
func NewLangfuseClient(ctx context.Context, cfg Config, log logger.Logger) (Client, error) {
	secret := os.Getenv(EnvSecretKey)
	public := os.Getenv(EnvPublicKey)
	if secret == "" || public == "" {
		return nil, fmt.Errorf("%s and %s are both required", EnvPublicKey, EnvSecretKey)
	}

	host := os.Getenv(EnvHost)
	if host == "" {
		host = cfg.Host
	}
	host = strings.TrimRight(host, "/")
	if host == "" {
		return nil, fmt.Errorf("langfuse host is not configured")
	}

	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(public+":"+secret))

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(host+otlpTracesPath),
		otlptracehttp.WithHeaders(map[string]string{"Authorization": auth}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(cfg.ServiceName))
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	c := &LangfuseClient{
		provider: provider,
		previous: otel.GetTracerProvider(),
		host:     host,
		auth:     auth,
	}
	otel.SetTracerProvider(provider)
	log.Info(ctx, "observability: tracer provider installed", map[string]interface{}{
		"endpoint": host + otlpTracesPath,
	})

	if cfg.AuthCheck {
		if err := c.AuthCheck(ctx); err != nil {
			log.Warn(ctx, "observability: auth check failed but continuing", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			log.Info(ctx, "observability: auth check passed", nil)
		}
	}

	return c, nil
}

// TracerProvider exposes the provider backing the client.
func (c *LangfuseClient) TracerProvider() trace.TracerProvider {
	return c.provider
}

// AuthCheck verifies the credentials against the LangFuse API.
func (c *LangfuseClient) AuthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+projectsPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build auth check request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth check returned status %d", resp.StatusCode)
	}
	return nil
}

// Flush exports all buffered spans.
func (c *LangfuseClient) Flush(ctx context.Context) error {
	return c.provider.ForceFlush(ctx)
}

// Shutdown stops the provider and restores the tracer provider that was
// global before the client was created.
func (c *LangfuseClient) Shutdown(ctx context.Context) error {
	otel.SetTracerProvider(c.previous)
	return c.provider.Shutdown(ctx)
}
