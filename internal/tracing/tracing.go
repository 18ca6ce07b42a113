// Package tracing configures the OpenTelemetry tracer provider and the HTTP
// middleware that starts a span per request.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/practix/internal/logger"
)

// Config controls tracing. Spans go to Output ("stdout", "stderr" or a file
// path) as JSON lines.
type Config struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Output      string  `mapstructure:"output"`
}

// DefaultConfig returns tracing disabled.
func DefaultConfig() Config {
	return Config{ServiceName: "practix", SampleRatio: 1, Output: "stderr"}
}

// Shutdown flushes and stops the provider.
type Shutdown func(context.Context) error

// Setup installs the global tracer provider. When tracing is disabled the
// global no-op provider is left in place and the returned Shutdown does
// nothing.
func Setup(ctx context.Context, cfg Config, version string, log *logger.Logger) (Shutdown, error) {
	log = logger.OrNop(log)
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	w, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		closeOut()
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "practix"
	}
	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("tracing initialized", "service", name, "output", cfg.Output, "sample_ratio", cfg.SampleRatio)

	return func(ctx context.Context) error {
		defer closeOut()
		return tp.Shutdown(ctx)
	}, nil
}

func openOutput(out string) (io.Writer, func(), error) {
	switch out {
	case "", "stderr":
		return os.Stderr, func() {}, nil
	case "stdout":
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func clampRatio(r float64) float64 {
	return min(max(r, 0), 1)
}

// Middleware starts a server span for each request, continuing any trace
// context carried in the request headers.
func Middleware() gin.HandlerFunc {
	tracer := otel.Tracer("github.com/abhisek/practix/internal/httpapi")
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}
	}
}
