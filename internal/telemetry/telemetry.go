// Package telemetry wires optional OpenTelemetry trace export.
//
// The GraphQL client's HTTP transport is instrumented unconditionally via
// otelhttp; spans only leave the process when this package installs a
// provider, which happens when telemetry is enabled and an OTLP endpoint is
// configured. A failed setup is a warning, never fatal; the server runs
// fine without traces.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/vzeman/biznisweb-mcp-server/internal/config"
	"github.com/vzeman/biznisweb-mcp-server/internal/logging"
)

// ShutdownFunc flushes and stops the trace pipeline.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a global tracer provider exporting to the configured OTLP
// endpoint. When telemetry is disabled or no endpoint is set it installs
// nothing and returns a no-op shutdown.
func Init(ctx context.Context, cfg *config.Config, serviceName string, logger logging.Logger) (ShutdownFunc, error) {
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint == "" {
		return noopShutdown, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpointURL(cfg.Telemetry.Endpoint),
	)
	if err != nil {
		return noopShutdown, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return noopShutdown, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("telemetry initialized", map[string]interface{}{
		"endpoint": cfg.Telemetry.Endpoint,
		"service":  serviceName,
	})
	return provider.Shutdown, nil
}
