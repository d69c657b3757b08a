package tracer

import (
	"context"

	"leadflow-be/internal/config"
	"leadflow-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func noop(context.Context) error { return nil }

// InitTracer installs the global tracer provider and returns its shutdown
// func. Tracing is opt-in through OTEL_ENABLED; a failing exporter leaves
// the API running untraced.
func InitTracer(cfg config.TracingConfig, environment string, log logger.ILogger) func(context.Context) error {
	if !cfg.Enabled {
		log.Info("Tracer", "Tracing disabled", nil)
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("Tracer", "OTLP exporter unavailable, tracing disabled", map[string]interface{}{"error": err.Error()})
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(environment),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info("Tracer", "Tracer initialized", map[string]interface{}{
		"endpoint":     cfg.OTLPEndpoint,
		"sample_ratio": cfg.SampleRatio,
	})
	return tp.Shutdown
}
