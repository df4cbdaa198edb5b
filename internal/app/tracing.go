package app

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

// setupTracing wires the global TracerProvider: OTLP/HTTP when
// OTEL_EXPORTER_OTLP_ENDPOINT is set, otherwise a stdout exporter so traces
// are still visible in local dev. Returns a shutdown func to call on Close.
func setupTracing(ctx context.Context, log *logger.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		exporter, err = otlptracehttp.New(ctx)
		log.Info("tracing configured with OTLP/HTTP exporter", "endpoint", endpoint)
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		log.Info("tracing configured with stdout exporter (no OTEL_EXPORTER_OTLP_ENDPOINT set)")
	}
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", "inquiry-os"),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
