// Package telemetry installs the OpenTelemetry tracer provider used by the services.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "taskgate"

var (
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
)

// Init installs a stdout span exporter writing to outputFile, or stderr when it
// is empty. Only the first call installs a provider. The returned function
// flushes and shuts the provider down.
func Init(serviceVersion, outputFile string) (func(context.Context) error, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer
	if outputFile != "" {
		f, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace output: %w", err)
		}
		w, closer = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	shutdown, err := InitWithExporter(serviceVersion, exporter)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		err := shutdown(ctx)
		if closer != nil {
			closer.Close()
		}
		return err
	}, nil
}

// InitWithExporter installs exporter behind a synchronous span processor.
func InitWithExporter(serviceVersion string, exporter sdktrace.SpanExporter) (func(context.Context) error, error) {
	mu.Lock()
	defer mu.Unlock()

	if provider != nil {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	provider = tp

	return func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		provider = nil
		return tp.Shutdown(ctx)
	}, nil
}
