package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitWithExporter(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	shutdown, err := InitWithExporter("test", exporter)
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "workflow.FileRequest")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "workflow.FileRequest", spans[0].Name)

	// A second install is a no-op while the first provider is live
	second := tracetest.NewInMemoryExporter()
	noop, err := InitWithExporter("test", second)
	require.NoError(t, err)
	require.NoError(t, noop(context.Background()))

	_, span = otel.Tracer("telemetry_test").Start(context.Background(), "workflow.Approve.assign")
	span.End()
	assert.Len(t, exporter.GetSpans(), 2)
	assert.Empty(t, second.GetSpans())

	require.NoError(t, shutdown(context.Background()))
}

func TestInit_WritesToFile(t *testing.T) {
	path := t.TempDir() + "/spans.json"

	shutdown, err := Init("test", path)
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "directory.AddUser")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.FileExists(t, path)
}
