package tracing

import (
	"context"
	"testing"

	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogExporterWritesSpans(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewLogExporter(logger)))
	_, span := tp.Tracer(InstrumentationName).Start(context.Background(), "omdb.lookup")
	span.SetAttributes(attribute.String("omdb.title", "Alien"))
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "Span finished", entry.Message)
	assert.Equal(t, "omdb.lookup", entry.Data["span"])
	assert.Equal(t, "Alien", entry.Data["omdb.title"])
}

func TestDisabledTracingIsNoop(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tp, shutdown := NewTracerProvider(&config.Config{TracingEnabled: false}, logger)
	_, span := tp.Tracer(InstrumentationName).Start(context.Background(), "noop")
	span.End()

	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, shutdown(context.Background()))
}
