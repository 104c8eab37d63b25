package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestSpansAreExported(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := InitWithExporter("voicesim-test", "test", exporter, nil)
	require.NoError(t, err)

	ctx, parent := StartSpan(context.Background(), "listener.heard", KindProducer)
	parent.WithAttributes(map[string]string{"command": "stop"})

	_, child := StartSpan(ctx, "processor.execute", KindConsumer)
	EndSpan(child, errors.New("boom"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "processor.execute", spans[0].Name)
	assert.Equal(t, trace.SpanKindConsumer, spans[0].SpanKind)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())

	assert.Equal(t, "listener.heard", spans[1].Name)
	assert.Equal(t, trace.SpanKindProducer, spans[1].SpanKind)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)

	require.NoError(t, shutdown(context.Background()))
}

func TestNilSpanIsSafe(t *testing.T) {
	var s *Span
	assert.Nil(t, s.WithAttributes(map[string]string{"a": "b"}))
	EndSpan(s, nil)
}
