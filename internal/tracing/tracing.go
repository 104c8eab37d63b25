// Package tracing wraps OpenTelemetry so the workers can record spans for
// heard and executed commands. Until Init is called the global no-op tracer
// provider is in effect and spans cost nothing.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dgnsrekt/voicesim"

// Init installs a tracer provider exporting to outputFile (stdout when empty).
// The returned function flushes and shuts the provider down.
func Init(serviceName, serviceVersion, outputFile string) (func(context.Context) error, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, fmt.Errorf("unable to create trace file: %w", err)
		}
		w, closer = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("unable to create trace exporter: %w", err)
	}
	return InitWithExporter(serviceName, serviceVersion, exporter, closer)
}

// InitWithExporter installs a tracer provider using exporter. closer, if not
// nil, is closed after the provider shuts down.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter, closer io.Closer) (func(context.Context) error, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// Kind selects the span kind.
type Kind int

// Span kinds used by the workers.
const (
	KindInternal Kind = iota
	KindProducer
	KindConsumer
)

func (k Kind) otel() trace.SpanKind {
	switch k {
	case KindProducer:
		return trace.SpanKindProducer
	case KindConsumer:
		return trace.SpanKindConsumer
	default:
		return trace.SpanKindInternal
	}
}

// StartSpan starts a span as a child of any span already in ctx.
func StartSpan(ctx context.Context, name string, kind Kind) (context.Context, *Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithSpanKind(kind.otel()))
	return ctx, &Span{span: span}
}

// WithAttributes attaches string attributes to the span.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	s.span.SetAttributes(kv...)
	return s
}

// EndSpan records err (or OK) and ends the span.
func EndSpan(s *Span, err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
