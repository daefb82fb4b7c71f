package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// Default tracer name for pulse applications.
const defaultTracerName = "pulse"

// TraceConfig configures batch tracing.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "pulse").
	TracerName string

	// Attributes are added to every batch span.
	Attributes []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures batch tracing.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithAttributes adds attributes to every batch span.
func WithAttributes(attrs ...attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Tracer wraps batch execution in OpenTelemetry spans. It uses the
// global tracer provider; configure that in main() before use.
type Tracer struct {
	config TraceConfig
}

// NewTracer creates a batch tracer.
func NewTracer(opts ...TraceOption) *Tracer {
	config := TraceConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &Tracer{config: config}
}

// TracedBatch runs fn inside a batch and records it as a span named
// "pulse.batch <name>". A panic in fn is recorded on the span and
// re-raised after queued listeners flush.
func (t *Tracer) TracedBatch(ctx context.Context, name string, fn func()) {
	spanName := fmt.Sprintf("pulse.batch %s", name)

	attrs := append([]attribute.KeyValue{
		attribute.String("pulse.batch_name", name),
	}, t.config.Attributes...)

	_, span := t.config.tracer.Start(
		ctx,
		spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic in batch: %v", r)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			panic(r)
		}
		span.SetStatus(codes.Ok, "")
	}()

	pulse.Batch(fn)
}

// TracedBatch runs fn inside a batch span using a default tracer.
func TracedBatch(ctx context.Context, name string, fn func()) {
	defaultTracer.TracedBatch(ctx, name, fn)
}

var defaultTracer = NewTracer()
