package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "sigstore"

// TracerOption configures a Tracer.
type TracerOption func(*tracerConfig)

type tracerConfig struct {
	name     string
	provider trace.TracerProvider
}

// WithTracerName sets the instrumentation name (default: "sigstore").
func WithTracerName(name string) TracerOption {
	return func(c *tracerConfig) {
		c.name = name
	}
}

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *tracerConfig) {
		c.provider = tp
	}
}

// Tracer starts spans around live-session work.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer resolves a tracer from the configured provider. Without
// WithTracerProvider it uses otel.GetTracerProvider(), which is a no-op
// until the application installs one.
func NewTracer(opts ...TracerOption) *Tracer {
	config := tracerConfig{name: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.provider == nil {
		config.provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: config.provider.Tracer(config.name)}
}

// StartAction starts a span for one dispatched action.
func (t *Tracer) StartAction(ctx context.Context, session, action string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "sigstore.action."+action,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("sigstore.session_id", session),
			attribute.String("sigstore.action", action),
		),
	)
}

// StartFlush starts a span for one tree flush.
func (t *Tracer) StartFlush(ctx context.Context, session string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "sigstore.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("sigstore.session_id", session)),
	)
}

// End records err and the number of re-rendered nodes on span, then ends it.
func End(span trace.Span, nodes int, err error) {
	span.SetAttributes(attribute.Int("sigstore.nodes_rendered", nodes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
