// Package tracing provides OpenTelemetry span helpers for cache
// operations. It is entirely optional — spans are only created when a
// [Config] is wired in via the WithTracing option.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the OpenTelemetry configuration used for cache operation
// spans.
type Config struct {
	// TracerProvider supplies the Tracer used to create spans. When nil the
	// global otel.GetTracerProvider() is used.
	TracerProvider trace.TracerProvider
}

// tracer returns a configured [trace.Tracer].
func (c *Config) tracer() trace.Tracer {
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer("github.com/Keksclan/goSquirrelStash/tracing")
}

// Span wraps an in-flight operation span.
type Span struct {
	span trace.Span
}

// Start opens a client span named after the cache operation and tags it
// with the key being accessed.
func (c *Config) Start(ctx context.Context, op, key string) (context.Context, Span) {
	ctx, span := c.tracer().Start(ctx, "stash."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", op),
		attribute.String("cache.key", key),
	)
	return ctx, Span{span: span}
}

// End records the operation outcome and closes the span. hit reports
// whether the operation produced a value (or, for writes, took effect).
func (s Span) End(hit bool, err error) {
	if s.span == nil {
		return
	}
	s.span.SetAttributes(attribute.Bool("cache.hit", hit))
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
