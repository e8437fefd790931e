package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for spans and pipeline metrics.
const TracerName = "assistant-api"

var (
	stageHistogram     metric.Float64Histogram
	stageHistogramOnce sync.Once
)

// StartSpan starts a span on the service tracer.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, spanName, opts...)
}

// StartStage opens a child span named "image.<stage>" for one step of the
// image pipeline. The returned finish func must be called exactly once with
// the stage result: it marks the span failed on a non-nil error, ends it and
// records the stage duration histogram.
func StartStage(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	started := time.Now()
	attrs = append(attrs, attribute.String("stage", stage))
	ctx, span := StartSpan(ctx, "image."+stage, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if h := stageDurationHistogram(); h != nil {
			h.Record(ctx, time.Since(started).Seconds(), metric.WithAttributes(
				attribute.String("stage", stage),
				attribute.String("outcome", outcome),
			))
		}
	}
}

// stageDurationHistogram is created on the global meter, which forwards to
// the provider installed by Setup.
func stageDurationHistogram() metric.Float64Histogram {
	stageHistogramOnce.Do(func() {
		h, err := otel.Meter(TracerName).Float64Histogram(
			"assistant.pipeline.stage.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of image pipeline stages"),
		)
		if err == nil {
			stageHistogram = h
		}
	})
	return stageHistogram
}

func AddSpanAttributes(ctx context.Context, attributes ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attributes...)
	}
}

func AddSpanEvent(ctx context.Context, name string, attributes ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attributes...))
	}
}

// RecordError marks the current span failed.
func RecordError(ctx context.Context, err error) {
	if span := trace.SpanFromContext(ctx); err != nil && span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SpanIDs returns the hex trace and span ids of the span in ctx. ok is false
// when ctx carries no valid span context.
func SpanIDs(ctx context.Context) (traceID, spanID string, ok bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
