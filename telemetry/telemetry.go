// Package telemetry traces and counts stage applications with OpenTelemetry.
package telemetry

import (
	"context"
	"io"

	"github.com/davidroman0O/pipefunc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/davidroman0O/pipefunc"

// Span and attribute names.
const (
	SpanName       = "pipefunc.apply"
	AttrStage      = attribute.Key("pipefunc.stage")
	AttrIndex      = attribute.Key("pipefunc.index")
	AttrRunID      = attribute.Key("pipefunc.run_id")
	CounterName    = "pipefunc.stage.applications"
	AttrOutcome    = attribute.Key("pipefunc.outcome")
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// NewMiddleware returns a middleware that opens one span per stage
// application and counts applications by outcome.
func NewMiddleware(tp trace.TracerProvider, mp metric.MeterProvider) (pipefunc.Middleware, error) {
	tracer := tp.Tracer(instrumentationName)
	counter, err := mp.Meter(instrumentationName).Int64Counter(CounterName,
		metric.WithDescription("Number of stage applications"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	return func(next pipefunc.ApplyFunc) pipefunc.ApplyFunc {
		return func(ctx context.Context, s *pipefunc.Stage, index int, v any) (any, error) {
			attrs := []attribute.KeyValue{
				AttrStage.String(s.String()),
				AttrIndex.Int(index),
			}
			ctx, span := tracer.Start(ctx, SpanName, trace.WithAttributes(attrs...))
			span.SetAttributes(AttrRunID.String(pipefunc.RunID(ctx)))
			defer span.End()

			out, err := next(ctx, s, index, v)

			outcome := outcomeSuccess
			if err != nil {
				outcome = outcomeError
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			counter.Add(ctx, 1, metric.WithAttributes(AttrStage.String(s.String()), AttrOutcome.String(outcome)))
			return out, err
		}
	}, nil
}

// InitStdoutTracer creates a tracer provider that writes spans to w.
// The returned function flushes and shuts the provider down.
func InitStdoutTracer(w io.Writer) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return tp, tp.Shutdown, nil
}
