package evaluator

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// telemetry groups the spans and counters of batch evaluation.
type telemetry struct {
	tracer    trace.Tracer
	rows      metric.Int64Counter
	rowErrors metric.Int64Counter
}

func newTelemetry(tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) telemetry {
	rows, err := meter.Int64Counter("sparqlee.evaluator.rows",
		metric.WithDescription("Number of rows evaluated"),
	)
	if err != nil {
		logger.Warn("failed to create row counter", "error", err)
		rows, _ = noop.Meter{}.Int64Counter("sparqlee.evaluator.rows")
	}
	rowErrors, err := meter.Int64Counter("sparqlee.evaluator.row_errors",
		metric.WithDescription("Number of rows whose evaluation failed"),
	)
	if err != nil {
		logger.Warn("failed to create row error counter", "error", err)
		rowErrors, _ = noop.Meter{}.Int64Counter("sparqlee.evaluator.row_errors")
	}
	return telemetry{tracer: tracer, rows: rows, rowErrors: rowErrors}
}

func (t telemetry) startBatch(ctx context.Context, name string, ex string, rows int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "sparqlee."+name,
		trace.WithAttributes(
			attribute.String("expression", ex),
			attribute.Int("rows", rows),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t telemetry) record(ctx context.Context, batch string, rows, failed int) {
	attrs := metric.WithAttributes(attribute.String("batch", batch))
	t.rows.Add(ctx, int64(rows), attrs)
	t.rowErrors.Add(ctx, int64(failed), attrs)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
