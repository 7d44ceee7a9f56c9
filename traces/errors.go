// Package traces provides OpenTelemetry helpers for the spans this library
// creates around authorization attempts and their HTTP traffic.
package traces

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordError logs err under msg, records it on the span carried by ctx and
// marks the span failed. It returns err unchanged so call sites can record
// and propagate in one step. A nil err is a no-op.
func RecordError(ctx context.Context, msg string, err error, options ...trace.EventOption) error {
	if err == nil {
		return nil
	}
	slog.Error(msg, "error", err)
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, msg)
	return err
}
