package otel

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// LogTraceFields returns a zerolog Func hook that adds trace_id and span_id
// when a valid span exists in ctx, correlating logs with traces:
//
//	log.Info().Str("correlation_id", id).Func(otel.LogTraceFields(ctx)).Msg("...")
//
// Fields are omitted entirely when tracing is disabled so logs stay clean.
func LogTraceFields(ctx context.Context) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		sc := trace.SpanFromContext(ctx).SpanContext()
		if !sc.IsValid() {
			return
		}
		e.Str("trace_id", sc.TraceID().String())
		e.Str("span_id", sc.SpanID().String())
	}
}
