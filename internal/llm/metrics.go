package llm

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/DewclawArchery/teri-gateway/internal/llm"

var (
	latencyHistogram  metric.Float64Histogram
	metricsOnce       sync.Once
	metricsRegistered bool
)

func initMetrics() {
	meter := otel.Meter(meterName)
	var err error
	latencyHistogram, err = meter.Float64Histogram(
		"teri.gateway.request",
		metric.WithDescription("Wall-clock latency per gateway turn"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	metricsRegistered = true
}

// RecordRequestMetrics records latency per completed turn, tagged with the
// model that answered and whether a fallback attempt was needed.
func RecordRequestMetrics(ctx context.Context, latencyMS float64, model string, ok bool, attempts int) {
	metricsOnce.Do(initMetrics)
	if !metricsRegistered {
		return
	}
	latencyHistogram.Record(ctx, latencyMS, metric.WithAttributes(
		attribute.String("model", model),
		attribute.Bool("ok", ok),
		attribute.Bool("fallback", attempts > 1),
	))
}
