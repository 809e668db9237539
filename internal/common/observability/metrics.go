package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	rebuildCounter otelmetric.Int64Counter
	rebuildTime    otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	rebuildCounter, _ := meter.Int64Counter(
		"timeline.reconstructions",
		otelmetric.WithDescription("Number of timeline reconstructions"),
	)

	rebuildTime, _ := meter.Float64Histogram(
		"timeline.reconstruction.duration",
		otelmetric.WithDescription("Timeline reconstruction duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		rebuildCounter: rebuildCounter,
		rebuildTime:    rebuildTime,
	}
}

func (o *Observability) RecordReconstruction(ctx context.Context, scope string) {
	if o.rebuildCounter != nil {
		o.rebuildCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("scope", scope),
		))
	}
}

func (o *Observability) RecordReconstructionDuration(ctx context.Context, duration time.Duration, scope string) {
	if o.rebuildTime != nil {
		o.rebuildTime.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("scope", scope),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
