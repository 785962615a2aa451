package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records HTTP request metrics through an OpenTelemetry meter
// exported on the Prometheus default registry.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
}

// New builds the meter provider. On exporter failure it returns a no-op
// instance; the error is returned for logging.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName), nil
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	requestCounter, _ := meter.Int64Counter(
		"http.server.requests",
		otelmetric.WithDescription("Number of HTTP requests served"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"http.server.duration",
		otelmetric.WithDescription("HTTP request duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}
}

// RecordRequest records one served request.
func (o *Observability) RecordRequest(ctx context.Context, route string, status int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

// Middleware records every request passing through next under route.
func (o *Observability) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		o.RecordRequest(r.Context(), route, sw.status, time.Since(start))
	})
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
