package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMiddleware_RecordsRequests(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs := newWithProvider(provider, "test")

	handler := obs.Middleware("/api/v1/anomalies", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/anomalies", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)

	var found bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "http.server.requests" {
			continue
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(3), sum.DataPoints[0].Value)

		status, _ := sum.DataPoints[0].Attributes.Value("status")
		assert.Equal(t, "418", status.AsString())
		found = true
	}
	assert.True(t, found)
}

func TestZeroValue_IsSafe(t *testing.T) {
	var obs Observability
	assert.NotPanics(t, func() {
		obs.RecordRequest(context.Background(), "/", http.StatusOK, 0)
		obs.Shutdown()
	})
}
