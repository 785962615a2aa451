// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WarehouseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_warehouse_queries_total",
			Help: "Total number of warehouse queries by query type and status",
		},
		[]string{"query_type", "status"},
	)

	WarehouseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_warehouse_query_duration_seconds",
			Help:    "Duration of warehouse queries in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"query_type"},
	)

	CopilotCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_copilot_completions_total",
			Help: "Total number of copilot completion calls by backend and status",
		},
		[]string{"backend", "status"},
	)

	CopilotValidationRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_copilot_rejected_questions_total",
			Help: "Copilot submissions blocked because the question was blank",
		},
	)

	SegmentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_segment_cache_lookups_total",
			Help: "Segment cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	PageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_page_renders_total",
			Help: "Dashboard page renders by outcome",
		},
		[]string{"outcome"},
	)
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
)
