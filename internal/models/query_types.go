// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeSegmentNames   QueryType = "segment_names"
	QueryTypeMonthlyBilling QueryType = "monthly_billing"
	QueryTypeTopAnomalies   QueryType = "top_anomalies"
	QueryTypeCortexComplete QueryType = "cortex_complete"
)
