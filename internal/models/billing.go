// internal/models/billing.go
package models

import "github.com/shopspring/decimal"

const (
	// AnomalyAlertFlag is the latest_alert value the scoring job writes for
	// flagged rows.
	AnomalyAlertFlag = "ANOMALY"

	// MaxAnomalies caps the anomaly table.
	MaxAnomalies = 10
)

// BillingRecord is one month of aggregated cost for a segment.
type BillingRecord struct {
	BillingMonth string          `json:"billing_month"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// AnomalyRecord is one flagged customer month.
type AnomalyRecord struct {
	CustomerName    string          `json:"customer_name"`
	BillingMonth    string          `json:"billing_month"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	AvgAnomalyScore float64         `json:"avg_anomaly_score"`
	LatestAlert     string          `json:"latest_alert"`
}

// PromptPayload is the context sent to the completion model with a question.
// Segment is null when no segments exist.
type PromptPayload struct {
	Question string  `json:"question"`
	AsOf     string  `json:"as_of"`
	Segment  *string `json:"segment"`
}
