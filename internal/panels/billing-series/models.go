// internal/panels/billing-series/models.go
package billingseries

import (
	"billing-intelligence/internal/models"

	"github.com/shopspring/decimal"
)

// Input carries the resolved selection. Segment is empty when there is
// nothing to select; Allowed is the option list it was resolved against.
type Input struct {
	Segment string   `json:"segment"`
	Allowed []string `json:"allowed"`
}

type Output struct {
	Segment  string                 `json:"segment,omitempty"`
	Records  []models.BillingRecord `json:"records"`
	Headline *Headline              `json:"headline,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Skipped  bool                   `json:"skipped"`
}

// Empty reports whether there is nothing to chart.
func (o *Output) Empty() bool {
	return o == nil || len(o.Records) == 0
}

// Headline is the latest month's cost.
type Headline struct {
	Label  string          `json:"label"`
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Value  string          `json:"value"`
}
