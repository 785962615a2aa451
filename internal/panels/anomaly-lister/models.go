// internal/panels/anomaly-lister/models.go
package anomalylister

import "billing-intelligence/internal/models"

type Input struct{}

type Output struct {
	Title    string                 `json:"title"`
	Records  []models.AnomalyRecord `json:"records"`
	Message  string                 `json:"message,omitempty"`
	Expanded bool                   `json:"expanded"`
}

func (o *Output) Empty() bool {
	return o == nil || len(o.Records) == 0
}
