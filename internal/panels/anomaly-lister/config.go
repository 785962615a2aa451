// internal/panels/anomaly-lister/config.go
package anomalylister

import (
	"time"

	"billing-intelligence/internal/models"
)

type Config struct {
	Timeout time.Duration
	Limit   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
		Limit:   models.MaxAnomalies,
	}
}
