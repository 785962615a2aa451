// internal/panels/copilot-bridge/config.go
package copilotbridge

import "time"

type Config struct {
	Model   string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Model:   "snowflake-arctic",
		Timeout: 120 * time.Second,
	}
}
