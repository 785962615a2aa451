// internal/panels/segment-selector/config.go
package segmentselector

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  60 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
}
