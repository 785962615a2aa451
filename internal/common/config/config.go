// internal/common/config/config.go
package config

import (
	"fmt"
	"net/url"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Copilot   CopilotConfig   `mapstructure:"copilot"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

// Supported warehouse drivers.
const (
	DriverSnowflake = "snowflake"
	DriverPostgres  = "postgres"
)

// WarehouseConfig describes the connection to the data warehouse holding the
// billing view.
type WarehouseConfig struct {
	Driver         string `mapstructure:"driver"`
	Account        string `mapstructure:"account"` // snowflake only
	Host           string `mapstructure:"host"`    // postgres only
	Port           int    `mapstructure:"port"`    // postgres only
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	Schema         string `mapstructure:"schema"`
	Warehouse      string `mapstructure:"warehouse"` // snowflake compute warehouse
	Role           string `mapstructure:"role"`
	SSLMode        string `mapstructure:"sslmode"`
	BillingView    string `mapstructure:"billing_view"`
	QueryTimeout   int    `mapstructure:"query_timeout"` // milliseconds
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
}

// GetDSN returns the driver specific connection string.
func (w WarehouseConfig) GetDSN() string {
	switch w.Driver {
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			w.Host, w.Port, w.User, w.Password, w.Database, w.SSLMode,
		)
	default:
		q := url.Values{}
		if w.Warehouse != "" {
			q.Set("warehouse", w.Warehouse)
		}
		if w.Role != "" {
			q.Set("role", w.Role)
		}
		path := w.Database
		if w.Schema != "" {
			path += "/" + w.Schema
		}
		dsn := fmt.Sprintf("%s:%s@%s/%s",
			url.QueryEscape(w.User), url.QueryEscape(w.Password), w.Account, path)
		if len(q) > 0 {
			dsn += "?" + q.Encode()
		}
		return dsn
	}
}

// CacheConfig configures the optional Redis cache for slow-changing lookups.
// An empty address disables caching.
type CacheConfig struct {
	Redis      RedisConfig `mapstructure:"redis"`
	SegmentTTL int         `mapstructure:"segment_ttl"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Supported copilot backends.
const (
	CopilotBackendWarehouse = "warehouse"
	CopilotBackendHTTP      = "http"
)

// CopilotConfig holds settings for the billing copilot completion call.
type CopilotConfig struct {
	Backend string `mapstructure:"backend"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds

	GenAI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"genai"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
