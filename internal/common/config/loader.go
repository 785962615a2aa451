// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBillingView is the dynamic table maintained by the warehouse that
// aggregates billing and scores anomalies.
const DefaultBillingView = "SNOWFLAKE_EXAMPLE.SFE_ANALYTICS_COSTS.DT_ACCOUNT_BILLING"

// DefaultCopilotModel is the hosted completion model used by the copilot.
const DefaultCopilotModel = "snowflake-arctic"

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// WAREHOUSE_PASSWORD overrides warehouse.password and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // environment overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		// an unset variable expands to "" so optional settings stay off
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// Direct override if secrets are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Warehouse.User == "" {
		if val := os.Getenv("SNOWFLAKE_USER"); val != "" {
			cfg.Warehouse.User = val
		}
	}
	if cfg.Warehouse.Password == "" {
		if val := os.Getenv("SNOWFLAKE_PASSWORD"); val != "" {
			cfg.Warehouse.Password = val
		}
	}
	if cfg.Warehouse.Account == "" {
		if val := os.Getenv("SNOWFLAKE_ACCOUNT"); val != "" {
			cfg.Warehouse.Account = val
		}
	}
	if cfg.Copilot.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.Copilot.GenAI.APIKey = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "billing-intelligence"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}

	if cfg.Warehouse.Driver == "" {
		cfg.Warehouse.Driver = DriverSnowflake
	}
	if cfg.Warehouse.BillingView == "" {
		cfg.Warehouse.BillingView = DefaultBillingView
	}
	if cfg.Warehouse.QueryTimeout == 0 {
		cfg.Warehouse.QueryTimeout = 60000
	}
	if cfg.Warehouse.MaxConnections == 0 {
		cfg.Warehouse.MaxConnections = 10
	}
	if cfg.Warehouse.MaxIdle == 0 {
		cfg.Warehouse.MaxIdle = 2
	}
	if cfg.Warehouse.Driver == DriverPostgres {
		if cfg.Warehouse.Port == 0 {
			cfg.Warehouse.Port = 5432
		}
		if cfg.Warehouse.SSLMode == "" {
			cfg.Warehouse.SSLMode = "disable"
		}
	}

	if cfg.Cache.SegmentTTL == 0 {
		cfg.Cache.SegmentTTL = 60000
	}

	if cfg.Copilot.Backend == "" {
		cfg.Copilot.Backend = CopilotBackendWarehouse
	}
	if cfg.Copilot.Model == "" {
		cfg.Copilot.Model = DefaultCopilotModel
	}
	if cfg.Copilot.Timeout == 0 {
		cfg.Copilot.Timeout = 120000
	}

	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = MinWriteTimeout(cfg.Warehouse.QueryTimeout, cfg.Copilot.Timeout)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Warehouse.Driver {
	case DriverSnowflake:
		if cfg.Warehouse.Account == "" {
			return fmt.Errorf("warehouse.account is required for the snowflake driver")
		}
	case DriverPostgres:
		if cfg.Warehouse.Host == "" {
			return fmt.Errorf("warehouse.host is required for the postgres driver")
		}
		if cfg.Warehouse.Database == "" {
			return fmt.Errorf("warehouse.database is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported warehouse.driver %q", cfg.Warehouse.Driver)
	}

	if cfg.Warehouse.User == "" {
		return fmt.Errorf("warehouse.user is required")
	}

	if minWrite := MinWriteTimeout(cfg.Warehouse.QueryTimeout, cfg.Copilot.Timeout); cfg.Server.WriteTimeout < minWrite {
		return fmt.Errorf("server.write_timeout (%dms) must be at least %dms so timeout error pages reach the client", cfg.Server.WriteTimeout, minWrite)
	}

	switch cfg.Copilot.Backend {
	case CopilotBackendWarehouse:
	case CopilotBackendHTTP:
		if cfg.Copilot.GenAI.BaseURL == "" {
			return fmt.Errorf("copilot.genai.base_url is required for the http backend")
		}
	default:
		return fmt.Errorf("unsupported copilot.backend %q", cfg.Copilot.Backend)
	}

	return nil
}

// writeTimeoutHeadroom covers template rendering after the last backend call.
const writeTimeoutHeadroom = 5000

// MinWriteTimeout returns the shortest server write timeout, in milliseconds,
// that outlasts a page render: three sequential panel queries, then the
// copilot completion. The write deadline starts when the request headers are
// read, so anything shorter drops the connection before a timeout page is
// written.
func MinWriteTimeout(queryTimeout, copilotTimeout int) int {
	return 3*queryTimeout + copilotTimeout + writeTimeoutHeadroom
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
