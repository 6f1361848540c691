package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stocksdash/src/helpers"
	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------

// Cache policy defaults. These mirror the behavior consumers rely on: quotes
// for open markets go stale after 5 minutes, closed markets after a day; the
// persistent cache loads only the last day but keeps a week of history.
const (
	DefaultOpenWindowSeconds   = 300
	DefaultClosedWindowSeconds = 86400
	DefaultNewsWindowSeconds   = 86400
	DefaultLoadWindowHours     = 24
	DefaultPruneAfterDays      = 7
)

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file, applies .env /
// environment overrides, fills defaults and validates the result.
func NewConfig(configPath string) (*Config, error) {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyEnvOverrides()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyEnvOverrides lets deployment environments override the file without
// editing it. Only the knobs that differ between environments are exposed.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STOCKSDASH_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("STOCKSDASH_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("STOCKSDASH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("STOCKSDASH_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("STOCKSDASH_DB_CONNECTION"); v != "" {
		c.Storage.DBConnectionString = v
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Cache.OpenWindowSeconds <= 0 {
		c.Cache.OpenWindowSeconds = DefaultOpenWindowSeconds
	}
	if c.Cache.ClosedWindowSeconds <= 0 {
		c.Cache.ClosedWindowSeconds = DefaultClosedWindowSeconds
	}
	if c.Cache.NewsWindowSeconds <= 0 {
		c.Cache.NewsWindowSeconds = DefaultNewsWindowSeconds
	}
	if c.Cache.LoadWindowHours <= 0 {
		c.Cache.LoadWindowHours = DefaultLoadWindowHours
	}
	if c.Cache.PruneAfterDays <= 0 {
		c.Cache.PruneAfterDays = DefaultPruneAfterDays
	}
	if c.Provider.QuoteURL == "" {
		c.Provider.QuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	}
	if c.Provider.ChartURL == "" {
		c.Provider.ChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if c.Provider.NewsURL == "" {
		c.Provider.NewsURL = "https://query1.finance.yahoo.com/v1/finance/search"
	}
	if c.Network.RequestsPerSecond <= 0 {
		c.Network.RequestsPerSecond = 4
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.Cache.OpenWindowSeconds >= c.Cache.ClosedWindowSeconds {
		return fmt.Errorf("open-market window (%ds) must be shorter than closed-market window (%ds)",
			c.Cache.OpenWindowSeconds, c.Cache.ClosedWindowSeconds)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
