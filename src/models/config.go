package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Logging  MLoggingConfig  `yaml:"logging"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
	Cache    MCacheConfig    `yaml:"cache"`
	Provider MProviderConfig `yaml:"provider"`
}

type MLoggingConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout    int     `yaml:"timeout"`
	MaxRetries        int     `yaml:"retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	UserAgent         string  `yaml:"user_agent"`
}

type MCacheConfig struct {
	OpenWindowSeconds   int `yaml:"open_window_seconds"`
	ClosedWindowSeconds int `yaml:"closed_window_seconds"`
	NewsWindowSeconds   int `yaml:"news_window_seconds"`
	LoadWindowHours     int `yaml:"load_window_hours"`
	PruneAfterDays      int `yaml:"prune_after_days"`
}

type MProviderConfig struct {
	QuoteURL string `yaml:"quote_url"`
	ChartURL string `yaml:"chart_url"`
	NewsURL  string `yaml:"news_url"`
}
