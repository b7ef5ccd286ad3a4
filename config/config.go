package config

import (
	"errors"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Provider   ProviderConfig   `yaml:"provider"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the sizes of the check and notification worker pools.
type WorkerPoolConfig struct {
	Size             int `yaml:"size"`
	NotificationSize int `yaml:"notification_size"`
}

// PushConfig holds the VAPID keys for the web push notification channel.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// MonitorConfig holds the monitoring cycle configuration.
type MonitorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Secret          string        `yaml:"secret"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	CooldownSeconds int           `yaml:"cooldown_seconds"`
	Cooldown        time.Duration `yaml:"-"`
	BatchSize       int           `yaml:"batch_size"`
	MaxAttempts     int           `yaml:"max_attempts"`
	BackoffBaseMs   int           `yaml:"backoff_base_ms"`
	BackoffBase     time.Duration `yaml:"-"`
	Compensation    float64       `yaml:"compensation_amount"`
	CompensationCcy string        `yaml:"compensation_currency"`
	AwardCeiling    float64       `yaml:"award_ceiling"`
	AwardCeilingCcy string        `yaml:"award_ceiling_currency"`
}

// ProviderConfig defines the upstream flight-data provider connection.
type ProviderConfig struct {
	BaseURL        string            `yaml:"base_url"`
	APIKey         string            `yaml:"api_key"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Timeout        time.Duration     `yaml:"-"`
	QuoteCacheTTLs int               `yaml:"quote_cache_ttl_seconds"`
	QuoteCacheTTL  time.Duration     `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 300
	}
	cfg.Monitor.Interval = time.Duration(cfg.Monitor.IntervalSeconds) * time.Second

	if cfg.Monitor.CooldownSeconds <= 0 {
		cfg.Monitor.CooldownSeconds = 60
	}
	cfg.Monitor.Cooldown = time.Duration(cfg.Monitor.CooldownSeconds) * time.Second

	if cfg.Monitor.BatchSize <= 0 {
		cfg.Monitor.BatchSize = 50
	}
	if cfg.Monitor.MaxAttempts <= 0 {
		cfg.Monitor.MaxAttempts = 3
	}
	if cfg.Monitor.BackoffBaseMs <= 0 {
		cfg.Monitor.BackoffBaseMs = 500
	}
	cfg.Monitor.BackoffBase = time.Duration(cfg.Monitor.BackoffBaseMs) * time.Millisecond

	if cfg.Monitor.Compensation <= 0 {
		cfg.Monitor.Compensation = 600
	}
	if cfg.Monitor.CompensationCcy == "" {
		cfg.Monitor.CompensationCcy = "EUR"
	}
	if cfg.Monitor.AwardCeiling <= 0 {
		cfg.Monitor.AwardCeiling = 1000
	}
	if cfg.Monitor.AwardCeilingCcy == "" {
		cfg.Monitor.AwardCeilingCcy = "EUR"
	}

	if cfg.Provider.TimeoutSeconds <= 0 {
		cfg.Provider.TimeoutSeconds = 8
	}
	cfg.Provider.Timeout = time.Duration(cfg.Provider.TimeoutSeconds) * time.Second

	if cfg.Provider.QuoteCacheTTLs <= 0 {
		cfg.Provider.QuoteCacheTTLs = 3600
	}
	cfg.Provider.QuoteCacheTTL = time.Duration(cfg.Provider.QuoteCacheTTLs) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 4")
		cfg.WorkerPool.Size = 4
	}
	if cfg.WorkerPool.NotificationSize <= 0 {
		cfg.WorkerPool.NotificationSize = 1
	}

	return &cfg, nil
}

// Validate checks the settings that must be present before a cycle may run.
// A missing monitor secret or provider credential is a startup error, not
// something to discover mid-cycle.
func (c *Config) Validate() error {
	if c.Monitor.Secret == "" {
		return errors.New("monitor.secret must be configured")
	}
	if c.Monitor.Enabled && c.Provider.BaseURL == "" {
		return errors.New("provider.base_url must be configured when the monitor is enabled")
	}
	return nil
}
