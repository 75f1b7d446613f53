// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pricewatch-it/pricewatch/internal/fetch"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Extract ExtractConfig `mapstructure:"extract"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlConfig governs crawl job behavior.
type CrawlConfig struct {
	BaseURL            string   `mapstructure:"base_url"`
	Stores             []string `mapstructure:"stores"`
	Cities             []string `mapstructure:"cities"`
	FetchConcurrency   int      `mapstructure:"fetch_concurrency"`
	PersistConcurrency int      `mapstructure:"persist_concurrency"`
	DelaySeconds       int      `mapstructure:"delay_seconds"`
}

// ExtractConfig sets the price-plausibility bounds.
type ExtractConfig struct {
	MinPrice      float64 `mapstructure:"min_price"`
	SentinelPrice float64 `mapstructure:"sentinel_price"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// PubSubConfig holds metadata for job-summary notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawl.base_url", "https://glovoapp.com")
	v.SetDefault("crawl.fetch_concurrency", 5)
	v.SetDefault("crawl.persist_concurrency", 5)
	v.SetDefault("crawl.delay_seconds", 1)
	v.SetDefault("extract.min_price", 0.15)
	v.SetDefault("extract.sentinel_price", 999)
	v.SetDefault("http.user_agent", fetch.DefaultUserAgent)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawl.BaseURL == "" {
		return fmt.Errorf("crawl.base_url must be set")
	}
	if c.Crawl.FetchConcurrency <= 0 {
		return fmt.Errorf("crawl.fetch_concurrency must be > 0")
	}
	if c.Crawl.PersistConcurrency <= 0 {
		return fmt.Errorf("crawl.persist_concurrency must be > 0")
	}
	if c.Crawl.DelaySeconds < 0 {
		return fmt.Errorf("crawl.delay_seconds must be >= 0")
	}
	if c.Extract.MinPrice < 0 {
		return fmt.Errorf("extract.min_price must be >= 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}

// Delay converts the configured throttle into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Crawl.DelaySeconds) * time.Second
}

// HTTPTimeout converts the configured client timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
