package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	FeedsFile      string `mapstructure:"feeds_file"`
	PublishersFile string `mapstructure:"publishers_file"`
	BBoltPath      string `mapstructure:"bbolt_path"`

	ListenAddr string `mapstructure:"listen_addr"`

	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `mapstructure:"-"`
	FetchTimeoutSeconds    int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout           time.Duration `mapstructure:"-"`
	BatchSize              int           `mapstructure:"batch_size"`
	RecentWindowSeconds    int64         `mapstructure:"recent_window_seconds"`
	RecentWindow           time.Duration `mapstructure:"-"`

	InsightAPIKey string `mapstructure:"insight_api_key"`
	InsightModel  string `mapstructure:"insight_model"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "newsdeck-aggregator")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("feeds_file", "./configs/feeds.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("bbolt_path", "./data/subscriptions.db")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("refresh_interval_seconds", 600)
	v.SetDefault("fetch_timeout_seconds", 5)
	v.SetDefault("batch_size", 6)
	v.SetDefault("recent_window_seconds", int64(time.Hour/time.Second))
	v.SetDefault("insight_model", "gemini-1.5-flash")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RefreshIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid refresh_interval_seconds (must be positive)")
	}
	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive)")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid batch_size (must be positive)")
	}
	if cfg.RecentWindowSeconds <= 0 {
		return nil, fmt.Errorf("invalid recent_window_seconds (must be positive)")
	}

	cfg.RefreshInterval = time.Duration(cfg.RefreshIntervalSeconds) * time.Second
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	cfg.RecentWindow = time.Duration(cfg.RecentWindowSeconds) * time.Second

	return &cfg, nil
}
