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

	StorageType string `mapstructure:"storage_type"`
	DataDir     string `mapstructure:"data_dir"`
	BBoltPath   string `mapstructure:"bbolt_path"`
	SourcesFile string `mapstructure:"sources_file"`
	EventsFile  string `mapstructure:"events_file"`

	FileOptionLimit int `mapstructure:"file_option_limit"`
	DocOptionLimit  int `mapstructure:"doc_option_limit"`

	GeminiAPIKey         string        `mapstructure:"gemini_api_key"`
	GeminiModel          string        `mapstructure:"gemini_model"`
	GeminiTimeoutSeconds int64         `mapstructure:"gemini_timeout_seconds"`
	GeminiTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "regwatch-summarizer")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_type", "csv")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("bbolt_path", "./data/notifications.db")
	v.SetDefault("sources_file", "")
	v.SetDefault("events_file", "")
	v.SetDefault("file_option_limit", 100)
	v.SetDefault("doc_option_limit", 1000)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.0-flash-exp")
	v.SetDefault("gemini_timeout_seconds", 60)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.FileOptionLimit <= 0 {
		return nil, fmt.Errorf("invalid file_option_limit (must be positive)")
	}
	if cfg.DocOptionLimit <= 0 {
		return nil, fmt.Errorf("invalid doc_option_limit (must be positive)")
	}
	if cfg.GeminiTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid gemini_timeout_seconds (must be positive seconds)")
	}
	cfg.GeminiTimeout = time.Duration(cfg.GeminiTimeoutSeconds) * time.Second

	return &cfg, nil
}
