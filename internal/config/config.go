package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Shop admin API
	StoreDomain string `mapstructure:"store-domain"`
	APIVersion  string `mapstructure:"api-version"`
	AccessToken string `mapstructure:"access-token"`

	// Input directory
	ImagesDir string `mapstructure:"images-dir"`

	// Database paths
	LedgerPath string `mapstructure:"ledger-path"`
	FSMDBPath  string `mapstructure:"fsm-db-path"`

	// Upload pacing and storage endpoint expectations
	UploadDelay         time.Duration `mapstructure:"upload-delay"`
	UploadSuccessStatus int           `mapstructure:"upload-success-status"`

	// Logging
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

// Load reads configuration from environment, config file, and defaults
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("store-domain", "")
	viper.SetDefault("api-version", "2024-07")
	viper.SetDefault("access-token", "")
	viper.SetDefault("images-dir", "./images")
	viper.SetDefault("ledger-path", ".artifacts/uploads.db")
	viper.SetDefault("fsm-db-path", ".artifacts/fsm")
	viper.SetDefault("upload-delay", time.Second)
	viper.SetDefault("upload-success-status", 201)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "text")

	// Environment variables (will be SHOPMEDIA_STORE_DOMAIN, etc.)
	viper.SetEnvPrefix("SHOPMEDIA")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.shopmedia")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Unmarshal into config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.StoreDomain == "" {
		return fmt.Errorf("store-domain cannot be empty")
	}
	if c.APIVersion == "" {
		return fmt.Errorf("api-version cannot be empty")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("access-token cannot be empty (set SHOPMEDIA_ACCESS_TOKEN)")
	}
	if c.ImagesDir == "" {
		return fmt.Errorf("images-dir cannot be empty")
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("ledger-path cannot be empty")
	}
	if c.FSMDBPath == "" {
		return fmt.Errorf("fsm-db-path cannot be empty")
	}
	if c.UploadDelay < 0 {
		return fmt.Errorf("upload-delay must be non-negative")
	}
	if c.UploadSuccessStatus < 100 || c.UploadSuccessStatus > 599 {
		return fmt.Errorf("upload-success-status must be a valid HTTP status code")
	}
	return nil
}
