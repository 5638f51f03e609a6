package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `env:"SLIDES_LISTEN_ADDR,default=:8080"`
	Debug      bool   `env:"SLIDES_DEBUG,default=false"`

	// Directories
	DataDirectory      string `env:"SLIDES_DATA_DIR"`
	UploadsDirectory   string `env:"SLIDES_UPLOADS_DIR"`
	TemplatesDirectory string `env:"SLIDES_TEMPLATES_DIR"`
	StaticDirectory    string `env:"SLIDES_STATIC_DIR"`

	// Logging
	LogLevel  string `env:"SLIDES_LOG_LEVEL,default=info"`
	LogFormat string `env:"SLIDES_LOG_FORMAT,default=console"`

	// Passphrase unlocks an encrypted data directory without prompting
	Passphrase string `env:"SLIDES_PASSPHRASE"`

	// Charts
	PaymentCaptionLift float64 `env:"SLIDES_PAYMENT_CAPTION_LIFT,default=40"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{
		ListenAddr:         ":8080",
		LogLevel:           "info",
		LogFormat:          "console",
		PaymentCaptionLift: 40,
	}
	cfg.fillDirectories()
	return cfg
}

// Load loads configuration from SLIDES_* environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.fillDirectories()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure directories exist
	cfg.ensureDirectories()

	return &cfg, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid SLIDES_LOG_FORMAT %q: want console or json", c.LogFormat)
	}
	if c.PaymentCaptionLift < 0 {
		return fmt.Errorf("invalid SLIDES_PAYMENT_CAPTION_LIFT %v: must not be negative", c.PaymentCaptionLift)
	}
	return nil
}

// fillDirectories derives unset directories from the working directory and
// the data directory
func (c *Config) fillDirectories() {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	if c.DataDirectory == "" {
		c.DataDirectory = filepath.Join(wd, "data")
	}
	if c.UploadsDirectory == "" {
		c.UploadsDirectory = filepath.Join(c.DataDirectory, "uploads")
	}
	if c.TemplatesDirectory == "" {
		c.TemplatesDirectory = filepath.Join(wd, "web", "templates")
	}
	if c.StaticDirectory == "" {
		c.StaticDirectory = filepath.Join(wd, "web", "static")
	}
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	dirs := []string{
		c.DataDirectory,
		c.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			zap.S().Warnf("could not create directory %s: %v", dir, err)
		}
	}
}
