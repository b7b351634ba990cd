package fileserver

import (
	"errors"
	"time"
)

// Config configures the client for the file server's admin API.
type Config struct {
	// BaseURL is the admin API base address
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// APIKey is sent as X-Admin-Key on every request
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Timeout bounds every request; a hung file server must not hang
	// the caller indefinitely
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("fileserver: base_url is required")
	}

	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
