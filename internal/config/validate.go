package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTrakt(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Journal.Enabled && c.Journal.MaxEntries < 0 {
		return errors.New("journal.max_entries must not be negative")
	}
	return nil
}

func (c *Config) validateTrakt() error {
	for name, value := range map[string]string{
		"trakt.base_url":      c.Trakt.BaseURL,
		"trakt.authorize_url": c.Trakt.AuthorizeURL,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", name)
		}
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL", name)
		}
	}
	if c.Trakt.RequestTimeout <= 0 {
		return errors.New("trakt.request_timeout must be positive")
	}
	if c.Trakt.ExchangeTimeout <= 0 {
		return errors.New("trakt.exchange_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return errors.New("logging.max_size_mb must be positive")
	}
	if c.Logging.MaxBackups < 0 {
		return errors.New("logging.max_backups must not be negative")
	}
	return nil
}
