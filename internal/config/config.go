package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Trakt contains connection settings for the Trakt API. Client credentials
// are never read from the config file; they arrive via the TRAKT_CLIENT_ID
// and TRAKT_CLIENT_SECRET environment variables.
type Trakt struct {
	BaseURL         string `toml:"base_url"`
	AuthorizeURL    string `toml:"authorize_url"`
	RequestTimeout  int    `toml:"request_timeout"`
	ExchangeTimeout int    `toml:"exchange_timeout"`

	ClientID     string `toml:"-"`
	ClientSecret string `toml:"-"`
}

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for the rotating log files.
type Logging struct {
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Journal contains configuration for the local invocation journal.
type Journal struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// Config encapsulates all configuration values for starrlist.
type Config struct {
	Trakt   Trakt   `toml:"trakt"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
	Journal Journal `toml:"journal"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/starrlist/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: the defaults are already a working configuration. The second
// return value is the resolved config path, the third reports whether the
// file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Trakt.ClientID = strings.TrimSpace(os.Getenv("TRAKT_CLIENT_ID"))
	cfg.Trakt.ClientSecret = strings.TrimSpace(os.Getenv("TRAKT_CLIENT_SECRET"))

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// RequireCredentials verifies that the Trakt client credentials were supplied.
// Commands that never talk to Trakt skip this check.
func (c *Config) RequireCredentials() error {
	if c.Trakt.ClientID == "" || c.Trakt.ClientSecret == "" {
		return errors.New("TRAKT_CLIENT_ID and TRAKT_CLIENT_SECRET must be provided as environment variables")
	}
	return nil
}

// HasCredentials reports whether both Trakt client credentials are set.
func (c *Config) HasCredentials() bool {
	return c.RequireCredentials() == nil
}

// EnsureDirectories creates the state and log directories. The state
// directory holds tokens, so it is private to the invoking user.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// TokenFilePath returns the location of the persisted Trakt token record.
func (c *Config) TokenFilePath() string {
	return filepath.Join(c.Paths.StateDir, "trakt_tokens.json")
}

// JournalPath returns the location of the invocation journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LogPath returns the rotating log file for the given application variant.
func (c *Config) LogPath(app string) string {
	return filepath.Join(c.Paths.LogDir, app+"_trakt.log")
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Trakt.BaseURL = strings.TrimRight(strings.TrimSpace(c.Trakt.BaseURL), "/")
	c.Trakt.AuthorizeURL = strings.TrimRight(strings.TrimSpace(c.Trakt.AuthorizeURL), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
