package config

const (
	defaultTraktBaseURL      = "https://api.trakt.tv"
	defaultTraktAuthorizeURL = "https://trakt.tv/oauth/authorize"
	defaultRequestTimeout    = 10
	defaultExchangeTimeout   = 15
	defaultStateDir          = "~/.local/share/starrlist"
	defaultLogDir            = "~/.local/share/starrlist/logs"
	defaultLogLevel          = "info"
	defaultLogMaxSizeMB      = 2
	defaultLogMaxBackups     = 5
	defaultJournalMaxEntries = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Trakt: Trakt{
			BaseURL:         defaultTraktBaseURL,
			AuthorizeURL:    defaultTraktAuthorizeURL,
			RequestTimeout:  defaultRequestTimeout,
			ExchangeTimeout: defaultExchangeTimeout,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
		Journal: Journal{
			Enabled:    true,
			MaxEntries: defaultJournalMaxEntries,
		},
	}
}
