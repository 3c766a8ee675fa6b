package main

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"starrlist/internal/config"
	"starrlist/internal/services/trakt"
)

// errEventUnhandled signals a hook run that finished without a watchlist
// action. It maps to a nonzero exit status without the fatal-error banner.
var errEventUnhandled = errors.New("event not handled")

func loadConfig(configFlag *string) (*config.Config, error) {
	path := ""
	if configFlag != nil {
		path = *configFlag
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAuthority wires an Authority from configuration. The prompter decides
// whether interactive authorization is available to this invocation.
func newAuthority(cfg *config.Config, prompter trakt.Prompter, logger *slog.Logger) (*trakt.Authority, error) {
	return trakt.NewAuthority(cfg.Trakt.ClientID, cfg.Trakt.ClientSecret,
		trakt.WithBaseURL(cfg.Trakt.BaseURL),
		trakt.WithAuthorizeURL(cfg.Trakt.AuthorizeURL),
		trakt.WithTokenStore(trakt.NewFileTokenStore(cfg.TokenFilePath())),
		trakt.WithPrompter(prompter),
		trakt.WithExchangeTimeout(time.Duration(cfg.Trakt.ExchangeTimeout)*time.Second),
		trakt.WithLogger(logger),
	)
}

func newWatchlistClient(cfg *config.Config, authority *trakt.Authority, logger *slog.Logger, out io.Writer) (*trakt.Client, error) {
	return trakt.NewClient(authority,
		trakt.WithClientBaseURL(cfg.Trakt.BaseURL),
		trakt.WithClientTimeout(time.Duration(cfg.Trakt.RequestTimeout)*time.Second),
		trakt.WithClientLogger(logger),
		trakt.WithClientOutput(out),
	)
}
