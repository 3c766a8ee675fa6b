package main

import (
	"errors"

	"github.com/spf13/cobra"

	"starrlist/internal/logging"
	"starrlist/internal/services/trakt"
)

func newAuthCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize with Trakt using the PIN flow",
		Long: "Obtains a fresh Trakt token. An existing refresh token is used " +
			"when possible; otherwise you are asked to open the authorization " +
			"URL and paste the PIN.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger := logging.NewFromConfig(cfg, "auth")
			prompter := trakt.NewStdinPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			authority, err := newAuthority(cfg, prompter, logger)
			if err != nil {
				return err
			}

			if _, err := authority.ForceRefresh(cmd.Context()); err != nil {
				return err
			}

			client, err := newWatchlistClient(cfg, authority, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !client.TestConnection(cmd.Context()) {
				return errors.New("trakt authentication test failed")
			}
			return nil
		},
	}
}
