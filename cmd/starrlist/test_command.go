package main

import (
	"errors"

	"github.com/spf13/cobra"

	"starrlist/internal/logging"
	"starrlist/internal/services/trakt"
)

func newTestCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Verify Trakt connectivity with the stored token",
		Args:  cobra.NoArgs,
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

			logger := logging.NewFromConfig(cfg, "test")
			authority, err := newAuthority(cfg, trakt.TerminalPrompter(), logger)
			if err != nil {
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
