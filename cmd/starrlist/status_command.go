package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"starrlist/internal/config"
	"starrlist/internal/services/trakt"
)

// newStatusCommand reports local state only; it never talks to Trakt.
func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and token state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if configFlag != nil {
				path = *configFlag
			}
			cfg, resolvedPath, exists, err := config.Load(path)
			if err != nil {
				return err
			}

			configSource := resolvedPath + " (not found, using defaults)"
			if exists {
				configSource = resolvedPath
			}

			credentials := "missing"
			if cfg.HasCredentials() {
				credentials = "set"
			}

			rows := [][2]string{
				{"Config file", configSource},
				{"State directory", cfg.Paths.StateDir},
				{"Log directory", cfg.Paths.LogDir},
				{"Trakt API", cfg.Trakt.BaseURL},
				{"Client credentials", credentials},
				{"Token", describeToken(cfg)},
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderStatusTable(rows))
			return nil
		},
	}
}

func describeToken(cfg *config.Config) string {
	record, found, err := trakt.NewFileTokenStore(cfg.TokenFilePath()).Load()
	switch {
	case err != nil:
		return fmt.Sprintf("unreadable (%v)", err)
	case !found:
		return "absent (run 'starrlist auth')"
	case !record.Complete():
		return "incomplete (run 'starrlist auth')"
	case trakt.Expired(record, time.Now()):
		return "expired, will refresh on next use"
	default:
		expires := time.Unix(record.ExpiresAtUnix(), 0).Local()
		return "valid until " + expires.Format("2006-01-02 15:04:05")
	}
}
