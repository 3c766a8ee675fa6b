package main

import (
	"github.com/spf13/cobra"

	"starrlist/internal/dispatch"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "starrlist",
		Short:         "Bridge Sonarr and Radarr hook events to the Trakt watchlist",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newHookCommand(&configFlag, dispatch.SonarrVariant()))
	rootCmd.AddCommand(newHookCommand(&configFlag, dispatch.RadarrVariant()))
	rootCmd.AddCommand(newAuthCommand(&configFlag))
	rootCmd.AddCommand(newTestCommand(&configFlag))
	rootCmd.AddCommand(newHistoryCommand(&configFlag))
	rootCmd.AddCommand(newStatusCommand(&configFlag))

	return rootCmd
}
