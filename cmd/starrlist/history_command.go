package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"starrlist/internal/journal"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent watchlist actions from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Journal is disabled in the configuration.")
				return nil
			}

			store, err := journal.Open(cfg.JournalPath(), cfg.Journal.MaxEntries)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No journal entries yet.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of entries to show")
	return cmd
}
