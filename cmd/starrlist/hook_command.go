package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"starrlist/internal/dispatch"
	"starrlist/internal/journal"
	"starrlist/internal/logging"
	"starrlist/internal/services/trakt"
)

// newHookCommand builds the per-application hook entrypoint. The media
// managers invoke it as a custom script connection, so everything it needs
// arrives through the environment or the two optional positional arguments.
func newHookCommand(configFlag *string, variant dispatch.Variant) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s [event-type] [event-json]", variant.App),
		Short: fmt.Sprintf("Handle a %s hook event", variant.App),
		Args:  cobra.MaximumNArgs(2),
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

			logger := logging.NewFromConfig(cfg, variant.App).With(
				"app", variant.App,
				"run_id", uuid.NewString(),
			)

			eventType := dispatch.ResolveEventType(variant, args, os.LookupEnv)

			var event *dispatch.Event
			if len(args) > 1 {
				event, err = dispatch.ParseEvent(args[1])
				if err != nil {
					return err
				}
			} else {
				event = variant.EventFromEnv(os.LookupEnv)
			}

			authority, err := newAuthority(cfg, trakt.TerminalPrompter(), logger)
			if err != nil {
				return err
			}
			client, err := newWatchlistClient(cfg, authority, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			opts := []dispatch.DispatcherOption{dispatch.WithDispatchLogger(logger)}
			if cfg.Journal.Enabled {
				store, journalErr := journal.Open(cfg.JournalPath(), cfg.Journal.MaxEntries)
				if journalErr != nil {
					logger.Warn("journal unavailable, continuing without it", "error", journalErr)
				} else {
					defer store.Close()
					opts = append(opts, dispatch.WithJournal(store))
				}
			}

			dispatcher, err := dispatch.NewDispatcher(variant, client, opts...)
			if err != nil {
				return err
			}

			logger.Info("handling hook event", "event_type", eventType)
			ok, err := dispatcher.Handle(cmd.Context(), eventType, event)
			if err != nil {
				logger.Error("hook event failed", "event_type", eventType, "error", err)
				return err
			}
			if !ok {
				return errEventUnhandled
			}
			return nil
		},
	}
}
