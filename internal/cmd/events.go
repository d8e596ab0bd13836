package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DewclawArchery/teri-gateway/internal/config"
	"github.com/DewclawArchery/teri-gateway/internal/telemetry"
)

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent assistant events from the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "events.list")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dbPath := cfg.EventsDBPath()
		if dbPath == "" {
			return fmt.Errorf("no event store configured; set TERI_DATA_DIR")
		}

		store, err := telemetry.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("opening event store: %w", err)
		}
		defer store.Close()

		events, err := store.List(ctx, eventsLimit)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		// One JSON object per line, newest first, for piping into jq.
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "maximum events to list")
	rootCmd.AddCommand(eventsCmd)
}
