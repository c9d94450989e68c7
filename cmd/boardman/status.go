package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/lanternworks/boardman/internal/store"
	"github.com/lanternworks/boardman/internal/syncer"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the local board snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app := loadAppConfig()
			app.applyOverrides(configPath, dbPath, "")

			cfg, err := resolveConfig(app)
			if err != nil {
				return err
			}

			db, err := openStore(ctx, app.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			counts, err := db.CountByState(ctx)
			if err != nil {
				return fmt.Errorf("count items: %w", err)
			}

			fmt.Printf("Board status (db: %s)\n", app.DBPath)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			total := 0
			seen := make(map[string]bool, len(cfg.States))
			for _, state := range cfg.States {
				seen[state] = true
				fmt.Fprintf(w, "  %s\t%d\n", state, counts[state])
				total += counts[state]
			}
			// States present locally but missing from the config still count.
			var extras []string
			for state := range counts {
				if !seen[state] {
					extras = append(extras, state)
				}
			}
			sort.Strings(extras)
			for _, state := range extras {
				label := state
				if label == "" {
					label = "(no state)"
				}
				fmt.Fprintf(w, "  %s\t%d\n", label, counts[state])
				total += counts[state]
			}
			fmt.Fprintf(w, "  Total\t%d\n", total)
			if err := w.Flush(); err != nil {
				return err
			}

			last, err := db.GetSyncMark(ctx, syncer.SyncMark)
			switch {
			case errors.Is(err, store.ErrNotFound):
				fmt.Println("Last sync: never (run boardman sync)")
			case err != nil:
				return fmt.Errorf("read sync mark: %w", err)
			default:
				fmt.Printf("Last sync: %s (%s ago)\n",
					last.Format(time.RFC3339), time.Since(last).Round(time.Second))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to boardman.yaml")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the local database")
	return cmd
}
