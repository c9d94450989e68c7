package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lanternworks/boardman/internal/store"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		dbPath string
		days   int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show decision-log activity by action",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app := loadAppConfig()
			app.applyOverrides("", dbPath, "")

			db, err := openStore(ctx, app.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			var after *time.Time
			if days > 0 {
				t := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
				after = &t
			}

			count := func(action string, status string) (int, error) {
				f := store.DecisionFilter{Limit: 1, After: after}
				if action != "" {
					f.Action = &action
				}
				if status != "" {
					f.Status = &status
				}
				_, total, err := db.ListDecisions(ctx, f)
				return total, err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ACTION\tTOTAL\tERRORS")
			grand := 0
			for _, action := range []string{"classify", "transition", "sync"} {
				total, err := count(action, "")
				if err != nil {
					return fmt.Errorf("count %s decisions: %w", action, err)
				}
				errs, err := count(action, "error")
				if err != nil {
					return fmt.Errorf("count %s errors: %w", action, err)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\n", action, total, errs)
				grand += total
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if days > 0 {
				fmt.Printf("%d decision(s) in the last %d day(s)\n", grand, days)
			} else {
				fmt.Printf("%d decision(s) recorded\n", grand)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the local database")
	cmd.Flags().IntVar(&days, "days", 0, "only count decisions from the last N days")
	return cmd
}
