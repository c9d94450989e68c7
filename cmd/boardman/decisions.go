package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/lanternworks/boardman/internal/store"
	"github.com/spf13/cobra"
)

func newDecisionsCmd() *cobra.Command {
	var (
		dbPath string
		itemID int
		action string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "List recorded classify, move, and sync decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app := loadAppConfig()
			app.applyOverrides("", dbPath, "")

			db, err := openStore(ctx, app.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			f := store.DecisionFilter{Limit: limit}
			if itemID > 0 {
				f.ItemID = &itemID
			}
			if action != "" {
				f.Action = &action
			}

			decisions, total, err := db.ListDecisions(ctx, f)
			if err != nil {
				return fmt.Errorf("list decisions: %w", err)
			}
			if len(decisions) == 0 {
				fmt.Println("No decisions recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tITEM\tACTION\tSTATUS\tDETAIL")
			for _, d := range decisions {
				item := "-"
				if d.ItemID > 0 {
					item = strconv.Itoa(d.ItemID)
				}
				act := d.Action
				if d.DryRun {
					act += " (dry)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					d.CreatedAt.Format("2006-01-02 15:04"), item, act, d.Status, d.Detail)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("%d of %d decision(s)\n", len(decisions), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the local database")
	cmd.Flags().IntVar(&itemID, "item", 0, "filter by item id")
	cmd.Flags().StringVar(&action, "action", "", "filter by action (classify, transition, sync)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows to show")
	return cmd
}
