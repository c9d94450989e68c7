package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lanternworks/boardman/internal/github"
	"github.com/lanternworks/boardman/internal/syncer"
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
		repo       string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the tracker snapshot into the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app := loadAppConfig()
			app.applyOverrides(configPath, dbPath, "")

			cfg, err := resolveConfig(app)
			if err != nil {
				return err
			}
			if err := requireRepo(cfg, repo); err != nil {
				return err
			}

			// One-shot command: keep logs quiet, the result goes to stdout.
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			db, err := openStore(ctx, app.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			gh := github.NewClient(github.ExecRunner{}, cfg.Repo, logger)
			res, err := syncer.New(gh, db, cfg.DecisionRetention(), logger).Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Synced %d item(s) from %s, pruned %d.\n",
				res.Fetched, cfg.Repo, res.Pruned)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to boardman.yaml")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the local database")
	cmd.Flags().StringVar(&repo, "repo", "", `repository to manage ("owner/name")`)
	return cmd
}
