package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lanternworks/boardman/internal/batch"
	"github.com/lanternworks/boardman/internal/cache"
	"github.com/lanternworks/boardman/internal/config"
	"github.com/lanternworks/boardman/internal/gateway"
	"github.com/lanternworks/boardman/internal/github"
	"github.com/lanternworks/boardman/internal/metrics"
	"github.com/lanternworks/boardman/internal/store/sqlite"
	"github.com/lanternworks/boardman/internal/syncer"
	"github.com/lanternworks/boardman/internal/triage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
		repo       string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve board tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(
				context.Background(), syscall.SIGINT, syscall.SIGTERM,
			)
			defer stop()

			app := loadAppConfig()
			app.applyOverrides(configPath, dbPath, logLevel)

			cfg, err := resolveConfig(app)
			if err != nil {
				return err
			}
			if err := requireRepo(cfg, repo); err != nil {
				return err
			}

			level := app.LogLevel
			if level == "" {
				level = cfg.LogLevel
			}
			// Stdout carries the MCP stream; everything else goes to stderr.
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: parseLogLevel(level),
			}))
			slog.SetDefault(logger)

			db, err := openStore(ctx, app.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			deps, err := buildDeps(cfg, db, logger)
			if err != nil {
				return err
			}
			gw := gateway.NewServer(deps.gateway)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("starting MCP server on stdio",
					"repo", cfg.Repo, "db", app.DBPath)
				return gw.RunStdio(ctx)
			})
			if interval := cfg.SyncInterval(); interval > 0 {
				g.Go(func() error {
					return deps.syncer.RunEvery(ctx, interval)
				})
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to boardman.yaml")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the local database")
	cmd.Flags().StringVar(&repo, "repo", "", `repository to manage ("owner/name")`)
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn, or error")
	return cmd
}

// serverDeps bundles everything serve wires together.
type serverDeps struct {
	gateway gateway.Deps
	syncer  *syncer.Syncer
}

func buildDeps(cfg *config.FileConfig, db *sqlite.DB, logger *slog.Logger) (*serverDeps, error) {
	gh := github.NewClient(github.ExecRunner{}, cfg.Repo, logger)

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	ttls := cfg.TTLs()
	c := cache.New[json.RawMessage]()
	recorder := metrics.NewRecorder(logger, cfg.SlowThreshold())

	// Bulk classification and listings read through the cache; sync
	// always hits the tracker fresh.
	lister := cache.NewCachingIssueLister(gh, c, ttls.Remote)

	executor := batch.New(batch.Config{
		Lister:     lister,
		Classifier: engine,
		Store:      db,
		Mutator:    gh,
		States:     cfg.BoardStates(),
		Recorder:   recorder,
		Logger:     logger,
	})

	sync := syncer.New(gh, db, cfg.DecisionRetention(), logger)
	// Every completed pass rewrites the snapshot cached views derive
	// from, including ticks from the background loop.
	sync.AfterRun(c.InvalidateAll)

	return &serverDeps{
		gateway: gateway.Deps{
			Executor:   executor,
			Tracker:    gh,
			Lister:     lister,
			Classifier: engine,
			Store:      db,
			Syncer:     sync,
			Cache:      c,
			Recorder:   recorder,
			TTLs:       ttls,
			States:     cfg.BoardStates(),
			Logger:     logger,
		},
		syncer: sync,
	}, nil
}

func buildEngine(cfg *config.FileConfig, logger *slog.Logger) (*triage.Engine, error) {
	var rules []triage.Rule
	if cfg.RulesFile != "" {
		var err error
		rules, err = triage.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
	}

	var script string
	if cfg.ScriptFile != "" {
		src, err := os.ReadFile(cfg.ScriptFile)
		if err != nil {
			return nil, fmt.Errorf("read script file: %w", err)
		}
		script = string(src)
	}

	return triage.NewEngine(rules, cfg.RequiredFacets, script, logger)
}
