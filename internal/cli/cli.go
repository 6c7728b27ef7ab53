// Package cli wires the scrape, post and purge actions into a cobra
// command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/cityevents/eventline/internal/config"
	"github.com/cityevents/eventline/internal/logger"
	"github.com/cityevents/eventline/internal/pipeline"
	"github.com/cityevents/eventline/internal/poster"
	"github.com/cityevents/eventline/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagOrigin  string
	flagVerbose bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventline",
		Short: "Scrape city event listings into a local database and post them onward",
		Long: `eventline scrapes configured event listings, normalizes their free-text
dates into concrete occurrences, stores them locally and posts not-yet-posted
events to the aggregation middleware.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "eventline.yml", "Path to the YAML configuration file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newParseCmd(), newPostCmd(), newRunCmd(), newPurgeCmd())
	return cmd
}

// app bundles everything a command needs after the config is loaded.
type app struct {
	cfg     *config.Config
	store   *storage.Store
	runner  *pipeline.Runner
	poster  *poster.Client
	sources []pipeline.Source
}

func setup() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	} else if cfg.LogLevel != "" {
		level = logger.ParseLevel(cfg.LogLevel)
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	runner, err := pipeline.NewRunner(cfg, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	sources := make([]pipeline.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		src, err := pipeline.SourceFromConfig(sc)
		if err != nil {
			store.Close()
			return nil, err
		}
		sources = append(sources, src)
	}

	return &app{
		cfg:     cfg,
		store:   store,
		runner:  runner,
		poster:  poster.New(store, posterConfig(cfg)),
		sources: sources,
	}, nil
}

func posterConfig(cfg *config.Config) poster.Config {
	return poster.Config{
		BaseURL:       cfg.Middleware.BaseURL,
		Token:         cfg.Middleware.Token,
		PreActionPath: cfg.Middleware.PreActionPath,
		MaxRetries:    cfg.Middleware.MaxRetries,
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("closing database", logger.Fields{"error": err.Error()})
	}
}

func (a *app) parse(ctx context.Context) error {
	if err := a.poster.PreActionNotice(ctx, "parse"); err != nil {
		logger.Warn("pre-action notice", logger.Fields{"error": err.Error()})
	}
	stats := a.runner.RunAll(ctx, a.sources)
	fmt.Printf("parsed %d items: %d created, %d updated, %d skipped\n",
		stats.Items, stats.Created, stats.Updated, stats.Skipped)
	return nil
}

func (a *app) post(ctx context.Context) error {
	if err := a.poster.PreActionNotice(ctx, "post"); err != nil {
		logger.Warn("pre-action notice", logger.Fields{"error": err.Error()})
	}
	posted, err := a.poster.PostEvents(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("posted %d events\n", posted)
	return nil
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Scrape all configured sources into the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.close()
			return app.parse(cmd.Context())
		},
	}
}

func newPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Post not-yet-posted events to the middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.close()
			return app.post(cmd.Context())
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Parse and post on the configured cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cycle := func() {
				if err := app.parse(ctx); err != nil {
					logger.Error("scheduled parse failed", nil, err)
				}
				if err := app.post(ctx); err != nil {
					logger.Error("scheduled post failed", nil, err)
				}
			}

			scheduler := cron.New()
			if _, err := scheduler.AddFunc(app.cfg.Schedule, cycle); err != nil {
				return fmt.Errorf("schedule %q: %w", app.cfg.Schedule, err)
			}

			logger.Info("scheduler started", logger.Fields{"schedule": app.cfg.Schedule})
			cycle()
			scheduler.Start()
			<-ctx.Done()
			<-scheduler.Stop().Done()
			logger.Info("scheduler stopped", nil)
			return nil
		},
	}
}

func newPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all stored events of one origin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagOrigin == "" {
				return fmt.Errorf("--origin is required")
			}
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.close()

			ctx := cmd.Context()
			if err := app.poster.PreActionNotice(ctx, "purge"); err != nil {
				logger.Warn("pre-action notice", logger.Fields{"error": err.Error()})
			}
			deleted, err := app.store.DeleteByOrigin(ctx, flagOrigin)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d events of origin %s\n", deleted, flagOrigin)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagOrigin, "origin", "", "Origin domain whose events are deleted (required)")
	return cmd
}

// Execute runs the root command and maps the result to an exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
