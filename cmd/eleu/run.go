package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/cli"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/engine"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events/retention"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/server"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/source"
	sourcegit "github.com/aletheon/eleutherios-mvp-sub002/pkg/source/git"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/telemetry/health"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/telemetry/logging"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the governance engine",
	Long: `Start the governance engine with the specified configuration.

The engine loads rule documents from the configured source, registers them
as policies, and serves the HTTP API: rule execution, forum submission,
stakeholder management, activation transitions, and audit queries.

Examples:
  # Start with default config
  eleu run

  # Start with custom config
  eleu run --config /etc/eleu/config.yaml

  # Override listen address
  eleu run --listen 0.0.0.0:8080

  # Validate config without starting
  eleu run --dry-run`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Eleu v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// Document store and audit trail.
	st, err := buildStore(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer st.Close()

	storage, err := buildEventStorage(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer storage.Close()

	fmt.Printf("✓ Store initialized (%s)\n", cfg.Store.Backend)
	fmt.Printf("✓ Audit trail initialized (%s)\n", cfg.Events.Backend)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
	}

	eng := engine.New(engine.Options{
		Store:   st,
		Emitter: buildEmitter(cfg, storage),
		Metrics: collector,
		Logger:  logger,
		Config:  cfg.Engine,
	})

	// Policy source: initial sync plus change-driven re-sync.
	if err := startSource(ctx, cfg, eng, logger.With("component", "source")); err != nil {
		return cli.NewCommandError("run", err)
	}

	// Scheduled audit archival.
	if cfg.Events.Archive.Schedule != "" {
		archiver := retention.NewArchiver(storage, &retention.Config{
			Schedule:  cfg.Events.Archive.Schedule,
			Dir:       cfg.Events.Archive.Dir,
			MaxAge:    archiveMaxAge(cfg.Events.Archive.MaxAgeDays),
			BatchSize: cfg.Events.Archive.BatchSize,
		})
		scheduler := retention.NewScheduler(archiver)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("archival scheduler failed to start", "error", err)
		} else {
			defer scheduler.Stop()
			fmt.Printf("✓ Audit archival scheduled (%s)\n", cfg.Events.Archive.Schedule)
		}
	}

	checker := health.New(0)
	checker.Register("store", func(ctx context.Context) error {
		_, _, err := st.GetPolicy(ctx, "healthcheck")
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	checker.Register("events", func(ctx context.Context) error {
		_, err := storage.Count(ctx, &events.Query{Limit: 1})
		return err
	})

	srv := server.New(server.Options{
		Config:      cfg.Server,
		Engine:      eng,
		Events:      storage,
		Health:      checker,
		Metrics:     collector,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
	})

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Println("✓ Server stopped")
	return nil
}

// startSource wires the configured document source to the engine: one
// initial sync, then re-sync on directory changes or new git commits.
func startSource(ctx context.Context, cfg *config.Config, eng *engine.Engine, logger *slog.Logger) error {
	const owner = "system"

	switch cfg.Source.Mode {
	case "dir":
		src := source.NewDirectorySource(cfg.Source.Dir.Path)
		loader := source.NewLoader(src, eng, owner)
		registered, err := loader.Sync(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Policies loaded (%d from %s)\n", registered, cfg.Source.Dir.Path)

		if cfg.Source.Dir.Watch {
			go func() {
				err := src.Watch(ctx, func() {
					if _, err := loader.Sync(ctx); err != nil {
						logger.Warn("policy re-sync failed", "error", err)
					}
				})
				if err != nil {
					logger.Warn("directory watch stopped", "error", err)
				}
			}()
		}
		return nil

	case "git":
		repo, err := sourcegit.NewRepository(cfg.Source.Git)
		if err != nil {
			return err
		}
		if err := repo.Open(ctx); err != nil {
			return err
		}
		if head, err := repo.Head(); err == nil {
			logger.Info("rule repository at", "commit", head.Commit)
		}

		loader := source.NewLoader(repo, eng, owner).WithVersion(func() string {
			head, err := repo.Head()
			if err != nil {
				return ""
			}
			return head.Commit
		})
		registered, err := loader.Sync(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Policies loaded (%d from %s)\n", registered, cfg.Source.Git.URL)

		go func() {
			err := repo.Poll(ctx, func() {
				if _, err := loader.Sync(ctx); err != nil {
					logger.Warn("policy re-sync failed", "error", err)
				}
			})
			if err != nil {
				logger.Warn("git polling stopped", "error", err)
			}
		}()
		return nil

	default:
		return fmt.Errorf("unsupported source mode: %s", cfg.Source.Mode)
	}
}
