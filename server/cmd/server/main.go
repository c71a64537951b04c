package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/datapipeline/pipelinemanager/server/internal/api"
	"github.com/datapipeline/pipelinemanager/server/internal/config"
	"github.com/datapipeline/pipelinemanager/server/internal/logging"
	"github.com/datapipeline/pipelinemanager/server/internal/middleware"
	"github.com/datapipeline/pipelinemanager/server/internal/simulate"
	"github.com/datapipeline/pipelinemanager/server/internal/store"
	"github.com/datapipeline/pipelinemanager/server/internal/ws"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

type options struct {
	configPath string
	port       int
	uiDir      string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "pipeline-server",
		Short:        "Data pipeline management API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to config file; built-in defaults when empty")
	cmd.Flags().IntVar(&opts.port, "port", 0, "override server.http_port")
	cmd.Flags().StringVar(&opts.uiDir, "ui-dir", "", "serve a pre-built front-end from this directory under /ui/ (e.g. ui/dist)")
	return cmd
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides copies explicitly set flags over cfg. Reloads call it too so
// a flag keeps winning over the file.
func applyOverrides(cmd *cobra.Command, opts options, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.HTTPPort = opts.port
	}
	if cmd.Flags().Changed("ui-dir") {
		cfg.Server.UIDir = opts.uiDir
	}
}

// onReload applies the hot-reloadable parts of a config change and warns
// about the rest.
func onReload(logger *logging.Logger, origins *middleware.Origins) func(config.Change) {
	return func(ch config.Change) {
		logger.Apply(ch.New.Log)
		if ch.OriginsChanged() {
			origins.Set(ch.New.Server.CORS.AllowedOrigins)
			logger.Info("cors allow-list reloaded", "allowed_origins", ch.New.Server.CORS.AllowedOrigins)
		}
		if keys := ch.RestartRequired(); len(keys) > 0 {
			logger.Warn("config changes need a restart to take effect", "keys", keys)
		}
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log)
	defer logger.Close() //nolint:errcheck
	slog.SetDefault(logger.Logger)

	logger.Info("pipeline-server starting",
		"config", opts.configPath,
		"addr", cfg.Server.Addr(),
		"stream_interval", cfg.Server.Stream.Interval,
		"seed_file", cfg.Server.Seed.File,
	)

	seed := store.DefaultSeed()
	if cfg.Server.Seed.File != "" {
		if seed, err = store.LoadSeed(cfg.Server.Seed.File); err != nil {
			logger.Error("failed to load seed", "file", cfg.Server.Seed.File, "err", err)
			return err
		}
	}
	st := store.New(seed)
	logger.Info("catalog loaded", "pipelines", len(st.Pipelines()))

	h := api.New(st, simulate.NewRandom())

	g, ctx := errgroup.WithContext(ctx)

	origins := middleware.NewOrigins(cfg.Server.CORS.AllowedOrigins)

	// WebSocket hub: pushes dashboard snapshots; disabled when the interval is 0.
	var hub *ws.Hub
	if cfg.Server.Stream.Interval > 0 {
		hub = ws.New(h, cfg.Server.Stream.Interval,
			ws.WithCheckOrigin(middleware.OriginChecker(origins)))
		g.Go(func() error {
			hub.Run(ctx)
			return nil
		})
	}

	if opts.configPath != "" {
		g.Go(func() error {
			apply := onReload(logger, origins)
			err := config.Watch(ctx, opts.configPath, cfg, func(ch config.Change) {
				applyOverrides(cmd, opts, ch.New)
				apply(ch)
			})
			if err != nil {
				// Reload is best effort; the server keeps running without it.
				logger.Warn("config watcher stopped", "err", err)
			}
			return nil
		})
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newRouter(cfg.Server, logger.Logger, h, hub, origins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("pipeline-server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("pipeline-server stopped", "err", err)
		return err
	}
	return nil
}
