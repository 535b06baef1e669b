package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	corecfg "github.com/aevon-lab/folio-analytics/internal/core/config"
	"github.com/aevon-lab/folio-analytics/internal/hub"
	"github.com/aevon-lab/folio-analytics/internal/ingestion"
	"github.com/aevon-lab/folio-analytics/internal/projection"
	"github.com/aevon-lab/folio-analytics/internal/scheduler"
	"github.com/aevon-lab/folio-analytics/internal/server"
	"github.com/aevon-lab/folio-analytics/internal/sink"
	"github.com/aevon-lab/folio-analytics/internal/tracker"
)

func main() {
	configPath := flag.String("config", "folio.yaml", "Path to configuration file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before config")
	flag.Parse()

	// 0. Bootstrap environment and logger
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 1. Load Configuration
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		slog.Warn("Config file not found, using defaults and environment", "path", *configPath)
		*configPath = ""
	}
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))
	slog.Info("Loaded config",
		"storage", cfg.Storage.Driver,
		"flush_interval", cfg.Tracking.FlushInterval,
		"max_sessions", cfg.Tracking.MaxSessions,
		"sink_enabled", cfg.Sink.Endpoint != "",
	)

	retention, _ := cfg.Tracking.RetentionPeriod() // validated by Load

	// 2. Initialize Storage
	store, health, err := openStore(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// 3. Initialize external metrics sink
	forwarder := sink.NewForwarder(sink.Config{
		Endpoint:         cfg.Sink.Endpoint,
		Timeout:          cfg.Sink.Timeout,
		FailureThreshold: cfg.Sink.FailureThreshold,
		OpenTimeout:      cfg.Sink.OpenTimeout,
		QueueSize:        cfg.Sink.QueueSize,
	})
	var listeners []tracker.Listener
	if forwarder != nil {
		listeners = append(listeners, forwarder)
	}

	// 4. Initialize session hub and load history
	sessions := hub.New(hub.Options{
		Store:          store,
		Listeners:      listeners,
		MaxSessions:    cfg.Tracking.MaxSessions,
		IdleTimeout:    cfg.Tracking.IdleTimeout,
		ScrollInterval: cfg.Tracking.ScrollInterval,
	})

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sessions.LoadHistory(loadCtx); err != nil {
		// Analytics start from an empty history; the service stays up.
		slog.Error("Failed to load session history", "error", err)
	}
	cancelLoad()

	// 5. Initialize HTTP services
	ingestionSvc := ingestion.NewService(sessions, cfg.Server.MaxBodySizeKB)
	projectionSvc := projection.NewService(sessions, cfg.Tracking.DefaultWindow)

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, cfg.Storage.Driver, health, sessions)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	sched := scheduler.New(sessions, scheduler.Config{
		FlushInterval:   cfg.Tracking.FlushInterval,
		RefreshInterval: cfg.Tracking.RefreshInterval,
		PruneInterval:   cfg.Tracking.PruneInterval,
		Retention:       retention,
	})

	// 6. Start Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Start(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	if err := g.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
	}

	// 7. Shutdown: end live sessions, then drain the sink
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sessions.Close(shutdownCtx); err != nil {
		slog.Error("Failed to close session hub", "error", err)
	}
	if err := forwarder.Close(shutdownCtx); err != nil {
		slog.Error("Failed to drain metrics sink", "error", err)
	}

	slog.Info("Shutdown complete")
}

func newLogger(cfg corecfg.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
