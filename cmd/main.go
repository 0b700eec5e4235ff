package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/health-monitor/config"
	"github.com/angeloszaimis/health-monitor/internal/handler"
	"github.com/angeloszaimis/health-monitor/internal/healthcheck"
	"github.com/angeloszaimis/health-monitor/internal/httpserver"
	"github.com/angeloszaimis/health-monitor/internal/lifecycle"
	"github.com/angeloszaimis/health-monitor/internal/metrics"
	"github.com/angeloszaimis/health-monitor/internal/notifier"
	"github.com/angeloszaimis/health-monitor/internal/registry"
	"github.com/angeloszaimis/health-monitor/internal/scheduler"
	"github.com/angeloszaimis/health-monitor/internal/state"
	"github.com/angeloszaimis/health-monitor/pkg/logger"
)

const metricsBufferSize = 1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)
	startedAt := time.Now()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.NewCollector(metricsBufferSize, logger.Component(log, "metrics"))
	collector.Start(ctx)

	reg := registry.FromFile(cfg.Monitor.ServicesFile, logger.Component(log, "registry"))
	store := state.NewStore(reg.Names()...)
	collector.TrackServices(reg.Names()...)

	notify := notifier.New(logger.Component(log, "notifier"), cfg.SendTimeout(), collector,
		buildChannels(cfg, &http.Client{})...)

	checker := healthcheck.NewChecker(
		logger.Component(log, "checker"),
		reg,
		store,
		healthcheck.NewHTTPProber(cfg.ProbeTimeout()),
		notify,
		healthcheck.WithReminderEvery(cfg.Monitor.ReminderEvery),
		healthcheck.WithConcurrency(cfg.Monitor.MaxConcurrentProbes),
		healthcheck.WithRecorder(collector),
		healthcheck.WithStartTime(startedAt),
	)

	sched := scheduler.New(logger.Component(log, "scheduler"), collector, buildTasks(cfg, checker)...)
	lc := lifecycle.New(logger.Component(log, "lifecycle"), notify, cfg.ShutdownGrace())

	router := setupRouter(log,
		handler.NewLivenessHandler(startedAt),
		handler.NewStatusHandler(reg, store),
		collector.Handler(),
	)

	srv, err := httpserver.New(cfg.Server.Address, router)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	if err := srv.Listen(); err != nil {
		log.Error("Failed to bind server", slog.String("address", cfg.Server.Address), slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Serve()
	}()

	log.Info("Health monitoring server running",
		slog.String("address", srv.Addr().String()),
		slog.String("health_endpoint", "/health"))

	lc.Started(ctx, reg.Len())
	sched.Start(ctx)

	select {
	case sig := <-sigCh:
		cancel()
		lc.Stopping(sig.String())
		shutdown(log, srv, sched, lc.Grace())

	case err := <-srvErrCh:
		cancel()
		sched.Wait()
		if err != nil {
			log.Error("Error serving health endpoint", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// buildChannels returns every supported channel. Channels without a
// webhook stay inert and only log.
func buildChannels(cfg *config.Config, client *http.Client) []notifier.Channel {
	return []notifier.Channel{
		notifier.NewDiscord(cfg.Notifications.DiscordWebhookURL, cfg.Notifications.IntegrationName, client),
		notifier.NewTeams(cfg.Notifications.TeamsWebhookURL, cfg.Location(), client),
	}
}

func buildTasks(cfg *config.Config, checker *healthcheck.Checker) []scheduler.Task {
	return []scheduler.Task{
		{
			Name:      "health-check",
			Interval:  cfg.CheckInterval(),
			Immediate: cfg.Monitor.CheckOnStart,
			Run:       checker.RunPass,
		},
		{
			Name:     "summary",
			Interval: cfg.SummaryInterval(),
			Run:      checker.Summarize,
		},
	}
}

// shutdown waits for the scheduler to finish its current pass, bounded by
// grace, then stops the HTTP server.
func shutdown(log *slog.Logger, srv *httpserver.Server, sched *scheduler.Scheduler, grace time.Duration) {
	done := make(chan struct{})
	go func() {
		sched.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		log.Warn("Scheduler did not stop within grace period", slog.Duration("grace", grace))
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", slog.Any("err", err))
	}

	log.Info("Shutdown complete")
}
