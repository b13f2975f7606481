package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runlab/stride/internal/api"
	"runlab/stride/internal/config"
	"runlab/stride/internal/jobs"
	"runlab/stride/internal/logging"
	"runlab/stride/internal/metrics"
	"runlab/stride/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.App.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()
	logger := logging.GetLogger()

	logger.Infow("Stride starting up",
		"environment", cfg.App.Env,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsReg := metrics.NewMetricsRegistry(registry)

	deps, err := api.InitDependencies(cfg, metricsReg, logger)
	if err != nil {
		logger.Fatalw("Failed to initialize dependencies", "error", err)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler, err := jobs.InitializeJobs(ctx, deps.SyncJob, cfg.Sync, logger)
	if err != nil {
		logger.Fatalw("Failed to start sync scheduler", "error", err)
	}

	upSince := time.Now()
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      routes.RegisterRoutes(deps, cfg.Security, registry, upSince, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infow("Server starting", "addr", cfg.Server.Addr, "environment", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}

	// A cancelled sync still records its outcome before the store closes.
	select {
	case <-scheduler.Done():
	case <-shutdownCtx.Done():
		logger.Warnw("Scheduler did not stop before the shutdown deadline")
	}
	logger.Info("Server stopped")
}
