// Command sync runs one Strava sync against the configured store and prints
// the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"runlab/stride/internal/api"
	"runlab/stride/internal/config"
	"runlab/stride/internal/jobs"
	"runlab/stride/internal/logging"
	"runlab/stride/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	log.SetOutput(os.Stderr)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the exit code so that deferred cleanup happens before exit.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modeFlag := fs.String("mode", "", `sync mode: "" for incremental, "full" to refetch every activity`)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	mode, err := jobs.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	if err := logging.Init(cfg.App.Env); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return 1
	}
	defer logging.Close()
	logger := logging.GetLogger()

	deps, err := api.InitDependencies(cfg, metrics.NewMetricsRegistry(prometheus.NewRegistry()), logger)
	if err != nil {
		logger.Errorw("Failed to initialize dependencies", "error", err)
		return 1
	}
	defer deps.Close()

	if deps.Redis == nil {
		logger.Warnw("Redis is disabled: a running server keeps its cached analytics until cache.ttl expires")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := deps.SyncJob.RunSync(ctx, mode)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if runErr != nil {
		_ = enc.Encode(map[string]string{"error": runErr.Error()})
		fmt.Fprintln(stderr, "sync failed:", runErr)
		return 1
	}
	if err := enc.Encode(result); err != nil {
		logger.Errorw("Failed to encode result", "error", err)
		return 1
	}
	return 0
}
