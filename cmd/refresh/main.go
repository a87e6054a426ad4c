// Command refresh runs one full pipeline pass: collect Moodle logs, build
// features, score evasion risk, and persist the snapshot the API serves.
// Intended to be invoked daily from cron.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iapioniers/evasion-backend/internal/app"
	"github.com/iapioniers/evasion-backend/internal/clients/moodle"
	"github.com/iapioniers/evasion-backend/internal/collector"
	"github.com/iapioniers/evasion-backend/internal/platform/logger"
	"github.com/iapioniers/evasion-backend/internal/services"
	"github.com/iapioniers/evasion-backend/internal/snapshot"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := app.LoadConfig()

	client, err := moodle.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init Moodle client", "error", err)
		os.Exit(1)
	}
	store, err := snapshot.NewStore(cfg.SnapshotDBPath, log)
	if err != nil {
		log.Error("Could not init snapshot store", "error", err)
		os.Exit(1)
	}

	coll := collector.New(client, log, collector.ConfigFromEnv())
	refresh := services.NewRefreshService(coll, store, log)

	result, err := refresh.Refresh(context.Background())
	if err != nil {
		log.Error("Snapshot refresh failed; previous snapshot left in place", "error", err)
		os.Exit(1)
	}
	log.Info("Refresh complete",
		"run_id", result.RunID,
		"events", result.Events,
		"rows", result.Rows,
		"duration", result.Duration.String(),
	)
}
