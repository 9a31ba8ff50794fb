package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/logger"
	storebigquery "github.com/spendsense/spendsense/internal/store/bigquery"
	"github.com/spendsense/spendsense/internal/tracesync"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	configPath := flag.String("config", "", "Path to config file (optional)")
	windowName := flag.String("window", "90d", "Lookback window to export: 30d, 90d, or 180d")
	notionToken := flag.String("notion-token", "", "Notion API token (defaults to config)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (defaults to config)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	token := *notionToken
	if token == "" {
		token = cfg.NotionAPIKey
	}
	databaseID := *notionDBID
	if databaseID == "" {
		databaseID = cfg.NotionDatabaseID
	}
	if token == "" {
		log.Fatal().Msg("Error: --notion-token or notion_api_key config is required")
	}
	if databaseID == "" {
		log.Fatal().Msg("Error: --notion-db-id or notion_database_id config is required")
	}

	window := domain.TimeWindow(*windowName)
	if !window.Valid() {
		log.Fatal().Str("window", *windowName).Msg("Error: invalid window, expected 30d, 90d, or 180d")
	}

	// The sync mirrors whatever the store holds, so it only runs against the
	// durable backend.
	if cfg.Backend != "bigquery" {
		log.Fatal().Str("backend", cfg.Backend).Msg("Error: trace sync requires the bigquery backend")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("window", string(window)).
		Bool("dry_run", *dryRun).
		Msg("Starting decision trace sync")

	s, err := storebigquery.New(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery store")
	}
	defer s.Close()

	notionClient := tracesync.NewNotionClient(token)

	if err := tracesync.SyncTraces(ctx, s, s, notionClient, databaseID, window, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Sync completed successfully.")
}
