package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/spendsense/spendsense/internal/logger"
	storebigquery "github.com/spendsense/spendsense/internal/store/bigquery"
)

var (
	projectID = flag.String("project", "", "GCP project ID (required)")
	datasetID = flag.String("dataset", "spendsense", "BigQuery dataset ID")
)

func main() {
	flag.Parse()

	log := logger.New()

	if *projectID == "" {
		log.Fatal().Msg("Error: -project flag is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	s, err := storebigquery.New(ctx, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer s.Close()

	log.Info().
		Str("project", *projectID).
		Str("dataset", *datasetID).
		Msg("Ensuring pipeline tables")

	if err := s.EnsureTables(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure tables")
	}

	fmt.Println("All tables are present.")
}
