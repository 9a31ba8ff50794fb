package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendsense/spendsense/internal/catalog"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/demo"
	"github.com/spendsense/spendsense/internal/jobs"
	jobsinmemory "github.com/spendsense/spendsense/internal/jobs/inmemory"
	"github.com/spendsense/spendsense/internal/logger"
	"github.com/spendsense/spendsense/internal/recommend"
	"github.com/spendsense/spendsense/internal/store"
	storebigquery "github.com/spendsense/spendsense/internal/store/bigquery"
	storeinmemory "github.com/spendsense/spendsense/internal/store/inmemory"
)

// recomputeInterval is how often the worker re-enqueues every known user.
const recomputeInterval = time.Hour

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	// Initialize structured logger
	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	source, results, closeStore, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to open backend store")
	}
	defer closeStore()

	cat, err := catalog.Load(ctx, cfg.CatalogURI)
	if err != nil {
		log.Fatal().Err(err).Str("catalog_uri", cfg.CatalogURI).Msg("Failed to load content catalog")
	}

	engine := recommend.New(source, results, cat, cfg.TimeWindows(), log)

	jobStore := jobsinmemory.NewStore()
	jobQueue := jobsinmemory.NewQueue(cfg.QueueSize, cfg.WorkerCount, jobStore)

	handler := func(ctx context.Context, job jobs.Job) error {
		computeJob, ok := job.(*jobs.ComputeUserJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %s", job.GetType())
		}
		// A job may narrow the recomputation to specific windows.
		if len(computeJob.Windows) > 0 {
			return recommend.New(source, results, cat, computeJob.Windows, log).ProcessUser(ctx, computeJob.UserID)
		}
		return engine.ProcessUser(ctx, computeJob.UserID)
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job queue")
	}

	log.Info().
		Str("backend", cfg.Backend).
		Int("workers", cfg.WorkerCount).
		Int("queue_size", cfg.QueueSize).
		Msg("Worker started")

	// Enqueue every known user now, then again on each tick.
	go func() {
		enqueueAllUsers(ctx, source, jobQueue, log)

		ticker := time.NewTicker(recomputeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				enqueueAllUsers(ctx, source, jobQueue, log)
			}
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Job queue shutdown failed")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker stopped")
}

// enqueueAllUsers publishes one recomputation job per known user. Publish
// failures are logged and skipped so one bad job never stops the sweep.
func enqueueAllUsers(ctx context.Context, source store.Source, publisher jobs.Publisher, log zerolog.Logger) {
	users, err := source.ListUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users for recomputation sweep")
		return
	}

	enqueued := 0
	for _, userID := range users {
		job := &jobs.ComputeUserJob{UserID: userID}
		if err := publisher.PublishComputeUser(ctx, job); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to enqueue recomputation job")
			continue
		}
		enqueued++
	}
	log.Info().Int("users", len(users)).Int("enqueued", enqueued).Msg("Recomputation sweep enqueued")
}

// openBackend builds the configured store. The memory backend is seeded with
// the demo population so a local worker has users to process.
func openBackend(ctx context.Context, cfg *config.Config) (store.Source, store.Results, func() error, error) {
	switch cfg.Backend {
	case "bigquery":
		s, err := storebigquery.New(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s.Close, nil
	default:
		s := storeinmemory.New()
		for _, user := range demo.Users(time.Now().UTC()) {
			s.SeedUser(user.UserID, user.Accounts, user.Transactions)
		}
		return s, s, func() error { return nil }, nil
	}
}
