package tracesync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/logger"
	"github.com/spendsense/spendsense/internal/store"
)

// SyncTraces mirrors the live recommendation set for one window into the
// Notion review database. Pages whose recommendation no longer exists (or
// was superseded) are archived; live pairs missing from Notion are created.
// The recommendation id is the idempotency key, so re-running the sync is
// safe.
func SyncTraces(ctx context.Context, source store.Source, results store.Results, notionClient NotionService, notionDBID string, window domain.TimeWindow, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("window", string(window)).
		Bool("dry_run", dryRun).
		Msg("Starting decision trace sync to Notion")

	users, err := source.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("SyncTraces: listing users: %w", err)
	}

	type pair struct {
		rec   domain.Recommendation
		trace domain.DecisionTrace
	}
	var pairs []pair
	for _, userID := range users {
		recs, err := results.ListRecommendations(ctx, userID, window, false)
		if err != nil {
			return fmt.Errorf("SyncTraces: listing recommendations for %s: %w", userID, err)
		}
		for _, rec := range recs {
			trace, err := results.GetTrace(ctx, rec.RecommendationID)
			if err != nil {
				log.Warn().
					Err(err).
					Str("recommendation_id", rec.RecommendationID).
					Msg("Recommendation has no trace, skipping")
				continue
			}
			pairs = append(pairs, pair{rec: rec, trace: trace})
		}
	}

	log.Info().Int("pair_count", len(pairs)).Msg("Collected live recommendation traces")

	validIDs := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		validIDs[p.rec.RecommendationID] = true
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("SyncTraces: querying Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existingIDs := make(map[string]bool)
	for _, page := range notionPages {
		recID := extractRecommendationID(page)
		if recID != "" {
			existingIDs[recID] = true
		}
	}

	// Archive pages for recommendations that are gone or superseded.
	var deleted int
	for _, page := range notionPages {
		recID := extractRecommendationID(page)

		if recID == "" || !validIDs[recID] {
			if dryRun {
				log.Info().
					Str("recommendation_id", recID).
					Str("page_id", string(page.ID)).
					Msg("[DRY RUN] Would archive stale Notion page")
				deleted++
			} else {
				if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
					log.Warn().
						Err(err).
						Str("recommendation_id", recID).
						Str("page_id", string(page.ID)).
						Msg("Failed to archive stale Notion page")
					continue
				}
				deleted++
			}
		}
	}

	var created, skipped int
	for _, p := range pairs {
		if existingIDs[p.rec.RecommendationID] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("recommendation_id", p.rec.RecommendationID).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		props := TraceToNotionProperties(p.rec, p.trace)
		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("recommendation_id", p.rec.RecommendationID).
				Msg("Failed to create Notion page")
			continue
		}
		log.Info().
			Str("recommendation_id", p.rec.RecommendationID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(pairs)).
		Msg("Decision trace sync completed")

	return nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
