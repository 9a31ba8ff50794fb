package tracesync

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/store/inmemory"
)

// fakeNotion records calls instead of talking to the API.
type fakeNotion struct {
	pages    []notionapi.Page
	created  []notionapi.Properties
	archived []string
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.created = append(f.created, properties)
	return &notionapi.Page{ID: notionapi.ObjectID("page_new")}, nil
}

func (f *fakeNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.pages, HasMore: false}, nil
}

func (f *fakeNotion) DeletePage(ctx context.Context, pageID string) error {
	f.archived = append(f.archived, pageID)
	return nil
}

func notionPageWithRecID(pageID, recID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Recommendation ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: recID}},
			},
		},
	}
}

func TestTraceToNotionProperties(t *testing.T) {
	rec := domain.Recommendation{
		RecommendationID: "rec_abc123def456",
		UserID:           "user_1",
		Window:           domain.Window30d,
		Type:             domain.RecommendationEducation,
		ContentID:        "edu_credit_utilization",
		Title:            "Understanding Credit Utilization",
		Rationale:        "Your Visa ending in 4523 is using 68% of its $5,000 credit line.",
		ShownAt:          time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	trace := domain.DecisionTrace{
		RecommendationID: rec.RecommendationID,
		PersonaMatch:     domain.PersonaHighUtilization,
		SignalsUsed: []domain.SignalCitation{
			{Signal: "credit_utilization_visa_4523", Value: 0.68, Threshold: 0.50},
		},
		TemplateID: "edu_credit_utilization",
		Guardrails: domain.GuardrailOutcome{ToneCheck: true, EligibilityCheck: true},
	}

	props := TraceToNotionProperties(rec, trace)

	title, ok := props["Recommendation ID"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "rec_abc123def456", title.Title[0].Text.Content)

	persona, ok := props["Persona"].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "high_utilization", persona.Select.Name)

	signals, ok := props["Signals Used"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Contains(t, signals.RichText[0].Text.Content, "credit_utilization_visa_4523 = 0.68")
	assert.Contains(t, signals.RichText[0].Text.Content, "threshold 0.5")
}

func TestSyncTracesCreatesAndArchives(t *testing.T) {
	ctx := context.Background()
	s := inmemory.New()
	s.SeedUser("user_1", []domain.Account{{ID: "acc_1", UserID: "user_1"}}, nil)

	rec := domain.Recommendation{
		RecommendationID: "rec_live00000001",
		UserID:           "user_1",
		Window:           domain.Window30d,
		Type:             domain.RecommendationEducation,
	}
	trace := domain.DecisionTrace{RecommendationID: rec.RecommendationID, UserID: "user_1", Window: domain.Window30d}
	require.NoError(t, s.PutRecommendation(ctx, rec, trace))

	// Notion already holds one stale page and nothing for the live rec.
	notion := &fakeNotion{pages: []notionapi.Page{notionPageWithRecID("page_stale", "rec_gone00000001")}}

	require.NoError(t, SyncTraces(ctx, s, s, notion, "db_1", domain.Window30d, false))

	assert.Equal(t, []string{"page_stale"}, notion.archived)
	require.Len(t, notion.created, 1)
	title := notion.created[0]["Recommendation ID"].(notionapi.TitleProperty)
	assert.Equal(t, "rec_live00000001", title.Title[0].Text.Content)
}

func TestSyncTracesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := inmemory.New()
	s.SeedUser("user_1", []domain.Account{{ID: "acc_1", UserID: "user_1"}}, nil)

	rec := domain.Recommendation{RecommendationID: "rec_live00000001", UserID: "user_1", Window: domain.Window30d}
	require.NoError(t, s.PutRecommendation(ctx, rec, domain.DecisionTrace{RecommendationID: rec.RecommendationID, UserID: "user_1", Window: domain.Window30d}))

	notion := &fakeNotion{pages: []notionapi.Page{notionPageWithRecID("page_live", "rec_live00000001")}}
	require.NoError(t, SyncTraces(ctx, s, s, notion, "db_1", domain.Window30d, false))

	assert.Empty(t, notion.created)
	assert.Empty(t, notion.archived)
}

func TestSyncTracesDryRunTouchesNothing(t *testing.T) {
	ctx := context.Background()
	s := inmemory.New()
	s.SeedUser("user_1", []domain.Account{{ID: "acc_1", UserID: "user_1"}}, nil)

	rec := domain.Recommendation{RecommendationID: "rec_live00000001", UserID: "user_1", Window: domain.Window30d}
	require.NoError(t, s.PutRecommendation(ctx, rec, domain.DecisionTrace{RecommendationID: rec.RecommendationID, UserID: "user_1", Window: domain.Window30d}))

	notion := &fakeNotion{pages: []notionapi.Page{notionPageWithRecID("page_stale", "rec_gone00000001")}}
	require.NoError(t, SyncTraces(ctx, s, s, notion, "db_1", domain.Window30d, true))

	assert.Empty(t, notion.created)
	assert.Empty(t, notion.archived)
}
