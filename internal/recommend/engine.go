package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spendsense/spendsense/internal/catalog"
	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/persona"
	"github.com/spendsense/spendsense/internal/signals"
	"github.com/spendsense/spendsense/internal/store"
)

// Per-window output caps. Education keeps a shortlist; offers stay sparse.
const (
	maxEducationItems = 5
	maxOffers         = 3
)

// Engine runs the full pipeline for a user: signal detection, persona
// classification, recommendation selection, and trace recording. Windows
// are processed concurrently; recomputation for a window supersedes its
// prior recommendations before appending new ones.
type Engine struct {
	source  store.Source
	results store.Results
	catalog *catalog.Catalog
	windows []domain.TimeWindow
	log     zerolog.Logger
	now     func() time.Time
}

// New builds an Engine. An empty windows slice means all supported windows.
func New(source store.Source, results store.Results, cat *catalog.Catalog, windows []domain.TimeWindow, log zerolog.Logger) *Engine {
	if len(windows) == 0 {
		windows = domain.AllWindows()
	}
	return &Engine{
		source:  source,
		results: results,
		catalog: cat,
		windows: windows,
		log:     log.With().Str("component", "engine").Logger(),
		now:     time.Now,
	}
}

// ProcessAllUsers runs the pipeline for every known user. A failing user is
// logged and skipped; one bad ledger never blocks the batch.
func (e *Engine) ProcessAllUsers(ctx context.Context) error {
	users, err := e.source.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("ProcessAllUsers: listing users: %w", err)
	}

	failed := 0
	for _, userID := range users {
		if err := e.ProcessUser(ctx, userID); err != nil {
			failed++
			e.log.Error().Err(err).Str("user_id", userID).Msg("user processing failed")
		}
	}
	e.log.Info().Int("users", len(users)).Int("failed", failed).Msg("batch complete")
	if failed == len(users) && len(users) > 0 {
		return fmt.Errorf("ProcessAllUsers: all %d users failed", len(users))
	}
	return nil
}

// ProcessUser recomputes every configured window for one user. Windows run
// concurrently and independently; the returned error joins any per-window
// failures.
func (e *Engine) ProcessUser(ctx context.Context, userID string) error {
	asOf := e.now().UTC()

	accounts, err := e.source.ListAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("ProcessUser: listing accounts for %s: %w", userID, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(e.windows))
	for i, window := range e.windows {
		wg.Add(1)
		go func(i int, window domain.TimeWindow) {
			defer wg.Done()
			if err := e.processWindow(ctx, userID, window, accounts, asOf); err != nil {
				errs[i] = fmt.Errorf("window %s: %w", window, err)
			}
		}(i, window)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("ProcessUser: %s: %w", userID, err)
	}
	return nil
}

func (e *Engine) processWindow(ctx context.Context, userID string, window domain.TimeWindow, accounts []domain.Account, asOf time.Time) error {
	log := e.log.With().Str("user_id", userID).Str("window", string(window)).Logger()

	txs, err := e.source.ListTransactions(ctx, userID, window.Cutoff(asOf))
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	set := signals.ComputeAll(userID, txs, accounts, window, asOf)
	if err := e.results.PutSignalSet(ctx, set); err != nil {
		return fmt.Errorf("storing signal set: %w", err)
	}

	assignment := persona.Classify(set, asOf)
	if err := e.results.PutAssignment(ctx, assignment); err != nil {
		return fmt.Errorf("storing assignment: %w", err)
	}
	log.Info().Str("persona", string(assignment.Persona)).Int("transactions", len(txs)).Msg("window classified")

	recs, traces := e.buildRecommendations(assignment, set, accounts, asOf, log)

	if err := e.results.SupersedeRecommendations(ctx, userID, window); err != nil {
		return fmt.Errorf("superseding recommendations: %w", err)
	}
	for i := range recs {
		if err := e.results.PutRecommendation(ctx, recs[i], traces[i]); err != nil {
			return fmt.Errorf("storing recommendation %s: %w", recs[i].RecommendationID, err)
		}
	}
	log.Info().Int("recommendations", len(recs)).Msg("window complete")
	return nil
}

// buildRecommendations renders, guards, and pairs every accepted candidate
// with its decision trace. Recommendations and traces are returned in
// matching order.
func (e *Engine) buildRecommendations(assignment domain.PersonaAssignment, set domain.SignalSet, accounts []domain.Account, asOf time.Time, log zerolog.Logger) ([]domain.Recommendation, []domain.DecisionTrace) {
	var recs []domain.Recommendation
	var traces []domain.DecisionTrace

	for _, candidate := range SelectEducation(e.catalog, assignment, set) {
		if len(recs) >= maxEducationItems {
			break
		}
		item := candidate.Item

		text, citations, fallback := Render(item.RationaleTemplate, set)
		if ok, phrase := CheckTone(text); !ok {
			log.Warn().Str("content_id", item.ID).Str("phrase", phrase).Msg("tone check failed, candidate skipped")
			continue
		}

		for _, trigger := range candidate.Triggers {
			citations = appendCitation(citations, trigger.Citation)
		}

		rec, trace := e.newPair(assignment, domain.RecommendationEducation, item.ID, item.Title, text, citations, fallback, asOf)
		recs = append(recs, rec)
		traces = append(traces, trace)
	}

	offers := 0
	for _, candidate := range SelectOffers(e.catalog, assignment, set, accounts) {
		if offers >= maxOffers {
			break
		}
		offer := candidate.Offer

		text, citations, fallback := Render(offer.RationaleTemplate, set)
		if ok, phrase := CheckTone(text); !ok {
			log.Warn().Str("offer_id", offer.ID).Str("phrase", phrase).Msg("tone check failed, candidate skipped")
			continue
		}
		// Final eligibility pass right before the write.
		if !OfferEligible(offer, set, accounts) {
			log.Warn().Str("offer_id", offer.ID).Msg("eligibility recheck failed, candidate skipped")
			continue
		}

		rec, trace := e.newPair(assignment, domain.RecommendationPartnerOffer, offer.ID, offer.Title, text, citations, fallback, asOf)
		recs = append(recs, rec)
		traces = append(traces, trace)
		offers++
	}

	return recs, traces
}

// newPair mints a recommendation and its 1:1 decision trace under a shared
// recommendation id.
func (e *Engine) newPair(assignment domain.PersonaAssignment, recType domain.RecommendationType, contentID, title, rationale string, citations []domain.SignalCitation, fallback bool, asOf time.Time) (domain.Recommendation, domain.DecisionTrace) {
	id := newRecommendationID()

	rec := domain.Recommendation{
		RecommendationID: id,
		UserID:           assignment.UserID,
		Window:           assignment.Window,
		Type:             recType,
		ContentID:        contentID,
		Title:            title,
		Rationale:        rationale,
		ShownAt:          asOf,
	}

	templateID := contentID
	if fallback {
		templateID = FallbackTemplateID
	}
	trace := domain.DecisionTrace{
		RecommendationID: id,
		UserID:           assignment.UserID,
		Window:           assignment.Window,
		PersonaMatch:     assignment.Persona,
		SignalsUsed:      citations,
		TemplateID:       templateID,
		TemplateFallback: fallback,
		Guardrails:       domain.GuardrailOutcome{ToneCheck: true, EligibilityCheck: true},
		Timestamp:        asOf,
	}
	return rec, trace
}

// appendCitation adds a citation unless one with the same signal name is
// already present.
func appendCitation(citations []domain.SignalCitation, c domain.SignalCitation) []domain.SignalCitation {
	for _, existing := range citations {
		if existing.Signal == c.Signal {
			return citations
		}
	}
	return append(citations, c)
}

func newRecommendationID() string {
	return "rec_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
