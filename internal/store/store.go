// Package store defines the persistence boundary of the pipeline. Source is
// the read-only transaction/account layer owned by ingestion; Results holds
// everything the pipeline computes. Implementations live in the inmemory
// and bigquery subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// ErrNotFound is returned when a keyed lookup has no row.
var ErrNotFound = errors.New("store: not found")

// Source reads the upstream transaction and account records. The pipeline
// never writes through this interface.
type Source interface {
	// ListUsers returns every user id with at least one account.
	ListUsers(ctx context.Context) ([]string, error)

	// ListTransactions returns the user's transactions dated on or after
	// since, in no particular order.
	ListTransactions(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error)

	// ListAccounts returns all of the user's accounts.
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
}

// Results persists pipeline output. Signals and assignments are upserted by
// (user, window); recommendations and traces are append-only with
// supersession.
type Results interface {
	// PutSignalSet upserts the signal set for its (user, window) key.
	PutSignalSet(ctx context.Context, set domain.SignalSet) error

	// GetSignalSet returns the signal set for the key, or ErrNotFound.
	GetSignalSet(ctx context.Context, userID string, window domain.TimeWindow) (domain.SignalSet, error)

	// PutAssignment upserts the persona assignment for its (user, window)
	// key.
	PutAssignment(ctx context.Context, assignment domain.PersonaAssignment) error

	// GetAssignment returns the assignment for the key, or ErrNotFound.
	GetAssignment(ctx context.Context, userID string, window domain.TimeWindow) (domain.PersonaAssignment, error)

	// SupersedeRecommendations marks every live recommendation for the
	// (user, window) key as superseded. Traces are never touched.
	SupersedeRecommendations(ctx context.Context, userID string, window domain.TimeWindow) error

	// PutRecommendation appends a recommendation together with its decision
	// trace. The pair shares a recommendation id and is written atomically;
	// neither record is ever updated afterwards.
	PutRecommendation(ctx context.Context, rec domain.Recommendation, trace domain.DecisionTrace) error

	// ListRecommendations returns the user's recommendations for a window,
	// live ones only unless includeSuperseded is set, in insertion order.
	ListRecommendations(ctx context.Context, userID string, window domain.TimeWindow, includeSuperseded bool) ([]domain.Recommendation, error)

	// GetTrace returns the decision trace for a recommendation id, or
	// ErrNotFound.
	GetTrace(ctx context.Context, recommendationID string) (domain.DecisionTrace, error)
}
