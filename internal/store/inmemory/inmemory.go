// Package inmemory is the map-backed store used by tests, the demo seeder,
// and single-process runs. All methods copy on the way in and out so callers
// can never alias internal state.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/store"
)

// Store implements both store.Source and store.Results over in-process maps.
// Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	accounts     map[string][]domain.Account     // by user id
	transactions map[string][]domain.Transaction // by user id

	signals     map[string]domain.SignalSet         // by user|window
	assignments map[string]domain.PersonaAssignment // by user|window
	recs        map[string][]domain.Recommendation  // by user|window, insertion order
	traces      map[string]domain.DecisionTrace     // by recommendation id
}

var (
	_ store.Source  = (*Store)(nil)
	_ store.Results = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts:     make(map[string][]domain.Account),
		transactions: make(map[string][]domain.Transaction),
		signals:      make(map[string]domain.SignalSet),
		assignments:  make(map[string]domain.PersonaAssignment),
		recs:         make(map[string][]domain.Recommendation),
		traces:       make(map[string]domain.DecisionTrace),
	}
}

func key(userID string, window domain.TimeWindow) string {
	return userID + "|" + string(window)
}

// SeedUser loads a user's accounts and transactions, replacing any previous
// seed for that user.
func (s *Store) SeedUser(userID string, accounts []domain.Account, txs []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[userID] = append([]domain.Account(nil), accounts...)
	s.transactions[userID] = append([]domain.Transaction(nil), txs...)
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.accounts))
	for userID := range s.accounts {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for _, tx := range s.transactions[userID] {
		if !tx.EffectiveDate().Before(since) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Account(nil), s.accounts[userID]...), nil
}

func (s *Store) PutSignalSet(ctx context.Context, set domain.SignalSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[key(set.UserID, set.Window)] = set
	return nil
}

func (s *Store) GetSignalSet(ctx context.Context, userID string, window domain.TimeWindow) (domain.SignalSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.signals[key(userID, window)]
	if !ok {
		return domain.SignalSet{}, store.ErrNotFound
	}
	return set, nil
}

func (s *Store) PutAssignment(ctx context.Context, assignment domain.PersonaAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[key(assignment.UserID, assignment.Window)] = assignment
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, userID string, window domain.TimeWindow) (domain.PersonaAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignment, ok := s.assignments[key(userID, window)]
	if !ok {
		return domain.PersonaAssignment{}, store.ErrNotFound
	}
	return assignment, nil
}

func (s *Store) SupersedeRecommendations(ctx context.Context, userID string, window domain.TimeWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, window)
	for i := range s.recs[k] {
		s.recs[k][i].Superseded = true
	}
	return nil
}

func (s *Store) PutRecommendation(ctx context.Context, rec domain.Recommendation, trace domain.DecisionTrace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(rec.UserID, rec.Window)
	s.recs[k] = append(s.recs[k], rec)
	s.traces[trace.RecommendationID] = trace
	return nil
}

func (s *Store) ListRecommendations(ctx context.Context, userID string, window domain.TimeWindow, includeSuperseded bool) ([]domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Recommendation
	for _, rec := range s.recs[key(userID, window)] {
		if rec.Superseded && !includeSuperseded {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) GetTrace(ctx context.Context, recommendationID string) (domain.DecisionTrace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trace, ok := s.traces[recommendationID]
	if !ok {
		return domain.DecisionTrace{}, store.ErrNotFound
	}
	return trace, nil
}
