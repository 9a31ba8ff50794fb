package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/store"
)

func TestSourceFiltersBySince(t *testing.T) {
	s := New()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	s.SeedUser("user_1",
		[]domain.Account{{ID: "acc_1", UserID: "user_1", Type: domain.AccountDepository, Subtype: "checking"}},
		[]domain.Transaction{
			{ID: "tx_old", UserID: "user_1", AccountID: "acc_1", Date: base.AddDate(0, 0, -10), Amount: -20},
			{ID: "tx_new", UserID: "user_1", AccountID: "acc_1", Date: base.AddDate(0, 0, 10), Amount: -30},
		})

	txs, err := s.ListTransactions(context.Background(), "user_1", base)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "tx_new", txs[0].ID)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, users)
}

func TestSignalSetUpsert(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetSignalSet(ctx, "user_1", domain.Window30d)
	assert.ErrorIs(t, err, store.ErrNotFound)

	first := domain.SignalSet{UserID: "user_1", Window: domain.Window30d}
	first.Credit.TotalUtilization = 0.4
	require.NoError(t, s.PutSignalSet(ctx, first))

	second := first
	second.Credit.TotalUtilization = 0.7
	require.NoError(t, s.PutSignalSet(ctx, second))

	got, err := s.GetSignalSet(ctx, "user_1", domain.Window30d)
	require.NoError(t, err)
	assert.Equal(t, 0.7, got.Credit.TotalUtilization)
}

func TestSupersedeThenAppend(t *testing.T) {
	s := New()
	ctx := context.Background()

	put := func(id string) {
		rec := domain.Recommendation{RecommendationID: id, UserID: "user_1", Window: domain.Window90d}
		trace := domain.DecisionTrace{RecommendationID: id, UserID: "user_1", Window: domain.Window90d}
		require.NoError(t, s.PutRecommendation(ctx, rec, trace))
	}

	put("rec_aaa")
	put("rec_bbb")
	require.NoError(t, s.SupersedeRecommendations(ctx, "user_1", domain.Window90d))
	put("rec_ccc")

	live, err := s.ListRecommendations(ctx, "user_1", domain.Window90d, false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "rec_ccc", live[0].RecommendationID)

	all, err := s.ListRecommendations(ctx, "user_1", domain.Window90d, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Traces survive supersession untouched.
	for _, id := range []string{"rec_aaa", "rec_bbb", "rec_ccc"} {
		trace, err := s.GetTrace(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, trace.RecommendationID)
	}
}

func TestGetTraceNotFound(t *testing.T) {
	s := New()
	_, err := s.GetTrace(context.Background(), "rec_missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
