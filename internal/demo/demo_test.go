package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/persona"
	"github.com/spendsense/spendsense/internal/signals"
)

var demoAsOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestUsersAreDeterministic(t *testing.T) {
	first := Users(demoAsOf)
	second := Users(demoAsOf)
	assert.Equal(t, first, second)
}

func TestUsersLandInExpectedPersonas(t *testing.T) {
	expected := map[string]domain.Persona{
		"demo_high_util":     domain.PersonaHighUtilization,
		"demo_subscriptions": domain.PersonaSubscriptionHeavy,
		"demo_savings":       domain.PersonaSavingsBuilder,
	}

	users := Users(demoAsOf)
	require.Len(t, users, len(expected))

	for _, user := range users {
		set := signals.ComputeAll(user.UserID, user.Transactions, user.Accounts, domain.Window90d, demoAsOf)
		assignment := persona.Classify(set, demoAsOf)
		assert.Equalf(t, expected[user.UserID], assignment.Persona, "user %s", user.UserID)
	}
}

func TestDemoRecordsAreWellFormed(t *testing.T) {
	for _, user := range Users(demoAsOf) {
		seen := make(map[string]bool)
		for _, tx := range user.Transactions {
			assert.False(t, seen[tx.ID], "duplicate transaction id %s", tx.ID)
			seen[tx.ID] = true
			assert.Equal(t, user.UserID, tx.UserID)
			assert.Equal(t, "USD", tx.Currency)
			assert.True(t, tx.Date.Before(demoAsOf), "transaction %s is in the future", tx.ID)
		}
		for _, acc := range user.Accounts {
			assert.Equal(t, user.UserID, acc.UserID)
		}
	}
}
