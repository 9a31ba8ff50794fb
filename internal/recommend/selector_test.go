package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/catalog"
	"github.com/spendsense/spendsense/internal/domain"
)

func TestCheckTone(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
	}{
		{"Your Visa ending in 4523 is using 68% of its credit line.", true},
		{"Stop your overspending on subscriptions.", false},
		{"These are Bad Habits to break.", false},
		{"Your recurring charges total $120 per month.", true},
	}
	for _, tt := range tests {
		ok, phrase := CheckTone(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		if !tt.ok {
			assert.NotEmpty(t, phrase)
		}
	}
}

func TestOfferEligible(t *testing.T) {
	balanceTransfer := catalog.Offer{
		ID:       "offer_bt",
		Category: "balance_transfer",
		Eligibility: catalog.EligibilityRule{
			MaxUtilization:          ptrFloat(0.85),
			AllowMinimumPaymentOnly: true,
			MinInterestCharged:      50,
		},
	}

	set := highUtilizationSet()
	assert.False(t, OfferEligible(balanceTransfer, set, nil), "no interest charged yet")

	set.Credit.InterestCharged = 80
	assert.True(t, OfferEligible(balanceTransfer, set, nil))

	set.Credit.IsOverdue = true
	assert.False(t, OfferEligible(balanceTransfer, set, nil), "overdue without allowance")

	set.Credit.IsOverdue = false
	set.Credit.TotalUtilization = 0.90
	assert.False(t, OfferEligible(balanceTransfer, set, nil), "above max utilization")
}

func TestOfferEligibleIncomeFloorSkippedWhenUnknown(t *testing.T) {
	offer := catalog.Offer{ID: "offer_premium", Category: "rewards_card", MinIncome: 4000}

	set := domain.SignalSet{}
	set.Savings.InsufficientData = true
	assert.True(t, OfferEligible(offer, set, nil), "unknown income never disqualifies")

	set.Income.AvgMonthlyIncome = 3000
	assert.False(t, OfferEligible(offer, set, nil))

	set.Income.AvgMonthlyIncome = 5000
	assert.True(t, OfferEligible(offer, set, nil))
}

func TestOfferEligibleExcludedIfOwns(t *testing.T) {
	offer := catalog.Offer{
		ID:             "offer_hys",
		Category:       "deposit_account",
		ExcludedIfOwns: []string{"money market", "hsa"},
	}
	set := domain.SignalSet{}

	accounts := []domain.Account{{ID: "acc_1", Subtype: "checking"}}
	assert.True(t, OfferEligible(offer, set, accounts))

	accounts = append(accounts, domain.Account{ID: "acc_2", Subtype: "money market"})
	assert.False(t, OfferEligible(offer, set, accounts))
}

func TestOfferEligibleDeniedCategory(t *testing.T) {
	offer := catalog.Offer{ID: "offer_bad", Category: "payday_loan"}
	assert.False(t, OfferEligible(offer, domain.SignalSet{}, nil))
}

func TestSelectEducationRanksPersonaThenTrigger(t *testing.T) {
	set := highUtilizationSet()
	assignment := domain.PersonaAssignment{
		UserID:  set.UserID,
		Window:  set.Window,
		Persona: domain.PersonaHighUtilization,
		MatchPercentages: map[domain.Persona]float64{
			domain.PersonaHighUtilization: 50,
		},
	}

	candidates := SelectEducation(catalog.Default(), assignment, set)
	require.NotEmpty(t, candidates)

	// Every candidate is persona-eligible or carries a fired trigger.
	for _, c := range candidates {
		eligible := false
		for _, p := range c.Item.EligiblePersonas {
			if p == domain.PersonaHighUtilization {
				eligible = true
			}
		}
		assert.True(t, eligible || len(c.Triggers) > 0, c.Item.ID)
	}

	// The utilization item outranks its persona peers because its trigger
	// fired with the highest strength.
	assert.Equal(t, "edu_credit_utilization", candidates[0].Item.ID)
	require.NotEmpty(t, candidates[0].Triggers)
	assert.Equal(t, "credit_utilization_visa_4523", candidates[0].Triggers[0].Citation.Signal)
}

func TestSelectEducationFallsBackToGeneralWellness(t *testing.T) {
	cat := &catalog.Catalog{
		Content: []catalog.ContentItem{
			{ID: "edu_card", EligiblePersonas: []domain.Persona{domain.PersonaHighUtilization}},
			{ID: "edu_general", EligiblePersonas: []domain.Persona{domain.PersonaGeneralWellness}},
		},
	}
	assignment := domain.PersonaAssignment{Persona: domain.PersonaSavingsBuilder}

	// Nothing matches the persona and no triggers fire, so the general shelf
	// takes over.
	candidates := SelectEducation(cat, assignment, domain.SignalSet{})
	require.Len(t, candidates, 1)
	assert.Equal(t, "edu_general", candidates[0].Item.ID)
	assert.Empty(t, candidates[0].Triggers)
}

func TestSelectOffersFiltersAndRanks(t *testing.T) {
	set := highUtilizationSet()
	set.Credit.InterestCharged = 120
	set.Credit.MinimumPaymentOnly = true
	assignment := domain.PersonaAssignment{
		UserID:  set.UserID,
		Window:  set.Window,
		Persona: domain.PersonaHighUtilization,
	}

	candidates := SelectOffers(catalog.Default(), assignment, set, nil)
	require.NotEmpty(t, candidates)

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Offer.ID
		assert.GreaterOrEqual(t, c.Score, minOfferScore)
	}

	// Interest paid plus minimum-payment behavior puts the transfer card on
	// top; premium rewards cards are filtered by the utilization ceiling.
	assert.Equal(t, "offer_balance_transfer", ids[0])
	assert.NotContains(t, ids, "offer_dining_gold")
	assert.NotContains(t, ids, "offer_travel_elite")
}

func TestOfferMatchScore(t *testing.T) {
	set := highUtilizationSet()
	set.Credit.InterestCharged = 120
	set.Credit.MinimumPaymentOnly = true

	bt := catalog.Offer{Category: "balance_transfer"}
	// 70 base + 12 interest boost + 10 minimum-payment boost.
	assert.InDelta(t, 92, offerMatchScore(bt, set), 0.001)

	set.Credit.TotalUtilization = 0.90
	assert.InDelta(t, 77, offerMatchScore(bt, set), 0.001)

	assert.Equal(t, 80.0, offerMatchScore(catalog.Offer{Category: "secured_card"}, set))
}

func ptrFloat(v float64) *float64 { return &v }
