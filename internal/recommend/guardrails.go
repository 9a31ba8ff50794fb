package recommend

import (
	"strings"

	"github.com/spendsense/spendsense/internal/catalog"
	"github.com/spendsense/spendsense/internal/domain"
)

// prohibitedPhrases fail the tone check. Rationales describe behavior with
// numbers; they never pass judgment on it.
var prohibitedPhrases = []string{
	"overspending",
	"bad habits",
	"poor choices",
	"irresponsible",
	"wasteful",
	"careless",
	"reckless",
	"foolish",
	"shameful",
}

// CheckTone reports whether the rendered text is free of judgmental
// language, returning the offending phrase when it is not.
func CheckTone(text string) (ok bool, phrase string) {
	lower := strings.ToLower(text)
	for _, p := range prohibitedPhrases {
		if strings.Contains(lower, p) {
			return false, p
		}
	}
	return true, ""
}

// OfferEligible evaluates an offer's declarative eligibility rule against
// the user's signals and accounts. It is checked at selection time and again
// immediately before the recommendation is written.
func OfferEligible(offer catalog.Offer, set domain.SignalSet, accounts []domain.Account) bool {
	if catalog.DeniedCategory(offer.Category) {
		return false
	}

	credit := set.Credit
	rule := offer.Eligibility

	if credit.IsOverdue && !rule.AllowOverdue {
		return false
	}
	if credit.MinimumPaymentOnly && !rule.AllowMinimumPaymentOnly {
		return false
	}
	if rule.MinUtilization != nil && credit.TotalUtilization < *rule.MinUtilization {
		return false
	}
	if rule.MaxUtilization != nil && credit.TotalUtilization > *rule.MaxUtilization {
		return false
	}
	if rule.MinInterestCharged > 0 && credit.InterestCharged < rule.MinInterestCharged {
		return false
	}
	if rule.MinSubscriptionCount > 0 && len(set.Subscriptions.RecurringMerchants) < rule.MinSubscriptionCount {
		return false
	}
	if rule.MinSavingsBalance > 0 && set.Savings.TotalSavings < rule.MinSavingsBalance {
		return false
	}
	if rule.MaxEmergencyFundMonths != nil && !set.Savings.InsufficientData &&
		set.Savings.EmergencyFundCoverage > *rule.MaxEmergencyFundMonths {
		return false
	}
	if rule.MinAvgMonthlySavings > 0 && set.Savings.AvgMonthlySavings < rule.MinAvgMonthlySavings {
		return false
	}

	// Income floors only apply when income is known; unknown income never
	// disqualifies on its own.
	if offer.MinIncome > 0 && set.Income.AvgMonthlyIncome > 0 &&
		set.Income.AvgMonthlyIncome < offer.MinIncome {
		return false
	}

	for _, subtype := range offer.ExcludedIfOwns {
		for _, acc := range accounts {
			if acc.Subtype == subtype {
				return false
			}
		}
	}
	return true
}
