package recommend

import (
	"math"
	"sort"

	"github.com/spendsense/spendsense/internal/catalog"
	"github.com/spendsense/spendsense/internal/domain"
)

// minOfferScore is the match-score floor below which an offer is not
// surfaced even when its eligibility rule passes.
const minOfferScore = 60.0

// ContentCandidate is one ranked education item with the triggers that
// fired for it.
type ContentCandidate struct {
	Item     catalog.ContentItem
	Triggers []Trigger // active only

	personaScore float64
	maxStrength  float64
}

// OfferCandidate is one ranked partner offer.
type OfferCandidate struct {
	Offer catalog.Offer
	Score float64
}

// SelectEducation ranks the catalog's education items for an assignment.
// An item qualifies when it is eligible for the assigned persona or when
// any of its trigger signals fired. Ranking is persona match first, then
// strongest fired trigger, with catalog order breaking ties.
func SelectEducation(cat *catalog.Catalog, assignment domain.PersonaAssignment, set domain.SignalSet) []ContentCandidate {
	var candidates []ContentCandidate
	for _, item := range cat.Content {
		eligible := false
		for _, p := range item.EligiblePersonas {
			if p == assignment.Persona {
				eligible = true
				break
			}
		}

		var active []Trigger
		maxStrength := 0.0
		for _, name := range item.TriggerSignals {
			trigger := EvaluateTrigger(name, set)
			if trigger.Active {
				active = append(active, trigger)
				maxStrength = math.Max(maxStrength, trigger.Strength)
			}
		}

		if !eligible && len(active) == 0 {
			continue
		}

		personaScore := 0.0
		if eligible {
			personaScore = assignment.MatchPercentages[assignment.Persona]
			if personaScore == 0 {
				personaScore = 100
			}
		}
		candidates = append(candidates, ContentCandidate{
			Item:         item,
			Triggers:     active,
			personaScore: personaScore,
			maxStrength:  maxStrength,
		})
	}

	// When nothing in the catalog matches the persona or its triggers, fall
	// back to the general-wellness shelf so the user still gets content.
	if len(candidates) == 0 && assignment.Persona != domain.PersonaGeneralWellness {
		for _, item := range cat.Content {
			for _, p := range item.EligiblePersonas {
				if p == domain.PersonaGeneralWellness {
					candidates = append(candidates, ContentCandidate{Item: item})
					break
				}
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].personaScore != candidates[j].personaScore {
			return candidates[i].personaScore > candidates[j].personaScore
		}
		return candidates[i].maxStrength > candidates[j].maxStrength
	})
	return candidates
}

// SelectOffers ranks the catalog's offers for an assignment. Offers must
// pass their eligibility rule and score at least minOfferScore; ranking is
// by match score with catalog order breaking ties.
func SelectOffers(cat *catalog.Catalog, assignment domain.PersonaAssignment, set domain.SignalSet, accounts []domain.Account) []OfferCandidate {
	var candidates []OfferCandidate
	for _, offer := range cat.Offers {
		if len(offer.EligiblePersonas) > 0 {
			eligible := false
			for _, p := range offer.EligiblePersonas {
				if p == assignment.Persona {
					eligible = true
					break
				}
			}
			if !eligible {
				continue
			}
		}
		if !OfferEligible(offer, set, accounts) {
			continue
		}
		score := offerMatchScore(offer, set)
		if score < minOfferScore {
			continue
		}
		candidates = append(candidates, OfferCandidate{Offer: offer, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// offerMatchScore estimates how well an eligible offer fits the user's
// current signals, on a 0-100 scale.
func offerMatchScore(offer catalog.Offer, set domain.SignalSet) float64 {
	credit := set.Credit
	savings := set.Savings

	switch offer.Category {
	case "balance_transfer":
		score := 70.0
		// Interest actually paid is the strongest predictor of transfer value.
		score += math.Min(credit.InterestCharged/10, 25)
		if credit.MinimumPaymentOnly && credit.InterestCharged > 100 {
			score += 10
		}
		if credit.TotalUtilization >= 0.85 {
			score -= 15
		}
		return score

	case "secured_card":
		return 80

	case "rewards_card":
		if offer.Eligibility.MaxEmergencyFundMonths != nil {
			// Round-up style card: fit tracks the savings gap.
			score := 70.0
			if savings.EmergencyFundCoverage < *offer.Eligibility.MaxEmergencyFundMonths {
				score += 15
			}
			if savings.GrowthRateAvailable && savings.GrowthRate < 0.02 {
				score += 10
			}
			return score
		}
		score := 70.0
		if !credit.InsufficientData && credit.TotalUtilization < 0.30 {
			score += 10
		}
		if credit.InterestCharged < 10 {
			score += 5
		}
		return score

	case "deposit_account":
		if offer.Eligibility.MinAvgMonthlySavings > 0 &&
			savings.AvgMonthlySavings >= 1.5*offer.Eligibility.MinAvgMonthlySavings {
			return 95
		}
		return 85

	default:
		return 70
	}
}
