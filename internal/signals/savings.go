package signals

import (
	"sort"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// Emergency-fund coverage thresholds in months of expenses.
const (
	CoverageExcellentMonths = 6.0
	CoverageGoodMonths      = 3.0
)

// CoverageLevel buckets emergency-fund coverage measured in months.
func CoverageLevel(months float64) string {
	switch {
	case months >= CoverageExcellentMonths:
		return domain.CoverageExcellent
	case months >= CoverageGoodMonths:
		return domain.CoverageGood
	case months >= 1:
		return domain.CoverageBuilding
	default:
		return domain.CoverageLow
	}
}

// DetectSavingsBehavior computes savings balances, net inflow, growth rate,
// and emergency-fund coverage for the window. Transactions made away from
// the user's usual locations are treated as travel and excluded from flow
// math. The monthly savings average always uses a 90 day lookback so short
// windows still produce a meaningful figure.
func DetectSavingsBehavior(txs []domain.Transaction, accounts []domain.Account, window domain.TimeWindow, asOf time.Time) domain.SavingsSignal {
	var savings []domain.Account
	checkingIDs := make(map[string]bool)
	for _, acc := range accounts {
		if acc.IsSavings() {
			savings = append(savings, acc)
		}
		if acc.Type == domain.AccountDepository && acc.Subtype == "checking" {
			checkingIDs[acc.ID] = true
		}
	}
	if len(savings) == 0 {
		return domain.SavingsSignal{CoverageLevel: domain.CoverageLow, InsufficientData: true}
	}

	savingsIDs := make(map[string]bool, len(savings))
	var totalSavings float64
	for _, acc := range savings {
		savingsIDs[acc.ID] = true
		totalSavings += acc.Balance
	}

	cutoff := window.Cutoff(asOf)
	monthlyCutoff := asOf.AddDate(0, 0, -90)

	// Flow math needs date order so the travel heuristic sees locations in
	// sequence.
	ordered := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if savingsIDs[tx.AccountID] {
			ordered = append(ordered, tx)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].EffectiveDate().Before(ordered[j].EffectiveDate())
	})

	seen := make(map[string]bool)
	previous := ""
	var netInflow float64
	travelFiltered := 0
	monthlyFlows := make(map[string]float64)

	for _, tx := range ordered {
		key := locationKey(tx)
		travel := false
		if key != "" && previous != "" && key != previous && !seen[key] {
			travel = true
		}
		if key != "" {
			seen[key] = true
			previous = key
		}

		if travel {
			if !tx.EffectiveDate().Before(cutoff) {
				travelFiltered++
			}
			continue
		}
		if !tx.EffectiveDate().Before(cutoff) {
			netInflow += tx.Amount
		}
		if !tx.EffectiveDate().Before(monthlyCutoff) {
			monthlyFlows[tx.EffectiveDate().Format("2006-01")] += tx.Amount
		}
	}

	var avgMonthlySavings float64
	if len(monthlyFlows) > 0 {
		var sum float64
		for _, v := range monthlyFlows {
			sum += v
		}
		avgMonthlySavings = sum / float64(len(monthlyFlows))
	}

	sig := domain.SavingsSignal{
		TotalSavings:      round2(totalSavings),
		NetInflow:         round2(netInflow),
		AvgMonthlySavings: round2(avgMonthlySavings),
		TravelFiltered:    travelFiltered,
	}

	// Opening balance is reconstructed from the flows; a zero or negative
	// opening makes the growth ratio meaningless.
	opening := totalSavings - netInflow
	if opening > 0 {
		sig.GrowthRate = round2((totalSavings - opening) / opening)
		sig.GrowthRateAvailable = true
	}

	var checkingSpend float64
	for _, tx := range txs {
		if checkingIDs[tx.AccountID] && tx.IsDebit() && !tx.EffectiveDate().Before(cutoff) {
			checkingSpend += -tx.Amount
		}
	}
	months := float64(window.Days()) / 30.0
	if months > 0 {
		sig.AvgMonthlyExpenses = round2(checkingSpend / months)
	}
	if sig.AvgMonthlyExpenses > 0 {
		sig.EmergencyFundCoverage = round2(totalSavings / sig.AvgMonthlyExpenses)
	}
	sig.CoverageLevel = CoverageLevel(sig.EmergencyFundCoverage)
	return sig
}

func locationKey(tx domain.Transaction) string {
	switch {
	case tx.LocationCity != "" && tx.LocationRegion != "":
		return tx.LocationCity + "," + tx.LocationRegion
	case tx.LocationCity != "":
		return tx.LocationCity
	default:
		return ""
	}
}
