package signals

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// Utilization thresholds as decimals. 0.68 means 68% of the credit line.
const (
	UtilizationHigh   = 0.50
	UtilizationMedium = 0.30

	// Payments within this many dollars of the minimum count as
	// minimum-only.
	minimumPaymentTolerance = 5.0
)

// UtilizationLevel buckets a decimal utilization value.
func UtilizationLevel(utilization float64) string {
	switch {
	case utilization >= UtilizationHigh:
		return domain.LevelHigh
	case utilization >= UtilizationMedium:
		return domain.LevelMedium
	default:
		return domain.LevelLow
	}
}

// DetectCreditUtilization computes per-account and aggregate utilization for
// the user's credit accounts, plus repayment behavior inside the window.
// Accounts without a credit limit are skipped. Overdue status comes from
// liability data when any account carries it; otherwise it is inferred from
// near-maxed utilization or interest charges.
func DetectCreditUtilization(txs []domain.Transaction, accounts []domain.Account, window domain.TimeWindow, asOf time.Time) domain.CreditSignal {
	cutoff := window.Cutoff(asOf)

	var credit []domain.Account
	for _, acc := range accounts {
		if acc.Type == domain.AccountCredit && acc.Limit > 0 {
			credit = append(credit, acc)
		}
	}
	if len(credit) == 0 {
		return domain.CreditSignal{UtilizationLevel: domain.LevelLow, InsufficientData: true}
	}

	creditIDs := make(map[string]bool, len(credit))
	for _, acc := range credit {
		creditIDs[acc.ID] = true
	}

	// Partition window transactions on credit accounts into payments
	// (credits) and spending (debits), accumulating interest and fees.
	latestPayment := make(map[string]domain.Transaction)
	interestByAccount := make(map[string]float64)
	var totalSpending, onlineSpending float64

	for _, tx := range txs {
		if !creditIDs[tx.AccountID] || tx.EffectiveDate().Before(cutoff) {
			continue
		}
		if tx.Amount > 0 {
			prev, ok := latestPayment[tx.AccountID]
			if !ok || tx.EffectiveDate().After(prev.EffectiveDate()) {
				latestPayment[tx.AccountID] = tx
			}
			continue
		}
		amount := -tx.Amount
		totalSpending += amount
		if tx.PaymentChannel == "online" {
			onlineSpending += amount
		}
		if containsCategory(tx.Category, "interest") || containsCategory(tx.Category, "fee") ||
			strings.Contains(strings.ToLower(tx.MerchantName), "interest") {
			interestByAccount[tx.AccountID] += amount
		}
	}

	sort.Slice(credit, func(i, j int) bool { return credit[i].ID < credit[j].ID })

	sig := domain.CreditSignal{}
	var totalBalance, totalLimit, totalInterest float64
	liabilityOverdue := false

	for _, acc := range credit {
		utilization := acc.Balance / acc.Limit
		interest := interestByAccount[acc.ID]
		totalInterest += interest

		minOnly := minimumPaymentOnly(acc, latestPayment[acc.ID])
		if minOnly {
			sig.MinimumPaymentOnly = true
		}
		if acc.IsOverdue != nil {
			sig.OverdueFromLiability = true
			if *acc.IsOverdue {
				liabilityOverdue = true
			}
		}

		sig.Accounts = append(sig.Accounts, domain.AccountUtilization{
			AccountID:          acc.ID,
			Name:               acc.Name,
			Mask:               acc.Mask,
			Balance:            acc.Balance,
			Limit:              acc.Limit,
			Utilization:        round2(utilization),
			Level:              UtilizationLevel(utilization),
			InterestCharged:    round2(interest),
			MinimumPaymentOnly: minOnly,
		})
		totalBalance += acc.Balance
		totalLimit += acc.Limit
	}

	sig.TotalUtilization = round2(totalBalance / totalLimit)
	sig.UtilizationLevel = UtilizationLevel(sig.TotalUtilization)
	sig.InterestCharged = round2(totalInterest)
	if sig.OverdueFromLiability {
		sig.IsOverdue = liabilityOverdue
	} else {
		sig.IsOverdue = sig.TotalUtilization >= 0.90 || totalInterest > 0
	}
	if totalSpending > 0 {
		sig.OnlineSpendingShare = round2(onlineSpending / totalSpending)
	}
	return sig
}

// minimumPaymentOnly prefers the account's liability fields; when those are
// missing it falls back to comparing the latest in-window payment against an
// estimated minimum of max(2% of balance, $25).
func minimumPaymentOnly(acc domain.Account, lastPayment domain.Transaction) bool {
	if acc.LastPaymentAmount != nil && acc.MinimumPaymentAmount != nil {
		return math.Abs(*acc.LastPaymentAmount-*acc.MinimumPaymentAmount) <= minimumPaymentTolerance
	}
	if lastPayment.Amount <= 0 {
		return false
	}
	estimatedMin := math.Max(acc.Balance*0.02, 25.0)
	return math.Abs(lastPayment.Amount-estimatedMin) <= minimumPaymentTolerance
}
