package signals

import (
	"sort"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// Payroll keyword detection only trusts deposits above this amount.
const payrollKeywordMinAmount = 500.0

var payrollKeywords = []string{"payroll", "employer", "salary", "direct deposit"}

var nonPayrollMerchants = []string{"savings", "transfer", "refund", "tax"}

// DetectIncomeStability identifies payroll deposits into the user's primary
// checking account and derives pay cadence, paycheck variability, and the
// cash-flow buffer. A deposit counts as payroll when it either exceeds $500
// with a payroll keyword in the merchant name or carries an income category,
// and its merchant is not a savings/transfer/refund/tax counterparty.
// Non-USD deposits are ignored.
func DetectIncomeStability(txs []domain.Transaction, accounts []domain.Account, window domain.TimeWindow, asOf time.Time) domain.IncomeSignal {
	var checking *domain.Account
	for i, acc := range accounts {
		if acc.Type == domain.AccountDepository && acc.Subtype == "checking" {
			checking = &accounts[i]
			break
		}
	}
	if checking == nil {
		return domain.IncomeSignal{Frequency: domain.FrequencyUnknown, IrregularFrequency: true, InsufficientData: true}
	}

	cutoff := window.Cutoff(asOf)

	var payroll []domain.Transaction
	var totalSpend float64
	for _, tx := range txs {
		if tx.AccountID != checking.ID || tx.EffectiveDate().Before(cutoff) {
			continue
		}
		if tx.IsDebit() {
			totalSpend += -tx.Amount
			continue
		}
		if isPayroll(tx) {
			payroll = append(payroll, tx)
		}
	}

	months := float64(window.Days()) / 30.0
	sig := domain.IncomeSignal{Frequency: domain.FrequencyUnknown, IrregularFrequency: true}
	if months > 0 {
		sig.AvgMonthlyExpenses = round2(totalSpend / months)
	}
	if sig.AvgMonthlyExpenses > 0 {
		sig.CashFlowBuffer = round2(checking.Balance / sig.AvgMonthlyExpenses)
	}

	if len(payroll) < 2 {
		sig.InsufficientData = true
		return sig
	}

	sort.Slice(payroll, func(i, j int) bool {
		return payroll[i].EffectiveDate().Before(payroll[j].EffectiveDate())
	})

	var gaps, amounts []float64
	amounts = append(amounts, payroll[0].Amount)
	for i := 1; i < len(payroll); i++ {
		gaps = append(gaps, payroll[i].EffectiveDate().Sub(payroll[i-1].EffectiveDate()).Hours()/24)
		amounts = append(amounts, payroll[i].Amount)
	}

	gap := median(gaps)
	sig.MedianPayGap = gap
	sig.Frequency = payFrequency(gap)
	sig.IrregularFrequency = irregularFrequency(gap, gaps)

	if m := mean(amounts); m > 0 {
		sig.CoefficientOfVariation = round2(stddev(amounts) / m)
	}

	var totalIncome float64
	for _, a := range amounts {
		totalIncome += a
	}
	if months > 0 {
		sig.AvgMonthlyIncome = round2(totalIncome / months)
	}
	return sig
}

func isPayroll(tx domain.Transaction) bool {
	if tx.Currency != "" && tx.Currency != "USD" {
		return false
	}
	merchant := strings.ToLower(tx.MerchantName)
	for _, excluded := range nonPayrollMerchants {
		if strings.Contains(merchant, excluded) {
			return false
		}
	}

	hasKeyword := false
	for _, kw := range payrollKeywords {
		if strings.Contains(merchant, kw) {
			hasKeyword = true
			break
		}
	}
	incomeCategory := containsCategory(tx.Category, "income") || containsCategory(tx.Category, "payroll")
	return (tx.Amount > payrollKeywordMinAmount && hasKeyword) || incomeCategory
}

func payFrequency(medianGap float64) string {
	switch {
	case medianGap >= 6 && medianGap <= 8:
		return domain.FrequencyWeekly
	case medianGap >= 13 && medianGap <= 14:
		return domain.FrequencyBiweekly
	case medianGap >= 15 && medianGap <= 16:
		return domain.FrequencySemiMonthly
	case medianGap >= 28 && medianGap <= 31:
		return domain.FrequencyMonthly
	default:
		return domain.FrequencyIrregular
	}
}

// irregularFrequency is true when the median gap misses every known cadence
// and the gap variance is high (or there are too few gaps to judge).
func irregularFrequency(medianGap float64, gaps []float64) bool {
	if payFrequency(medianGap) != domain.FrequencyIrregular {
		return false
	}
	if len(gaps) > 1 {
		return stddev(gaps) > 7
	}
	return true
}
