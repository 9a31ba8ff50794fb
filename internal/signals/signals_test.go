package signals

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

var asOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func debit(account string, daysAgo int, amount float64, merchant, channel string) domain.Transaction {
	return domain.Transaction{
		ID:             merchant + "-" + time.Duration(daysAgo).String(),
		UserID:         "user-1",
		AccountID:      account,
		Date:           asOf.AddDate(0, 0, -daysAgo),
		Amount:         -amount,
		Currency:       "USD",
		MerchantName:   merchant,
		PaymentChannel: channel,
	}
}

func deposit(account string, daysAgo int, amount float64, merchant string, category []string) domain.Transaction {
	return domain.Transaction{
		ID:           merchant + "-" + time.Duration(daysAgo).String(),
		UserID:       "user-1",
		AccountID:    account,
		Date:         asOf.AddDate(0, 0, -daysAgo),
		Amount:       amount,
		Currency:     "USD",
		MerchantName: merchant,
		Category:     category,
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestDetectSubscriptionsMonthlyPattern(t *testing.T) {
	txs := []domain.Transaction{
		debit("chk", 1, 15.99, "Netflix", "online"),
		debit("chk", 31, 15.99, "Netflix", "online"),
		debit("chk", 61, 15.99, "Netflix", "online"),
		debit("chk", 10, 84.12, "Whole Foods", "in store"),
	}

	sig := DetectSubscriptions(txs, domain.Window90d, asOf)

	if len(sig.RecurringMerchants) != 1 {
		t.Fatalf("Expected 1 recurring merchant, got %d", len(sig.RecurringMerchants))
	}
	m := sig.RecurringMerchants[0]
	if m.Merchant != "Netflix" {
		t.Errorf("Expected Netflix, got %s", m.Merchant)
	}
	if m.Frequency != domain.FrequencyMonthly {
		t.Errorf("Expected monthly frequency, got %s", m.Frequency)
	}
	if m.Occurrences != 3 {
		t.Errorf("Expected 3 occurrences, got %d", m.Occurrences)
	}
	if sig.MonthlyRecurring < 15.99 {
		t.Errorf("Expected monthly recurring >= 15.99, got %.2f", sig.MonthlyRecurring)
	}
	if !approxEqual(m.OnlineRatio, 1.0) {
		t.Errorf("Expected online ratio 1.0, got %.2f", m.OnlineRatio)
	}
}

func TestDetectSubscriptionsWeeklyConvertsToMonthly(t *testing.T) {
	txs := []domain.Transaction{
		debit("chk", 1, 12.00, "Blue Apron", "online"),
		debit("chk", 8, 12.00, "Blue Apron", "online"),
		debit("chk", 15, 12.00, "Blue Apron", "online"),
		debit("chk", 22, 12.00, "Blue Apron", "online"),
	}

	sig := DetectSubscriptions(txs, domain.Window30d, asOf)

	if len(sig.RecurringMerchants) != 1 {
		t.Fatalf("Expected 1 recurring merchant, got %d", len(sig.RecurringMerchants))
	}
	m := sig.RecurringMerchants[0]
	if m.Frequency != domain.FrequencyWeekly {
		t.Errorf("Expected weekly frequency, got %s", m.Frequency)
	}
	if !approxEqual(m.MonthlyEquivalent, round2(12.00*weeksPerMonth)) {
		t.Errorf("Expected monthly equivalent %.2f, got %.2f", 12.00*weeksPerMonth, m.MonthlyEquivalent)
	}
}

func TestDetectSubscriptionsIrregularExcluded(t *testing.T) {
	// Three charges with wildly varying gaps should not match a cadence.
	txs := []domain.Transaction{
		debit("chk", 2, 40.00, "Corner Cafe", "in store"),
		debit("chk", 5, 40.00, "Corner Cafe", "in store"),
		debit("chk", 50, 40.00, "Corner Cafe", "in store"),
	}

	sig := DetectSubscriptions(txs, domain.Window90d, asOf)

	if len(sig.RecurringMerchants) != 0 {
		t.Errorf("Expected no recurring merchants, got %v", sig.RecurringMerchants)
	}
	if sig.MonthlyRecurring != 0 {
		t.Errorf("Expected zero monthly recurring, got %.2f", sig.MonthlyRecurring)
	}
}

func TestDetectSubscriptionsNoTransactions(t *testing.T) {
	sig := DetectSubscriptions(nil, domain.Window30d, asOf)
	if !sig.InsufficientData {
		t.Error("Expected insufficient data flag with no transactions")
	}
}

func TestDetectCreditUtilizationLevels(t *testing.T) {
	tests := []struct {
		name      string
		balance   float64
		limit     float64
		wantUtil  float64
		wantLevel string
	}{
		{"high", 3400, 5000, 0.68, domain.LevelHigh},
		{"medium", 1750, 5000, 0.35, domain.LevelMedium},
		{"low", 500, 5000, 0.10, domain.LevelLow},
		{"boundary high", 2500, 5000, 0.50, domain.LevelHigh},
		{"boundary medium", 1500, 5000, 0.30, domain.LevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := []domain.Account{{
				ID: "card", UserID: "user-1", Type: domain.AccountCredit,
				Subtype: "credit card", Balance: tt.balance, Limit: tt.limit,
			}}
			sig := DetectCreditUtilization(nil, accounts, domain.Window30d, asOf)
			if !approxEqual(sig.TotalUtilization, tt.wantUtil) {
				t.Errorf("Expected utilization %.2f, got %.2f", tt.wantUtil, sig.TotalUtilization)
			}
			if sig.UtilizationLevel != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, sig.UtilizationLevel)
			}
		})
	}
}

func TestDetectCreditUtilizationNoCreditAccounts(t *testing.T) {
	accounts := []domain.Account{{ID: "chk", Type: domain.AccountDepository, Subtype: "checking"}}
	sig := DetectCreditUtilization(nil, accounts, domain.Window30d, asOf)
	if !sig.InsufficientData {
		t.Error("Expected insufficient data flag without credit accounts")
	}
	if sig.UtilizationLevel != domain.LevelLow {
		t.Errorf("Expected low level, got %s", sig.UtilizationLevel)
	}
}

func TestMinimumPaymentFromLiabilityData(t *testing.T) {
	last, minimum := 52.0, 48.0
	overdue := false
	accounts := []domain.Account{{
		ID: "card", Type: domain.AccountCredit, Balance: 2400, Limit: 5000,
		LastPaymentAmount: &last, MinimumPaymentAmount: &minimum, IsOverdue: &overdue,
	}}

	sig := DetectCreditUtilization(nil, accounts, domain.Window30d, asOf)

	if !sig.MinimumPaymentOnly {
		t.Error("Expected minimum payment only from liability data within $5")
	}
	if !sig.OverdueFromLiability {
		t.Error("Expected overdue status sourced from liability data")
	}
	if sig.IsOverdue {
		t.Error("Expected not overdue when liability says so")
	}
}

func TestMinimumPaymentHeuristicFallback(t *testing.T) {
	// Balance 2000: estimated minimum is max(2%*2000, 25) = 40.
	accounts := []domain.Account{{ID: "card", Type: domain.AccountCredit, Balance: 2000, Limit: 4000}}
	txs := []domain.Transaction{
		deposit("card", 5, 42.00, "Payment Thank You", nil),
	}

	sig := DetectCreditUtilization(txs, accounts, domain.Window30d, asOf)

	if !sig.MinimumPaymentOnly {
		t.Error("Expected heuristic to flag payment within $5 of estimated minimum")
	}
}

func TestInterestChargesInferOverdue(t *testing.T) {
	accounts := []domain.Account{{ID: "card", Type: domain.AccountCredit, Balance: 1000, Limit: 5000}}
	txs := []domain.Transaction{
		debit("card", 3, 31.50, "Interest Charge", "other"),
	}

	sig := DetectCreditUtilization(txs, accounts, domain.Window30d, asOf)

	if !approxEqual(sig.InterestCharged, 31.50) {
		t.Errorf("Expected interest 31.50, got %.2f", sig.InterestCharged)
	}
	if !sig.IsOverdue {
		t.Error("Expected inferred overdue when interest was charged")
	}
	if sig.OverdueFromLiability {
		t.Error("Expected inference path, not liability data")
	}
}

func TestDetectSavingsBehaviorCoverage(t *testing.T) {
	accounts := []domain.Account{
		{ID: "sav", Type: domain.AccountDepository, Subtype: "savings", Balance: 12000},
		{ID: "chk", Type: domain.AccountDepository, Subtype: "checking", Balance: 3000},
	}
	txs := []domain.Transaction{
		deposit("sav", 10, 400, "Monthly Save", nil),
		deposit("sav", 40, 400, "Monthly Save", nil),
		debit("chk", 5, 2000, "Rent", "other"),
		debit("chk", 35, 2000, "Rent", "other"),
	}

	sig := DetectSavingsBehavior(txs, accounts, domain.Window90d, asOf)

	if !approxEqual(sig.TotalSavings, 12000) {
		t.Errorf("Expected total savings 12000, got %.2f", sig.TotalSavings)
	}
	if !approxEqual(sig.NetInflow, 800) {
		t.Errorf("Expected net inflow 800, got %.2f", sig.NetInflow)
	}
	// 4000 spend over 3 months = 1333.33/month; 12000/1333.33 = 9 months.
	if sig.CoverageLevel != domain.CoverageExcellent {
		t.Errorf("Expected excellent coverage, got %s (%.2f months)", sig.CoverageLevel, sig.EmergencyFundCoverage)
	}
	if !sig.GrowthRateAvailable {
		t.Fatal("Expected growth rate to be available")
	}
	// Opening balance 11200, growth 800/11200 = 0.0714.
	if !approxEqual(sig.GrowthRate, 0.07) {
		t.Errorf("Expected growth rate 0.07, got %.4f", sig.GrowthRate)
	}
}

func TestDetectSavingsBehaviorZeroOpeningBalance(t *testing.T) {
	accounts := []domain.Account{
		{ID: "sav", Type: domain.AccountDepository, Subtype: "savings", Balance: 500},
	}
	txs := []domain.Transaction{
		deposit("sav", 10, 500, "Initial Deposit", nil),
	}

	sig := DetectSavingsBehavior(txs, accounts, domain.Window90d, asOf)

	if sig.GrowthRateAvailable {
		t.Error("Expected growth rate unavailable when the opening balance is zero")
	}
}

func TestDetectSavingsBehaviorTravelFilter(t *testing.T) {
	accounts := []domain.Account{
		{ID: "sav", Type: domain.AccountDepository, Subtype: "savings", Balance: 1000},
	}
	home := deposit("sav", 50, 200, "Deposit", nil)
	home.LocationCity, home.LocationRegion = "Columbus", "OH"
	away := deposit("sav", 20, -150, "ATM Withdrawal", nil)
	away.LocationCity, away.LocationRegion = "Las Vegas", "NV"

	sig := DetectSavingsBehavior([]domain.Transaction{home, away}, accounts, domain.Window90d, asOf)

	if sig.TravelFiltered != 1 {
		t.Errorf("Expected 1 travel-filtered transaction, got %d", sig.TravelFiltered)
	}
	if !approxEqual(sig.NetInflow, 200) {
		t.Errorf("Expected net inflow 200 excluding travel, got %.2f", sig.NetInflow)
	}
}

func TestDetectSavingsBehaviorNoSavingsAccounts(t *testing.T) {
	accounts := []domain.Account{{ID: "chk", Type: domain.AccountDepository, Subtype: "checking"}}
	sig := DetectSavingsBehavior(nil, accounts, domain.Window90d, asOf)
	if !sig.InsufficientData {
		t.Error("Expected insufficient data flag without savings accounts")
	}
}

func TestDetectIncomeStabilityBiweekly(t *testing.T) {
	accounts := []domain.Account{
		{ID: "chk", Type: domain.AccountDepository, Subtype: "checking", Balance: 4500},
	}
	var txs []domain.Transaction
	for daysAgo := 3; daysAgo <= 87; daysAgo += 14 {
		txs = append(txs, deposit("chk", daysAgo, 2100, "ACME Corp Payroll", nil))
	}
	txs = append(txs, debit("chk", 7, 1500, "Rent", "other"))
	txs = append(txs, debit("chk", 37, 1500, "Rent", "other"))
	txs = append(txs, debit("chk", 67, 1500, "Rent", "other"))

	sig := DetectIncomeStability(txs, accounts, domain.Window90d, asOf)

	if sig.Frequency != domain.FrequencyBiweekly {
		t.Errorf("Expected biweekly, got %s", sig.Frequency)
	}
	if !approxEqual(sig.MedianPayGap, 14) {
		t.Errorf("Expected median gap 14, got %.1f", sig.MedianPayGap)
	}
	if sig.IrregularFrequency {
		t.Error("Expected regular frequency")
	}
	if sig.CoefficientOfVariation != 0 {
		t.Errorf("Expected zero variation for constant paychecks, got %.2f", sig.CoefficientOfVariation)
	}
	// 4500 balance vs 1500/month expenses = 3 months of buffer.
	if !approxEqual(sig.CashFlowBuffer, 3.0) {
		t.Errorf("Expected cash flow buffer 3.0, got %.2f", sig.CashFlowBuffer)
	}
}

func TestDetectIncomeStabilityFiltersNonPayroll(t *testing.T) {
	accounts := []domain.Account{
		{ID: "chk", Type: domain.AccountDepository, Subtype: "checking", Balance: 1000},
	}
	txs := []domain.Transaction{
		// Keyword match but excluded merchant.
		deposit("chk", 5, 900, "Savings Transfer Payroll", nil),
		// Keyword match but under the amount floor and no income category.
		deposit("chk", 10, 300, "ACME Payroll", nil),
		// Non-USD deposit.
		func() domain.Transaction {
			tx := deposit("chk", 15, 2000, "ACME Payroll", nil)
			tx.Currency = "EUR"
			return tx
		}(),
	}

	sig := DetectIncomeStability(txs, accounts, domain.Window90d, asOf)

	if !sig.InsufficientData {
		t.Error("Expected insufficient data when no deposits qualify as payroll")
	}
	if sig.Frequency != domain.FrequencyUnknown {
		t.Errorf("Expected unknown frequency, got %s", sig.Frequency)
	}
}

func TestDetectIncomeStabilityIrregularGaps(t *testing.T) {
	accounts := []domain.Account{
		{ID: "chk", Type: domain.AccountDepository, Subtype: "checking", Balance: 800},
	}
	txs := []domain.Transaction{
		deposit("chk", 2, 1200, "Gig Income", []string{"Income"}),
		deposit("chk", 24, 800, "Gig Income", []string{"Income"}),
		deposit("chk", 70, 2400, "Gig Income", []string{"Income"}),
	}

	sig := DetectIncomeStability(txs, accounts, domain.Window90d, asOf)

	if sig.Frequency != domain.FrequencyIrregular {
		t.Errorf("Expected irregular frequency, got %s", sig.Frequency)
	}
	if !sig.IrregularFrequency {
		t.Error("Expected irregular frequency flag")
	}
	if sig.CoefficientOfVariation <= 0 {
		t.Errorf("Expected positive coefficient of variation, got %.2f", sig.CoefficientOfVariation)
	}
}

func TestComputeAllDeterministic(t *testing.T) {
	accounts := []domain.Account{
		{ID: "chk", UserID: "user-1", Type: domain.AccountDepository, Subtype: "checking", Balance: 2500},
		{ID: "card", UserID: "user-1", Type: domain.AccountCredit, Subtype: "credit card", Balance: 3400, Limit: 5000, Mask: "4523"},
	}
	txs := []domain.Transaction{
		debit("chk", 1, 15.99, "Netflix", "online"),
		debit("chk", 31, 15.99, "Netflix", "online"),
		debit("chk", 61, 15.99, "Netflix", "online"),
		deposit("chk", 3, 2100, "ACME Corp Payroll", nil),
		deposit("chk", 17, 2100, "ACME Corp Payroll", nil),
	}

	first := ComputeAll("user-1", txs, accounts, domain.Window90d, asOf)
	second := ComputeAll("user-1", txs, accounts, domain.Window90d, asOf)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical signal sets across recomputation")
	}
	if first.UserID != "user-1" || first.Window != domain.Window90d {
		t.Errorf("Unexpected key fields: %s %s", first.UserID, first.Window)
	}
	if !approxEqual(first.Credit.TotalUtilization, 0.68) {
		t.Errorf("Expected utilization 0.68, got %.2f", first.Credit.TotalUtilization)
	}
}
