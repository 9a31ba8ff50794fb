package domain

import "time"

// Utilization and coverage level labels shared by signal payloads and the
// persona rules.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"

	CoverageExcellent = "excellent"
	CoverageGood      = "good"
	CoverageBuilding  = "building"
	CoverageLow       = "low"

	FrequencyWeekly      = "weekly"
	FrequencyBiweekly    = "biweekly"
	FrequencySemiMonthly = "semi_monthly"
	FrequencyMonthly     = "monthly"
	FrequencyIrregular   = "irregular"
	FrequencyUnknown     = "unknown"
)

// MerchantPattern is one detected recurring merchant.
type MerchantPattern struct {
	Merchant          string  `json:"merchant"`
	Amount            float64 `json:"amount"` // average charge
	MonthlyEquivalent float64 `json:"monthly_equivalent"`
	Frequency         string  `json:"frequency"` // "monthly" or "weekly"
	Occurrences       int     `json:"occurrences"`
	PaymentChannel    string  `json:"payment_channel,omitempty"`
	OnlineRatio       float64 `json:"online_ratio"`
}

// SubscriptionSignal summarizes recurring-merchant spend within a window.
// Ratios are decimals (0.10 = 10%).
type SubscriptionSignal struct {
	RecurringMerchants []MerchantPattern `json:"recurring_merchants"`
	MonthlyRecurring   float64           `json:"monthly_recurring"`
	SubscriptionShare  float64           `json:"subscription_share"`
	TotalSpend         float64           `json:"total_spend"`
	InsufficientData   bool              `json:"insufficient_data"`
}

// AccountUtilization is the per-credit-account breakdown inside a
// CreditSignal. Utilization is a decimal (0.68 = 68%).
type AccountUtilization struct {
	AccountID          string  `json:"account_id"`
	Name               string  `json:"name,omitempty"`
	Mask               string  `json:"mask,omitempty"`
	Balance            float64 `json:"balance"`
	Limit              float64 `json:"limit"`
	Utilization        float64 `json:"utilization"`
	Level              string  `json:"utilization_level"`
	InterestCharged    float64 `json:"interest_charged"`
	MinimumPaymentOnly bool    `json:"minimum_payment_only"`
}

// CreditSignal summarizes credit-card utilization and repayment behavior.
type CreditSignal struct {
	Accounts             []AccountUtilization `json:"accounts"`
	TotalUtilization     float64              `json:"total_utilization"`
	UtilizationLevel     string               `json:"utilization_level"`
	InterestCharged      float64              `json:"interest_charged"`
	MinimumPaymentOnly   bool                 `json:"minimum_payment_only"`
	IsOverdue            bool                 `json:"is_overdue"`
	OverdueFromLiability bool                 `json:"overdue_from_liability"`
	OnlineSpendingShare  float64              `json:"online_spending_share"`
	InsufficientData     bool                 `json:"insufficient_data"`
}

// SavingsSignal summarizes savings-account behavior within a window.
type SavingsSignal struct {
	TotalSavings          float64 `json:"total_savings"`
	NetInflow             float64 `json:"net_inflow"`
	GrowthRate            float64 `json:"growth_rate"`
	GrowthRateAvailable   bool    `json:"growth_rate_available"`
	EmergencyFundCoverage float64 `json:"emergency_fund_coverage"`
	CoverageLevel         string  `json:"coverage_level"`
	AvgMonthlyExpenses    float64 `json:"avg_monthly_expenses"`
	AvgMonthlySavings     float64 `json:"avg_monthly_savings"`
	TravelFiltered        int     `json:"travel_filtered_transactions"`
	InsufficientData      bool    `json:"insufficient_data"`
}

// IncomeSignal summarizes payroll cadence and cash-flow resilience.
// CoefficientOfVariation is a decimal ratio of stddev to mean pay amount.
type IncomeSignal struct {
	Frequency              string  `json:"frequency"`
	MedianPayGap           float64 `json:"median_pay_gap"` // days
	IrregularFrequency     bool    `json:"irregular_frequency"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	CashFlowBuffer         float64 `json:"cash_flow_buffer"` // months
	AvgMonthlyIncome       float64 `json:"avg_monthly_income"`
	AvgMonthlyExpenses     float64 `json:"avg_monthly_expenses"`
	InsufficientData       bool    `json:"insufficient_data"`
}

// SignalSet is the full signal output for one (user, window). One set per
// key; recomputation overwrites, never appends.
type SignalSet struct {
	UserID string     `json:"user_id"`
	Window TimeWindow `json:"time_window"`

	Subscriptions SubscriptionSignal `json:"subscriptions"`
	Credit        CreditSignal       `json:"credit_utilization"`
	Savings       SavingsSignal      `json:"savings_behavior"`
	Income        IncomeSignal       `json:"income_stability"`

	ComputedAt time.Time `json:"computed_at"`
}
