// Package recommend turns a persona assignment and its signal set into
// recommendations backed by decision traces: it selects education content
// and partner offers from the catalog, renders data-citing rationales,
// applies guardrails, and records the audit trail.
package recommend

import (
	"github.com/spendsense/spendsense/internal/catalog"
	"github.com/spendsense/spendsense/internal/domain"
)

// Trigger thresholds mirrored in the emitted citations.
const (
	thresholdUtilizationHigh  = 0.50
	thresholdMonthlyRecurring = 50.0
	thresholdSubscriptions    = 3.0
	thresholdPayGapDays       = 45.0
	thresholdCashFlowBuffer   = 1.0
	thresholdCoverageMonths   = 3.0
)

// Trigger is the evaluated state of one trigger signal: whether it fired,
// how strongly (for ranking), and the citation recorded when a selection
// relies on it.
type Trigger struct {
	Active   bool
	Strength float64
	Citation domain.SignalCitation
}

// EvaluateTrigger resolves one trigger signal name against a signal set.
// Unknown names are inactive; the catalog validates names at load time.
func EvaluateTrigger(name string, set domain.SignalSet) Trigger {
	credit := set.Credit
	income := set.Income
	subs := set.Subscriptions
	savings := set.Savings

	switch name {
	case catalog.TriggerCreditUtilizationHigh:
		return Trigger{
			Active:   !credit.InsufficientData && credit.TotalUtilization >= thresholdUtilizationHigh,
			Strength: credit.TotalUtilization,
			Citation: utilizationCitation(credit),
		}
	case catalog.TriggerMinimumPaymentOnly:
		return Trigger{
			Active:   credit.MinimumPaymentOnly,
			Strength: 1,
			Citation: domain.SignalCitation{Signal: "minimum_payment_only", Value: boolValue(credit.MinimumPaymentOnly), Threshold: 1},
		}
	case catalog.TriggerInterestCharged:
		return Trigger{
			Active:   credit.InterestCharged > 0,
			Strength: credit.InterestCharged / 100,
			Citation: domain.SignalCitation{Signal: "interest_charged", Value: credit.InterestCharged},
		}
	case catalog.TriggerIrregularFrequency:
		return Trigger{
			Active:   !income.InsufficientData && income.IrregularFrequency,
			Strength: 1,
			Citation: domain.SignalCitation{Signal: "irregular_frequency", Value: boolValue(income.IrregularFrequency), Threshold: 1},
		}
	case catalog.TriggerMedianPayGapHigh:
		return Trigger{
			Active:   !income.InsufficientData && income.MedianPayGap > thresholdPayGapDays,
			Strength: income.MedianPayGap / thresholdPayGapDays,
			Citation: domain.SignalCitation{Signal: "median_pay_gap", Value: income.MedianPayGap, Threshold: thresholdPayGapDays},
		}
	case catalog.TriggerCashFlowBufferLow:
		return Trigger{
			Active:   income.AvgMonthlyExpenses > 0 && income.CashFlowBuffer < thresholdCashFlowBuffer,
			Strength: thresholdCashFlowBuffer - income.CashFlowBuffer,
			Citation: domain.SignalCitation{Signal: "cash_flow_buffer", Value: income.CashFlowBuffer, Threshold: thresholdCashFlowBuffer},
		}
	case catalog.TriggerSubscriptionCountHigh:
		count := float64(len(subs.RecurringMerchants))
		return Trigger{
			Active:   count >= thresholdSubscriptions,
			Strength: count / thresholdSubscriptions,
			Citation: domain.SignalCitation{Signal: "subscription_count", Value: count, Threshold: thresholdSubscriptions},
		}
	case catalog.TriggerMonthlyRecurringHigh:
		return Trigger{
			Active:   subs.MonthlyRecurring >= thresholdMonthlyRecurring,
			Strength: subs.MonthlyRecurring / thresholdMonthlyRecurring,
			Citation: domain.SignalCitation{Signal: "monthly_recurring", Value: subs.MonthlyRecurring, Threshold: thresholdMonthlyRecurring},
		}
	case catalog.TriggerSavingsGrowthRatePositive:
		return Trigger{
			Active:   savings.GrowthRateAvailable && savings.GrowthRate > 0,
			Strength: savings.GrowthRate * 10,
			Citation: domain.SignalCitation{Signal: "savings_growth_rate", Value: savings.GrowthRate},
		}
	case catalog.TriggerEmergencyFundAdequate:
		return Trigger{
			Active:   !savings.InsufficientData && savings.EmergencyFundCoverage >= thresholdCoverageMonths,
			Strength: savings.EmergencyFundCoverage / thresholdCoverageMonths,
			Citation: domain.SignalCitation{Signal: "emergency_fund_coverage", Value: savings.EmergencyFundCoverage, Threshold: thresholdCoverageMonths},
		}
	case catalog.TriggerSavingsBalancePositive:
		return Trigger{
			Active:   !savings.InsufficientData && savings.TotalSavings > 0,
			Strength: 1,
			Citation: domain.SignalCitation{Signal: "total_savings", Value: savings.TotalSavings},
		}
	default:
		return Trigger{}
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// utilizationCitation cites the highest-utilization account when one
// exists, falling back to the aggregate.
func utilizationCitation(credit domain.CreditSignal) domain.SignalCitation {
	if acc, ok := highestUtilizationAccount(credit); ok {
		return domain.SignalCitation{
			Signal:    "credit_utilization_" + accountSlug(acc),
			Value:     acc.Utilization,
			Threshold: thresholdUtilizationHigh,
		}
	}
	return domain.SignalCitation{
		Signal:    "credit_utilization",
		Value:     credit.TotalUtilization,
		Threshold: thresholdUtilizationHigh,
	}
}

func highestUtilizationAccount(credit domain.CreditSignal) (domain.AccountUtilization, bool) {
	if len(credit.Accounts) == 0 {
		return domain.AccountUtilization{}, false
	}
	best := credit.Accounts[0]
	for _, acc := range credit.Accounts[1:] {
		if acc.Utilization > best.Utilization {
			best = acc
		}
	}
	return best, true
}
