// Package persona classifies users into mutually exclusive personas from
// their computed signals. Rules are evaluated in priority order and the
// first match wins; general_wellness is the fallback when nothing matches.
// Classification is pure: it reads the signal set and never recomputes
// signals or touches storage.
package persona

import (
	"fmt"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// Rule thresholds.
const (
	highUtilizationThreshold = 0.50
	lowUtilizationCeiling    = 0.30
	payGapIrregularDays      = 45.0
	lowBufferMonths          = 1.0
	minRecurringMerchants    = 3
	monthlyRecurringFloor    = 50.0
	subscriptionShareFloor   = 0.10
	savingsGrowthFloor       = 0.02
	savingsInflowFloor       = 200.0
)

// Evaluation is the outcome of one rule against one signal set. Score is a
// 0-100 criteria-weighted match percentage kept for operator surfaces; the
// Matched boolean alone decides classification.
type Evaluation struct {
	Matched  bool
	Criteria []string
	Score    float64
}

// Rule is one persona predicate.
type Rule struct {
	Persona  domain.Persona
	Evaluate func(domain.SignalSet) Evaluation
}

// Rules returns the persona rules in priority order, highest first. The
// fallback persona is not part of the table.
func Rules() []Rule {
	return []Rule{
		{Persona: domain.PersonaHighUtilization, Evaluate: evaluateHighUtilization},
		{Persona: domain.PersonaSubscriptionHeavy, Evaluate: evaluateSubscriptionHeavy},
		{Persona: domain.PersonaVariableIncome, Evaluate: evaluateVariableIncome},
		{Persona: domain.PersonaSavingsBuilder, Evaluate: evaluateSavingsBuilder},
	}
}

// Classify assigns a persona for one signal set. The result carries the
// criteria met by the winning rule and the match score of every persona.
func Classify(set domain.SignalSet, asOf time.Time) domain.PersonaAssignment {
	assignment := domain.PersonaAssignment{
		UserID:           set.UserID,
		Window:           set.Window,
		Persona:          domain.PersonaGeneralWellness,
		MatchPercentages: make(map[domain.Persona]float64, 5),
		AssignedAt:       asOf,
	}

	maxOther := 0.0
	winnerFound := false
	for _, rule := range Rules() {
		eval := rule.Evaluate(set)
		assignment.MatchPercentages[rule.Persona] = eval.Score
		if eval.Score > maxOther {
			maxOther = eval.Score
		}
		if eval.Matched && !winnerFound {
			assignment.Persona = rule.Persona
			assignment.CriteriaMet = eval.Criteria
			winnerFound = true
		}
	}

	wellness := 20.0
	wellnessCriteria := []string{"baseline_score"}
	if maxOther < 50.0 {
		wellness += 30.0
		wellnessCriteria = append(wellnessCriteria, "no_other_persona_strong_match")
	}
	assignment.MatchPercentages[domain.PersonaGeneralWellness] = wellness
	if !winnerFound {
		assignment.CriteriaMet = wellnessCriteria
	}
	return assignment
}

// evaluateHighUtilization matches on any of: aggregate or per-account
// utilization at or above 50%, interest charged, minimum-payments-only
// behavior, or overdue status.
func evaluateHighUtilization(set domain.SignalSet) Evaluation {
	credit := set.Credit
	var eval Evaluation

	if credit.TotalUtilization >= highUtilizationThreshold {
		eval.Score += 25
		eval.Criteria = append(eval.Criteria, "credit_utilization >= 50%")
	}
	if credit.InterestCharged > 0 {
		eval.Score += 25
		eval.Criteria = append(eval.Criteria, "interest_charged > 0")
	}
	if credit.MinimumPaymentOnly {
		eval.Score += 25
		eval.Criteria = append(eval.Criteria, "minimum_payment_only")
	}
	if credit.IsOverdue {
		eval.Score += 25
		eval.Criteria = append(eval.Criteria, "is_overdue")
	}
	eval.Matched = len(eval.Criteria) > 0

	// A single maxed card matches even when the aggregate stays under the
	// threshold.
	if !eval.Matched {
		for _, acc := range credit.Accounts {
			if acc.Utilization >= highUtilizationThreshold {
				eval.Matched = true
				eval.Criteria = append(eval.Criteria, "account_utilization >= 50%")
				break
			}
		}
	}
	return eval
}

// evaluateVariableIncome matches when pay cadence is irregular (median gap
// above 45 days or flagged irregular) and the cash-flow buffer is under one
// month.
func evaluateVariableIncome(set domain.SignalSet) Evaluation {
	income := set.Income
	var eval Evaluation
	if income.InsufficientData {
		return eval
	}

	irregular := income.MedianPayGap > payGapIrregularDays || income.IrregularFrequency
	if irregular {
		eval.Score += 50
		eval.Criteria = append(eval.Criteria, "irregular_income_pattern")
	}
	if income.CashFlowBuffer < lowBufferMonths {
		eval.Score += 50
		eval.Criteria = append(eval.Criteria, "cash_flow_buffer < 1.0")
	}
	eval.Matched = irregular && income.CashFlowBuffer < lowBufferMonths
	return eval
}

// evaluateSubscriptionHeavy matches at three or more recurring merchants
// with either $50+ in monthly recurring spend or a 10%+ subscription share.
func evaluateSubscriptionHeavy(set domain.SignalSet) Evaluation {
	subs := set.Subscriptions
	var eval Evaluation

	enoughMerchants := len(subs.RecurringMerchants) >= minRecurringMerchants
	if enoughMerchants {
		eval.Score += 50
		eval.Criteria = append(eval.Criteria,
			fmt.Sprintf("recurring_merchants >= 3 (%d found)", len(subs.RecurringMerchants)))
	}
	highSpend := subs.MonthlyRecurring >= monthlyRecurringFloor || subs.SubscriptionShare >= subscriptionShareFloor
	if highSpend {
		eval.Score += 50
		eval.Criteria = append(eval.Criteria, "monthly_recurring >= $50 OR subscription_share >= 10%")
	}
	eval.Matched = enoughMerchants && highSpend
	return eval
}

// evaluateSavingsBuilder matches on savings growth of 2%+ or $200+ net
// inflow, provided every credit line sits under 30% utilization.
func evaluateSavingsBuilder(set domain.SignalSet) Evaluation {
	savings := set.Savings
	credit := set.Credit
	var eval Evaluation
	if savings.InsufficientData {
		return eval
	}

	growing := (savings.GrowthRateAvailable && savings.GrowthRate >= savingsGrowthFloor) ||
		savings.NetInflow >= savingsInflowFloor
	if growing {
		eval.Score += 50
		eval.Criteria = append(eval.Criteria, "savings_growth_rate >= 2% OR net_inflow >= $200")
	}

	allCreditLow := credit.TotalUtilization < lowUtilizationCeiling
	for _, acc := range credit.Accounts {
		if acc.Utilization >= lowUtilizationCeiling {
			allCreditLow = false
			break
		}
	}
	if allCreditLow {
		eval.Score += 50
		eval.Criteria = append(eval.Criteria, "all_credit_utilization < 30%")
	}
	eval.Matched = growing && allCreditLow
	return eval
}
