package recommend

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spendsense/spendsense/internal/domain"
)

// FallbackTemplateID marks traces whose rationale fell back to the generic
// sentence because a template placeholder could not be bound.
const FallbackTemplateID = "generic_fallback"

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// binding is one resolved placeholder: the display text substituted into
// the rationale and the citation recorded in the decision trace.
type binding struct {
	display  string
	citation domain.SignalCitation
	cite     bool
}

// Render substitutes a rationale template's placeholders with values from
// the signal set. Rendering never fails: when any referenced value is
// unavailable the whole rationale degrades to a generic sentence that still
// carries a numeric citation, and fallback is reported so the trace can be
// marked.
func Render(template string, set domain.SignalSet) (text string, citations []domain.SignalCitation, fallback bool) {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)

	resolved := make(map[string]binding, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, done := resolved[name]; done {
			continue
		}
		b, ok := resolveBinding(name, set)
		if !ok {
			return fallbackRationale(set)
		}
		resolved[name] = b
	}

	text = placeholderPattern.ReplaceAllStringFunc(template, func(ph string) string {
		return resolved[strings.Trim(ph, "{}")].display
	})

	seen := make(map[string]bool)
	for _, m := range matches {
		b := resolved[m[1]]
		if b.cite && !seen[b.citation.Signal] {
			seen[b.citation.Signal] = true
			citations = append(citations, b.citation)
		}
	}
	return text, citations, false
}

// fallbackRationale is the generic sentence used when a template cannot be
// fully bound. It cites the lookback window so the trace still carries a
// verifiable number.
func fallbackRationale(set domain.SignalSet) (string, []domain.SignalCitation, bool) {
	days := set.Window.Days()
	text := fmt.Sprintf("This suggestion is based on a review of your last %d days of account activity.", days)
	citations := []domain.SignalCitation{{Signal: "window_days", Value: float64(days)}}
	return text, citations, true
}

func resolveBinding(name string, set domain.SignalSet) (binding, bool) {
	credit := set.Credit
	subs := set.Subscriptions
	savings := set.Savings
	income := set.Income

	switch name {
	case "card_mask":
		acc, ok := highestUtilizationAccount(credit)
		if !ok {
			return binding{}, false
		}
		return binding{display: accountDisplay(acc)}, true

	case "utilization_pct":
		if credit.InsufficientData {
			return binding{}, false
		}
		if acc, ok := highestUtilizationAccount(credit); ok {
			return binding{
				display:  formatPercent(acc.Utilization),
				citation: domain.SignalCitation{Signal: "credit_utilization_" + accountSlug(acc), Value: acc.Utilization, Threshold: thresholdUtilizationHigh},
				cite:     true,
			}, true
		}
		return binding{
			display:  formatPercent(credit.TotalUtilization),
			citation: domain.SignalCitation{Signal: "credit_utilization", Value: credit.TotalUtilization, Threshold: thresholdUtilizationHigh},
			cite:     true,
		}, true

	case "balance":
		acc, ok := highestUtilizationAccount(credit)
		if !ok {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(acc.Balance),
			citation: domain.SignalCitation{Signal: "card_balance_" + accountSlug(acc), Value: acc.Balance},
			cite:     true,
		}, true

	case "limit":
		acc, ok := highestUtilizationAccount(credit)
		if !ok {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(acc.Limit),
			citation: domain.SignalCitation{Signal: "card_limit_" + accountSlug(acc), Value: acc.Limit},
			cite:     true,
		}, true

	case "interest_charged":
		if credit.InterestCharged <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(credit.InterestCharged),
			citation: domain.SignalCitation{Signal: "interest_charged", Value: credit.InterestCharged},
			cite:     true,
		}, true

	case "monthly_recurring":
		if subs.MonthlyRecurring <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(subs.MonthlyRecurring),
			citation: domain.SignalCitation{Signal: "monthly_recurring", Value: subs.MonthlyRecurring, Threshold: thresholdMonthlyRecurring},
			cite:     true,
		}, true

	case "recurring_count":
		count := len(subs.RecurringMerchants)
		if count == 0 {
			return binding{}, false
		}
		return binding{
			display:  fmt.Sprintf("%d", count),
			citation: domain.SignalCitation{Signal: "subscription_count", Value: float64(count), Threshold: thresholdSubscriptions},
			cite:     true,
		}, true

	case "subscription_share_pct":
		if subs.SubscriptionShare <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatPercent(subs.SubscriptionShare),
			citation: domain.SignalCitation{Signal: "subscription_share", Value: subs.SubscriptionShare, Threshold: 0.10},
			cite:     true,
		}, true

	case "coverage_months":
		if savings.InsufficientData || savings.EmergencyFundCoverage <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatNumber(savings.EmergencyFundCoverage),
			citation: domain.SignalCitation{Signal: "emergency_fund_coverage", Value: savings.EmergencyFundCoverage, Threshold: thresholdCoverageMonths},
			cite:     true,
		}, true

	case "median_pay_gap":
		if income.InsufficientData || income.MedianPayGap <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatNumber(income.MedianPayGap),
			citation: domain.SignalCitation{Signal: "median_pay_gap", Value: income.MedianPayGap, Threshold: thresholdPayGapDays},
			cite:     true,
		}, true

	case "cash_flow_buffer":
		if income.AvgMonthlyExpenses <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatNumber(income.CashFlowBuffer),
			citation: domain.SignalCitation{Signal: "cash_flow_buffer", Value: income.CashFlowBuffer, Threshold: thresholdCashFlowBuffer},
			cite:     true,
		}, true

	case "net_inflow":
		if savings.InsufficientData {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(savings.NetInflow),
			citation: domain.SignalCitation{Signal: "net_savings_inflow", Value: savings.NetInflow, Threshold: 200},
			cite:     true,
		}, true

	case "total_savings":
		if savings.InsufficientData {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(savings.TotalSavings),
			citation: domain.SignalCitation{Signal: "total_savings", Value: savings.TotalSavings},
			cite:     true,
		}, true

	case "avg_monthly_savings":
		if savings.InsufficientData || savings.AvgMonthlySavings == 0 {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(savings.AvgMonthlySavings),
			citation: domain.SignalCitation{Signal: "avg_monthly_savings", Value: savings.AvgMonthlySavings},
			cite:     true,
		}, true

	case "avg_monthly_income":
		if income.AvgMonthlyIncome <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(income.AvgMonthlyIncome),
			citation: domain.SignalCitation{Signal: "avg_monthly_income", Value: income.AvgMonthlyIncome},
			cite:     true,
		}, true

	case "avg_monthly_expenses":
		expenses := income.AvgMonthlyExpenses
		if expenses <= 0 {
			expenses = savings.AvgMonthlyExpenses
		}
		if expenses <= 0 {
			return binding{}, false
		}
		return binding{
			display:  formatMoney(expenses),
			citation: domain.SignalCitation{Signal: "avg_monthly_expenses", Value: expenses},
			cite:     true,
		}, true

	default:
		return binding{}, false
	}
}

func accountDisplay(acc domain.AccountUtilization) string {
	switch {
	case acc.Name != "" && acc.Mask != "":
		return fmt.Sprintf("%s ending in %s", acc.Name, acc.Mask)
	case acc.Name != "":
		return acc.Name
	case acc.Mask != "":
		return "card ending in " + acc.Mask
	default:
		return "credit card"
	}
}

func accountSlug(acc domain.AccountUtilization) string {
	parts := []string{}
	if acc.Name != "" {
		parts = append(parts, strings.ReplaceAll(strings.ToLower(acc.Name), " ", "_"))
	}
	if acc.Mask != "" {
		parts = append(parts, acc.Mask)
	}
	if len(parts) == 0 {
		return strings.ToLower(acc.AccountID)
	}
	return strings.Join(parts, "_")
}

// formatMoney renders a dollar amount with thousands separators, dropping
// cents when the value is whole: 3400 -> "$3,400", 15.99 -> "$15.99".
func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole := cents / 100
	frac := cents % 100

	grouped := groupThousands(whole)
	if frac == 0 {
		return fmt.Sprintf("%s$%s", sign, grouped)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, grouped, frac)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatPercent renders a decimal ratio as a percentage: 0.68 -> "68%",
// 0.675 -> "67.5%".
func formatPercent(ratio float64) string {
	return formatNumber(ratio*100) + "%"
}

// formatNumber renders with at most one decimal place, dropping a trailing
// zero: 14 -> "14", 4.5 -> "4.5".
func formatNumber(v float64) string {
	rounded := math.Round(v*10) / 10
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%d", int64(rounded))
	}
	return fmt.Sprintf("%.1f", rounded)
}
