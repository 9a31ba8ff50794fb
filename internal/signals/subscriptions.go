// Package signals derives behavioral signals from normalized transactions
// and account balances. Every detector is a pure function of its inputs and
// a reference time, so recomputing over unchanged data yields identical
// results. Detectors never fail; sparse data produces a payload with
// InsufficientData set instead of an error.
package signals

import (
	"sort"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// Weekly charges convert to a monthly equivalent at the average number of
// weeks per month.
const weeksPerMonth = 4.33

const minRecurringOccurrences = 3

// DetectSubscriptions finds recurring merchants among the user's debits
// inside the window. A merchant is recurring when it has at least three
// charges on a monthly (25-34 day) or weekly (6-8 day) cadence, and is
// either mostly online or has four or more charges.
func DetectSubscriptions(txs []domain.Transaction, window domain.TimeWindow, asOf time.Time) domain.SubscriptionSignal {
	cutoff := window.Cutoff(asOf)

	type charge struct {
		date    time.Time
		amount  float64
		channel string
	}
	byMerchant := make(map[string][]charge)
	var merchants []string
	var totalSpend float64

	for _, tx := range txs {
		if !tx.IsDebit() || tx.EffectiveDate().Before(cutoff) {
			continue
		}
		name := tx.MerchantName
		if name == "" {
			name = "Unknown"
		}
		if _, seen := byMerchant[name]; !seen {
			merchants = append(merchants, name)
		}
		byMerchant[name] = append(byMerchant[name], charge{
			date:    tx.EffectiveDate(),
			amount:  -tx.Amount,
			channel: tx.PaymentChannel,
		})
		totalSpend += -tx.Amount
	}

	if len(byMerchant) == 0 {
		return domain.SubscriptionSignal{InsufficientData: true}
	}

	sig := domain.SubscriptionSignal{TotalSpend: round2(totalSpend)}
	sort.Strings(merchants)

	for _, merchant := range merchants {
		charges := byMerchant[merchant]
		if len(charges) < minRecurringOccurrences {
			continue
		}
		sort.Slice(charges, func(i, j int) bool { return charges[i].date.Before(charges[j].date) })

		online := 0
		channelCounts := make(map[string]int)
		for _, c := range charges {
			if c.channel == "online" {
				online++
			}
			if c.channel != "" {
				channelCounts[c.channel]++
			}
		}
		onlineRatio := float64(online) / float64(len(charges))
		likelySubscription := onlineRatio >= 0.5

		var gaps, amounts []float64
		for i := 1; i < len(charges); i++ {
			gaps = append(gaps, charges[i].date.Sub(charges[i-1].date).Hours()/24)
			amounts = append(amounts, charges[i].amount)
		}

		avgGap := mean(gaps)
		isMonthly := avgGap >= 25 && avgGap <= 34
		isWeekly := avgGap >= 6 && avgGap <= 8
		if !isMonthly && !isWeekly {
			continue
		}
		if !likelySubscription && len(charges) < 4 {
			continue
		}

		avgAmount := mean(amounts)
		monthlyCost := avgAmount
		frequency := domain.FrequencyMonthly
		if !isMonthly {
			monthlyCost = avgAmount * weeksPerMonth
			frequency = domain.FrequencyWeekly
		}

		primaryChannel := ""
		best := 0
		for channel, n := range channelCounts {
			if n > best || (n == best && channel < primaryChannel) {
				primaryChannel = channel
				best = n
			}
		}

		sig.RecurringMerchants = append(sig.RecurringMerchants, domain.MerchantPattern{
			Merchant:          merchant,
			Amount:            round2(avgAmount),
			MonthlyEquivalent: round2(monthlyCost),
			Frequency:         frequency,
			Occurrences:       len(charges),
			PaymentChannel:    primaryChannel,
			OnlineRatio:       round2(onlineRatio),
		})
		sig.MonthlyRecurring += monthlyCost
	}

	sig.MonthlyRecurring = round2(sig.MonthlyRecurring)
	if totalSpend > 0 {
		sig.SubscriptionShare = round2(sig.MonthlyRecurring / totalSpend)
	}
	return sig
}

func containsCategory(categories []string, needle string) bool {
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}
