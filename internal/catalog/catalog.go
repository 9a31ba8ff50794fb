// Package catalog holds the static content and offer catalogs the
// recommendation selector draws from. A catalog is loaded once at process
// start, validated, and never mutated at runtime. Insertion order is
// significant: selection ties are broken by catalog order.
package catalog

import (
	"fmt"

	"github.com/spendsense/spendsense/internal/domain"
)

// Trigger signal names usable in ContentItem.TriggerSignals. The selector
// evaluates each against the user's signal set.
const (
	TriggerCreditUtilizationHigh     = "credit_utilization_high"
	TriggerMinimumPaymentOnly        = "minimum_payment_only"
	TriggerInterestCharged           = "interest_charged"
	TriggerIrregularFrequency        = "irregular_frequency"
	TriggerMedianPayGapHigh          = "median_pay_gap_high"
	TriggerCashFlowBufferLow         = "cash_flow_buffer_low"
	TriggerSubscriptionCountHigh     = "subscription_count_high"
	TriggerMonthlyRecurringHigh      = "monthly_recurring_high"
	TriggerSavingsGrowthRatePositive = "savings_growth_rate_positive"
	TriggerEmergencyFundAdequate     = "emergency_fund_adequate"
	TriggerSavingsBalancePositive    = "savings_balance_positive"
)

// KnownTriggers returns every recognized trigger signal name.
func KnownTriggers() []string {
	return []string{
		TriggerCreditUtilizationHigh,
		TriggerMinimumPaymentOnly,
		TriggerInterestCharged,
		TriggerIrregularFrequency,
		TriggerMedianPayGapHigh,
		TriggerCashFlowBufferLow,
		TriggerSubscriptionCountHigh,
		TriggerMonthlyRecurringHigh,
		TriggerSavingsGrowthRatePositive,
		TriggerEmergencyFundAdequate,
		TriggerSavingsBalancePositive,
	}
}

// deniedCategories lists product categories that are never eligible for
// recommendation regardless of signals.
var deniedCategories = map[string]bool{
	"payday_loan":   true,
	"title_loan":    true,
	"pawn_loan":     true,
	"rent_to_own":   true,
	"credit_repair": true,
}

// DeniedCategory reports whether the category is on the hard denylist.
func DeniedCategory(category string) bool {
	return deniedCategories[category]
}

// ContentItem is one education content entry.
type ContentItem struct {
	ID                string           `json:"content_id"`
	Title             string           `json:"title"`
	Category          string           `json:"category"`
	EligiblePersonas  []domain.Persona `json:"eligible_personas"`
	TriggerSignals    []string         `json:"trigger_signals"`
	RationaleTemplate string           `json:"rationale_template"`
}

// EligibilityRule is the declarative predicate attached to an offer. Zero
// values mean the bound is not checked; pointer fields distinguish "no
// bound" from a zero bound.
type EligibilityRule struct {
	MinUtilization          *float64 `json:"min_utilization,omitempty"`
	MaxUtilization          *float64 `json:"max_utilization,omitempty"`
	AllowOverdue            bool     `json:"allow_overdue"`
	AllowMinimumPaymentOnly bool     `json:"allow_minimum_payment_only"`
	MinInterestCharged      float64  `json:"min_interest_charged,omitempty"`
	MinSubscriptionCount    int      `json:"min_subscription_count,omitempty"`
	MinSavingsBalance       float64  `json:"min_savings_balance,omitempty"`
	MaxEmergencyFundMonths  *float64 `json:"max_emergency_fund_months,omitempty"`
	MinAvgMonthlySavings    float64  `json:"min_avg_monthly_savings,omitempty"`
}

// Offer is one partner offer entry.
type Offer struct {
	ID                string           `json:"offer_id"`
	Code              string           `json:"code"`
	Title             string           `json:"title"`
	Partner           string           `json:"partner"`
	Category          string           `json:"category"`
	Tier              string           `json:"tier"`
	Summary           string           `json:"summary"`
	EligiblePersonas  []domain.Persona `json:"eligible_personas,omitempty"`
	RationaleTemplate string           `json:"rationale_template"`
	Eligibility       EligibilityRule  `json:"eligibility_criteria"`

	// MinIncome is a monthly income floor; 0 means no floor. Skipped when
	// the user's income is unknown.
	MinIncome float64 `json:"min_income,omitempty"`

	// ExcludedIfOwns lists account subtypes that disqualify the user, e.g.
	// a savings-account offer excluded for existing savings holders.
	ExcludedIfOwns []string `json:"excluded_if_owns,omitempty"`

	// Marketing metadata carried through to presentation surfaces.
	PurchaseAPR             string `json:"purchase_apr,omitempty"`
	IntroPurchaseAPR        string `json:"intro_purchase_apr,omitempty"`
	IntroBalanceTransferAPR string `json:"intro_balance_transfer_apr,omitempty"`
	BalanceTransferFee      string `json:"balance_transfer_fee,omitempty"`
	AnnualFee               string `json:"annual_fee,omitempty"`
	BonusAmount             string `json:"bonus_amount,omitempty"`
	BonusRequirement        string `json:"bonus_requirement,omitempty"`
}

// Catalog bundles the education content and partner offers.
type Catalog struct {
	Version string        `json:"version"`
	Content []ContentItem `json:"content"`
	Offers  []Offer       `json:"offers"`
}

// Validate checks structural soundness: unique ids, known personas and
// trigger names, non-empty templates, and no denied offer categories. A
// catalog failing validation must not be served.
func (c *Catalog) Validate() error {
	if len(c.Content) == 0 {
		return fmt.Errorf("catalog has no content items")
	}

	known := make(map[string]bool)
	for _, name := range KnownTriggers() {
		known[name] = true
	}

	ids := make(map[string]bool)
	for _, item := range c.Content {
		if item.ID == "" || item.Title == "" {
			return fmt.Errorf("content item %q: id and title are required", item.ID)
		}
		if ids[item.ID] {
			return fmt.Errorf("duplicate catalog id %q", item.ID)
		}
		ids[item.ID] = true
		if item.RationaleTemplate == "" {
			return fmt.Errorf("content item %q: rationale_template is required", item.ID)
		}
		for _, p := range item.EligiblePersonas {
			if !p.Valid() {
				return fmt.Errorf("content item %q: unknown persona %q", item.ID, p)
			}
		}
		for _, trigger := range item.TriggerSignals {
			if !known[trigger] {
				return fmt.Errorf("content item %q: unknown trigger signal %q", item.ID, trigger)
			}
		}
	}

	for _, offer := range c.Offers {
		if offer.ID == "" || offer.Title == "" {
			return fmt.Errorf("offer %q: id and title are required", offer.ID)
		}
		if ids[offer.ID] {
			return fmt.Errorf("duplicate catalog id %q", offer.ID)
		}
		ids[offer.ID] = true
		if offer.RationaleTemplate == "" {
			return fmt.Errorf("offer %q: rationale_template is required", offer.ID)
		}
		if DeniedCategory(offer.Category) {
			return fmt.Errorf("offer %q: category %q is on the denylist", offer.ID, offer.Category)
		}
		for _, p := range offer.EligiblePersonas {
			if !p.Valid() {
				return fmt.Errorf("offer %q: unknown persona %q", offer.ID, p)
			}
		}
		if offer.Eligibility.MinUtilization != nil && offer.Eligibility.MaxUtilization != nil &&
			*offer.Eligibility.MinUtilization > *offer.Eligibility.MaxUtilization {
			return fmt.Errorf("offer %q: min_utilization exceeds max_utilization", offer.ID)
		}
	}
	return nil
}

// ContentByPersona returns the content items eligible for a persona, in
// catalog order.
func (c *Catalog) ContentByPersona(p domain.Persona) []ContentItem {
	var out []ContentItem
	for _, item := range c.Content {
		for _, eligible := range item.EligiblePersonas {
			if eligible == p {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
