package domain

import "time"

// Transaction is one normalized ledger entry. Transactions are immutable
// after ingestion; amounts are signed with debits negative.
type Transaction struct {
	ID        string `json:"transaction_id"`
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`

	Date           time.Time  `json:"date"`
	AuthorizedDate *time.Time `json:"authorized_date,omitempty"`

	Amount       float64 `json:"amount"` // negative = debit
	Currency     string  `json:"currency"`
	MerchantName string  `json:"merchant_name"`

	// Category is ordered, primary first (e.g. ["Food", "Groceries"]).
	Category []string `json:"category"`

	Pending        bool   `json:"pending"`
	PaymentChannel string `json:"payment_channel"` // "online", "in store", "other"

	LocationCity   string `json:"location_city,omitempty"`
	LocationRegion string `json:"location_region,omitempty"`
}

// EffectiveDate returns the authorized date when present, otherwise the
// posting date. Cadence math uses the authorized date for accuracy.
func (t Transaction) EffectiveDate() time.Time {
	if t.AuthorizedDate != nil && !t.AuthorizedDate.IsZero() {
		return *t.AuthorizedDate
	}
	return t.Date
}

// IsDebit reports whether the transaction moved money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Amount < 0
}

// AccountType is the top-level account classification.
type AccountType string

const (
	AccountDepository AccountType = "depository"
	AccountCredit     AccountType = "credit"
	AccountLoan       AccountType = "loan"
)

// Account is one financial account. For credit accounts Limit is the credit
// line; for loans it is the original principal. The liability fields are
// optional and only populated when the upstream data layer supplies them.
type Account struct {
	ID      string      `json:"account_id"`
	UserID  string      `json:"user_id"`
	Type    AccountType `json:"type"`
	Subtype string      `json:"subtype"` // "checking", "savings", "money market", "hsa", "credit card", ...
	Name    string      `json:"name"`
	Mask    string      `json:"mask"`

	Balance float64 `json:"balance"`
	Limit   float64 `json:"limit"` // 0 = unknown / not applicable

	// Liability data, credit accounts only. Nil when unavailable.
	LastPaymentAmount    *float64 `json:"last_payment_amount,omitempty"`
	MinimumPaymentAmount *float64 `json:"minimum_payment_amount,omitempty"`
	IsOverdue            *bool    `json:"is_overdue,omitempty"`
}

// IsSavings reports whether the account counts toward savings signals.
func (a Account) IsSavings() bool {
	switch a.Subtype {
	case "savings", "money market", "hsa":
		return true
	}
	return false
}

// PersonaAssignment records the classification result for one
// (user, window). Recomputation overwrites the previous assignment.
type PersonaAssignment struct {
	UserID  string     `json:"user_id"`
	Window  TimeWindow `json:"time_window"`
	Persona Persona    `json:"persona"`

	// CriteriaMet lists the matched predicate descriptions of the winning
	// rule, in rule-definition order.
	CriteriaMet []string `json:"criteria_met"`

	// MatchPercentages holds the 0-100 criteria-weighted score per persona,
	// kept for operator surfaces alongside the first-match winner.
	MatchPercentages map[Persona]float64 `json:"match_percentages,omitempty"`

	AssignedAt time.Time `json:"assigned_at"`
}

// RecommendationType distinguishes education content from partner offers.
type RecommendationType string

const (
	RecommendationEducation    RecommendationType = "education"
	RecommendationPartnerOffer RecommendationType = "partner_offer"
)

// Recommendation is one emitted recommendation. Created once per selection
// event and never mutated; a recompute supersedes prior rows and appends
// new ones.
type Recommendation struct {
	RecommendationID string             `json:"recommendation_id"`
	UserID           string             `json:"user_id"`
	Window           TimeWindow         `json:"time_window"`
	Type             RecommendationType `json:"type"`
	ContentID        string             `json:"content_id"`
	Title            string             `json:"title"`
	Rationale        string             `json:"rationale"`
	ShownAt          time.Time          `json:"shown_at"`
	Superseded       bool               `json:"superseded"`
}

// SignalCitation names one signal value and the threshold it was compared
// against while selecting a recommendation.
type SignalCitation struct {
	Signal    string  `json:"signal"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// GuardrailOutcome records both guardrail check results. Both booleans are
// recorded regardless of pass/fail.
type GuardrailOutcome struct {
	ToneCheck        bool `json:"tone_check"`
	EligibilityCheck bool `json:"eligibility_check"`
}

// DecisionTrace is the immutable audit record behind one Recommendation
// (1:1 by RecommendationID). Traces are write-once; recomputation creates
// new Recommendation+DecisionTrace pairs instead of mutating history.
type DecisionTrace struct {
	RecommendationID string           `json:"recommendation_id"`
	UserID           string           `json:"user_id"`
	Window           TimeWindow       `json:"time_window"`
	PersonaMatch     Persona          `json:"persona_match"`
	SignalsUsed      []SignalCitation `json:"signals_used"`
	TemplateID       string           `json:"template_id"`
	TemplateFallback bool             `json:"template_fallback"`
	Guardrails       GuardrailOutcome `json:"guardrails_passed"`
	Timestamp        time.Time        `json:"timestamp"`
}
