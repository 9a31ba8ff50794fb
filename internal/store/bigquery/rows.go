// Package bigquery implements store.Source and store.Results on BigQuery.
// Each domain record maps to a flat row; nested signal payloads are carried
// as JSON columns so the table schemas stay stable while the payloads
// evolve.
package bigquery

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/spendsense/spendsense/internal/domain"
)

// Table names inside the configured dataset.
const (
	accountsTable        = "accounts"
	transactionsTable    = "transactions"
	signalSetsTable      = "signal_sets"
	assignmentsTable     = "persona_assignments"
	recommendationsTable = "recommendations"
	tracesTable          = "decision_traces"
)

type AccountRow struct {
	AccountID string `bigquery:"account_id"` // REQUIRED
	UserID    string `bigquery:"user_id"`    // REQUIRED
	Type      string `bigquery:"type"`       // REQUIRED
	Subtype   string `bigquery:"subtype"`    // NULLABLE
	Name      string `bigquery:"name"`       // NULLABLE
	Mask      string `bigquery:"mask"`       // NULLABLE

	Balance float64 `bigquery:"balance"` // REQUIRED
	Limit   float64 `bigquery:"credit_limit"`

	LastPaymentAmount    bigquery.NullFloat64 `bigquery:"last_payment_amount"`    // NULLABLE
	MinimumPaymentAmount bigquery.NullFloat64 `bigquery:"minimum_payment_amount"` // NULLABLE
	IsOverdue            bigquery.NullBool    `bigquery:"is_overdue"`             // NULLABLE
}

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED
	AccountID     string `bigquery:"account_id"`     // REQUIRED

	Date           civil.Date        `bigquery:"date"`            // REQUIRED
	AuthorizedDate bigquery.NullDate `bigquery:"authorized_date"` // NULLABLE

	Amount       float64 `bigquery:"amount"` // REQUIRED, negative = debit
	Currency     string  `bigquery:"currency"`
	MerchantName string  `bigquery:"merchant_name"`

	Category []string `bigquery:"category"` // REPEATED STRING

	Pending        bool   `bigquery:"pending"`
	PaymentChannel string `bigquery:"payment_channel"`

	LocationCity   bigquery.NullString `bigquery:"location_city"`   // NULLABLE
	LocationRegion bigquery.NullString `bigquery:"location_region"` // NULLABLE
}

type SignalSetRow struct {
	UserID     string    `bigquery:"user_id"`     // REQUIRED
	TimeWindow string    `bigquery:"time_window"` // REQUIRED
	Payload    string    `bigquery:"payload"`     // REQUIRED JSON
	ComputedTS time.Time `bigquery:"computed_ts"` // REQUIRED
}

type AssignmentRow struct {
	UserID           string   `bigquery:"user_id"`     // REQUIRED
	TimeWindow       string   `bigquery:"time_window"` // REQUIRED
	Persona          string   `bigquery:"persona"`     // REQUIRED
	CriteriaMet      []string `bigquery:"criteria_met"`
	MatchPercentages string   `bigquery:"match_percentages"` // JSON
	AssignedTS       time.Time `bigquery:"assigned_ts"`
}

type RecommendationRow struct {
	RecommendationID string    `bigquery:"recommendation_id"` // REQUIRED
	UserID           string    `bigquery:"user_id"`           // REQUIRED
	TimeWindow       string    `bigquery:"time_window"`       // REQUIRED
	Type             string    `bigquery:"type"`              // REQUIRED
	ContentID        string    `bigquery:"content_id"`        // REQUIRED
	Title            string    `bigquery:"title"`
	Rationale        string    `bigquery:"rationale"`
	ShownTS          time.Time `bigquery:"shown_ts"`
	Superseded       bool      `bigquery:"superseded"`
}

type TraceRow struct {
	RecommendationID string    `bigquery:"recommendation_id"` // REQUIRED
	UserID           string    `bigquery:"user_id"`           // REQUIRED
	TimeWindow       string    `bigquery:"time_window"`       // REQUIRED
	PersonaMatch     string    `bigquery:"persona_match"`     // REQUIRED
	SignalsUsed      string    `bigquery:"signals_used"`      // REQUIRED JSON
	TemplateID       string    `bigquery:"template_id"`
	TemplateFallback bool      `bigquery:"template_fallback"`
	ToneCheck        bool      `bigquery:"tone_check"`
	EligibilityCheck bool      `bigquery:"eligibility_check"`
	TS               time.Time `bigquery:"ts"`
}

func accountFromRow(r *AccountRow) domain.Account {
	acc := domain.Account{
		ID:      r.AccountID,
		UserID:  r.UserID,
		Type:    domain.AccountType(r.Type),
		Subtype: r.Subtype,
		Name:    r.Name,
		Mask:    r.Mask,
		Balance: r.Balance,
		Limit:   r.Limit,
	}
	if r.LastPaymentAmount.Valid {
		v := r.LastPaymentAmount.Float64
		acc.LastPaymentAmount = &v
	}
	if r.MinimumPaymentAmount.Valid {
		v := r.MinimumPaymentAmount.Float64
		acc.MinimumPaymentAmount = &v
	}
	if r.IsOverdue.Valid {
		v := r.IsOverdue.Bool
		acc.IsOverdue = &v
	}
	return acc
}

func rowFromAccount(acc domain.Account) *AccountRow {
	row := &AccountRow{
		AccountID: acc.ID,
		UserID:    acc.UserID,
		Type:      string(acc.Type),
		Subtype:   acc.Subtype,
		Name:      acc.Name,
		Mask:      acc.Mask,
		Balance:   acc.Balance,
		Limit:     acc.Limit,
	}
	if acc.LastPaymentAmount != nil {
		row.LastPaymentAmount = bigquery.NullFloat64{Float64: *acc.LastPaymentAmount, Valid: true}
	}
	if acc.MinimumPaymentAmount != nil {
		row.MinimumPaymentAmount = bigquery.NullFloat64{Float64: *acc.MinimumPaymentAmount, Valid: true}
	}
	if acc.IsOverdue != nil {
		row.IsOverdue = bigquery.NullBool{Bool: *acc.IsOverdue, Valid: true}
	}
	return row
}

func transactionFromRow(r *TransactionRow) domain.Transaction {
	tx := domain.Transaction{
		ID:             r.TransactionID,
		UserID:         r.UserID,
		AccountID:      r.AccountID,
		Date:           r.Date.In(time.UTC),
		Amount:         r.Amount,
		Currency:       r.Currency,
		MerchantName:   r.MerchantName,
		Category:       r.Category,
		Pending:        r.Pending,
		PaymentChannel: r.PaymentChannel,
		LocationCity:   r.LocationCity.StringVal,
		LocationRegion: r.LocationRegion.StringVal,
	}
	if r.AuthorizedDate.Valid {
		d := r.AuthorizedDate.Date.In(time.UTC)
		tx.AuthorizedDate = &d
	}
	return tx
}

func rowFromTransaction(tx domain.Transaction) *TransactionRow {
	row := &TransactionRow{
		TransactionID:  tx.ID,
		UserID:         tx.UserID,
		AccountID:      tx.AccountID,
		Date:           civil.DateOf(tx.Date),
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		MerchantName:   tx.MerchantName,
		Category:       tx.Category,
		Pending:        tx.Pending,
		PaymentChannel: tx.PaymentChannel,
	}
	if tx.AuthorizedDate != nil {
		row.AuthorizedDate = bigquery.NullDate{Date: civil.DateOf(*tx.AuthorizedDate), Valid: true}
	}
	if tx.LocationCity != "" {
		row.LocationCity = bigquery.NullString{StringVal: tx.LocationCity, Valid: true}
	}
	if tx.LocationRegion != "" {
		row.LocationRegion = bigquery.NullString{StringVal: tx.LocationRegion, Valid: true}
	}
	return row
}

func rowFromSignalSet(set domain.SignalSet) (*SignalSetRow, error) {
	payload, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("marshaling signal set: %w", err)
	}
	return &SignalSetRow{
		UserID:     set.UserID,
		TimeWindow: string(set.Window),
		Payload:    string(payload),
		ComputedTS: set.ComputedAt,
	}, nil
}

func signalSetFromRow(r *SignalSetRow) (domain.SignalSet, error) {
	var set domain.SignalSet
	if err := json.Unmarshal([]byte(r.Payload), &set); err != nil {
		return domain.SignalSet{}, fmt.Errorf("unmarshaling signal set payload: %w", err)
	}
	return set, nil
}

func rowFromAssignment(a domain.PersonaAssignment) (*AssignmentRow, error) {
	percentages, err := json.Marshal(a.MatchPercentages)
	if err != nil {
		return nil, fmt.Errorf("marshaling match percentages: %w", err)
	}
	return &AssignmentRow{
		UserID:           a.UserID,
		TimeWindow:       string(a.Window),
		Persona:          string(a.Persona),
		CriteriaMet:      a.CriteriaMet,
		MatchPercentages: string(percentages),
		AssignedTS:       a.AssignedAt,
	}, nil
}

func assignmentFromRow(r *AssignmentRow) (domain.PersonaAssignment, error) {
	a := domain.PersonaAssignment{
		UserID:      r.UserID,
		Window:      domain.TimeWindow(r.TimeWindow),
		Persona:     domain.Persona(r.Persona),
		CriteriaMet: r.CriteriaMet,
		AssignedAt:  r.AssignedTS,
	}
	if r.MatchPercentages != "" {
		if err := json.Unmarshal([]byte(r.MatchPercentages), &a.MatchPercentages); err != nil {
			return domain.PersonaAssignment{}, fmt.Errorf("unmarshaling match percentages: %w", err)
		}
	}
	return a, nil
}

func rowFromRecommendation(rec domain.Recommendation) *RecommendationRow {
	return &RecommendationRow{
		RecommendationID: rec.RecommendationID,
		UserID:           rec.UserID,
		TimeWindow:       string(rec.Window),
		Type:             string(rec.Type),
		ContentID:        rec.ContentID,
		Title:            rec.Title,
		Rationale:        rec.Rationale,
		ShownTS:          rec.ShownAt,
		Superseded:       rec.Superseded,
	}
}

func recommendationFromRow(r *RecommendationRow) domain.Recommendation {
	return domain.Recommendation{
		RecommendationID: r.RecommendationID,
		UserID:           r.UserID,
		Window:           domain.TimeWindow(r.TimeWindow),
		Type:             domain.RecommendationType(r.Type),
		ContentID:        r.ContentID,
		Title:            r.Title,
		Rationale:        r.Rationale,
		ShownAt:          r.ShownTS,
		Superseded:       r.Superseded,
	}
}

func rowFromTrace(trace domain.DecisionTrace) (*TraceRow, error) {
	signals, err := json.Marshal(trace.SignalsUsed)
	if err != nil {
		return nil, fmt.Errorf("marshaling signal citations: %w", err)
	}
	return &TraceRow{
		RecommendationID: trace.RecommendationID,
		UserID:           trace.UserID,
		TimeWindow:       string(trace.Window),
		PersonaMatch:     string(trace.PersonaMatch),
		SignalsUsed:      string(signals),
		TemplateID:       trace.TemplateID,
		TemplateFallback: trace.TemplateFallback,
		ToneCheck:        trace.Guardrails.ToneCheck,
		EligibilityCheck: trace.Guardrails.EligibilityCheck,
		TS:               trace.Timestamp,
	}, nil
}

func traceFromRow(r *TraceRow) (domain.DecisionTrace, error) {
	trace := domain.DecisionTrace{
		RecommendationID: r.RecommendationID,
		UserID:           r.UserID,
		Window:           domain.TimeWindow(r.TimeWindow),
		PersonaMatch:     domain.Persona(r.PersonaMatch),
		TemplateID:       r.TemplateID,
		TemplateFallback: r.TemplateFallback,
		Guardrails: domain.GuardrailOutcome{
			ToneCheck:        r.ToneCheck,
			EligibilityCheck: r.EligibilityCheck,
		},
		Timestamp: r.TS,
	}
	if r.SignalsUsed != "" {
		if err := json.Unmarshal([]byte(r.SignalsUsed), &trace.SignalsUsed); err != nil {
			return domain.DecisionTrace{}, fmt.Errorf("unmarshaling signal citations: %w", err)
		}
	}
	return trace, nil
}
