package domain

import "time"

// TimeWindow is a lookback period over which signals are computed.
// Each window is computed independently of the others.
type TimeWindow string

const (
	Window30d  TimeWindow = "30d"
	Window90d  TimeWindow = "90d"
	Window180d TimeWindow = "180d"
)

// AllWindows returns the supported windows in ascending lookback order.
func AllWindows() []TimeWindow {
	return []TimeWindow{Window30d, Window90d, Window180d}
}

// Days returns the lookback length of the window in days, or 0 for an
// unknown window.
func (w TimeWindow) Days() int {
	switch w {
	case Window30d:
		return 30
	case Window90d:
		return 90
	case Window180d:
		return 180
	default:
		return 0
	}
}

// Valid reports whether w is one of the supported windows.
func (w TimeWindow) Valid() bool {
	return w.Days() > 0
}

// Cutoff returns the start of the window relative to asOf.
func (w TimeWindow) Cutoff(asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, -w.Days())
}

// Persona is one of the mutually exclusive classification labels assigned
// per user per time window.
type Persona string

const (
	PersonaHighUtilization   Persona = "high_utilization"
	PersonaVariableIncome    Persona = "variable_income"
	PersonaSubscriptionHeavy Persona = "subscription_heavy"
	PersonaSavingsBuilder    Persona = "savings_builder"
	PersonaGeneralWellness   Persona = "general_wellness"
)

// AllPersonas returns the persona labels in priority order (highest first).
func AllPersonas() []Persona {
	return []Persona{
		PersonaHighUtilization,
		PersonaSubscriptionHeavy,
		PersonaVariableIncome,
		PersonaSavingsBuilder,
		PersonaGeneralWellness,
	}
}

// Valid reports whether p is a known persona label.
func (p Persona) Valid() bool {
	switch p {
	case PersonaHighUtilization, PersonaVariableIncome, PersonaSubscriptionHeavy,
		PersonaSavingsBuilder, PersonaGeneralWellness:
		return true
	default:
		return false
	}
}

// SignalType identifies one of the four behavioral signal kinds.
type SignalType string

const (
	SignalSubscriptions     SignalType = "subscriptions"
	SignalCreditUtilization SignalType = "credit_utilization"
	SignalSavingsBehavior   SignalType = "savings_behavior"
	SignalIncomeStability   SignalType = "income_stability"
)

// PipelineState describes how far the pipeline has progressed for one
// (user, window) pair. States advance monotonically; recomputation from any
// state with the same source data reproduces the same downstream state.
type PipelineState string

const (
	StateNoData                   PipelineState = "no_data"
	StateSignalsComputed          PipelineState = "signals_computed"
	StatePersonaAssigned          PipelineState = "persona_assigned"
	StateRecommendationsGenerated PipelineState = "recommendations_generated"
)

// StateFor derives the pipeline state for one (user, window) from which
// records exist. The pipeline writes in stage order, so presence of a later
// record implies the earlier stages ran.
func StateFor(hasSignals, hasAssignment, hasRecommendations bool) PipelineState {
	switch {
	case hasRecommendations:
		return StateRecommendationsGenerated
	case hasAssignment:
		return StatePersonaAssigned
	case hasSignals:
		return StateSignalsComputed
	default:
		return StateNoData
	}
}
