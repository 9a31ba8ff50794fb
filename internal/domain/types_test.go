package domain

import (
	"testing"
	"time"
)

func TestWindowCutoff(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		window TimeWindow
		want   time.Time
	}{
		{Window30d, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{Window90d, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		{Window180d, time.Date(2023, 12, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := tt.window.Cutoff(asOf); !got.Equal(tt.want) {
			t.Errorf("Cutoff(%s) = %s, want %s", tt.window, got, tt.want)
		}
	}
}

func TestWindowValid(t *testing.T) {
	for _, w := range AllWindows() {
		if !w.Valid() {
			t.Errorf("window %s should be valid", w)
		}
	}
	if TimeWindow("7d").Valid() {
		t.Error("7d should not be valid")
	}
}

func TestStateFor(t *testing.T) {
	tests := []struct {
		name                               string
		hasSignals, hasAssignment, hasRecs bool
		want                               PipelineState
	}{
		{"nothing", false, false, false, StateNoData},
		{"signals only", true, false, false, StateSignalsComputed},
		{"through assignment", true, true, false, StatePersonaAssigned},
		{"complete", true, true, true, StateRecommendationsGenerated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StateFor(tt.hasSignals, tt.hasAssignment, tt.hasRecs)
			if got != tt.want {
				t.Errorf("StateFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEffectiveDate(t *testing.T) {
	posted := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	authorized := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)

	tx := Transaction{Date: posted}
	if !tx.EffectiveDate().Equal(posted) {
		t.Errorf("EffectiveDate without authorized date = %s, want %s", tx.EffectiveDate(), posted)
	}

	tx.AuthorizedDate = &authorized
	if !tx.EffectiveDate().Equal(authorized) {
		t.Errorf("EffectiveDate with authorized date = %s, want %s", tx.EffectiveDate(), authorized)
	}
}
