// internal/engine/history/trend.go

// Package history derives risk trends by comparing an assessment against the
// student's immediately prior one. Assessments are append-only; the previous
// record is read, never updated.
package history

import "edurisk-engine/internal/models"

// Tracker attaches trend information to fresh assessments.
type Tracker struct {
	tolerance float64 // score points either side counted as stable
}

func NewTracker(tolerance float64) *Tracker {
	return &Tracker{tolerance: tolerance}
}

// AttachTrend annotates current with trend fields derived from previous.
// With no previous assessment the trend fields stay unset. Returns current
// for chaining.
func (t *Tracker) AttachTrend(current, previous *models.RiskAssessment) *models.RiskAssessment {
	if current == nil || previous == nil {
		return current
	}

	prevScore := previous.TotalRiskScore
	current.PreviousRiskScore = &prevScore

	// Positive change means the risk went down.
	if prevScore != 0 {
		change := (prevScore - current.TotalRiskScore) / prevScore * 100
		current.ChangeFromPrevious = &change
	}

	delta := current.TotalRiskScore - prevScore
	switch {
	case delta < -t.tolerance:
		current.RiskTrend = models.TrendImproving
	case delta > t.tolerance:
		current.RiskTrend = models.TrendWorsening
	default:
		current.RiskTrend = models.TrendStable
	}

	return current
}
