// internal/models/intervention.go
package models

import "time"

// InterventionOutcome is the recorded result of a completed intervention.
type InterventionOutcome string

const (
	OutcomeSuccessful          InterventionOutcome = "Successful"
	OutcomePartiallySuccessful InterventionOutcome = "Partially Successful"
	OutcomeNotSuccessful       InterventionOutcome = "Not Successful"
)

// CompletedIntervention is a historical intervention with a known outcome,
// paired with the profile snapshot of the student it was applied to.
type CompletedIntervention struct {
	StudentID   string              `json:"studentId"`
	Type        string              `json:"type"`
	Outcome     InterventionOutcome `json:"outcome"`
	CompletedAt time.Time           `json:"completedAt"`
	Profile     StudentProfile      `json:"profile"`
}

// InterventionEstimate is the on-demand effectiveness estimate for a
// candidate intervention type. It is derived, not persisted.
type InterventionEstimate struct {
	StudentID        string  `json:"studentId"`
	InterventionType string  `json:"interventionType"`
	Effectiveness    float64 `json:"effectiveness"`
	Confidence       float64 `json:"confidence"`
	SimilarCaseCount int     `json:"similarCaseCount"`
	Recommendation   string  `json:"recommendation"`
}
