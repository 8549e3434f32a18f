// internal/engine/intervention/estimator.go

// Package intervention estimates how effective a candidate intervention type
// is likely to be for a student, by weighing outcomes of historically
// completed interventions on similar students.
package intervention

import (
	"fmt"

	"edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/common/validation"
	"edurisk-engine/internal/engine/features"
	"edurisk-engine/internal/models"
)

// Outcome scores on the 0-100 effectiveness scale.
const (
	scoreSuccessful = 90
	scorePartial    = 60
	scoreFailed     = 20
)

// Neutral result returned when history is too thin to say anything.
const (
	neutralEffectiveness = 50
	neutralConfidence    = 30
)

const insufficientDataNote = "Insufficient historical data for this intervention type; estimate is a neutral default"

// Estimator computes similarity-weighted effectiveness estimates.
type Estimator struct {
	similarityThreshold float64
	logger              logger.Logger
}

func NewEstimator(similarityThreshold float64, log logger.Logger) *Estimator {
	return &Estimator{
		similarityThreshold: similarityThreshold,
		logger:              log.WithFields(map[string]interface{}{"component": "intervention-estimator"}),
	}
}

// EstimateEffectiveness weighs outcomes of same-type completed interventions
// by feature similarity to the candidate student. Zero usable history is a
// degraded-but-successful result, never an error.
func (e *Estimator) EstimateEffectiveness(
	profile *models.StudentProfile,
	interventionType string,
	history []models.CompletedIntervention,
) (*models.InterventionEstimate, error) {
	if err := validation.ValidateProfile(profile); err != nil {
		id := ""
		if profile != nil {
			id = profile.StudentID
		}
		return nil, errors.NewInvalidProfileError(id, err.Error())
	}

	candidate := features.Extract(profile)

	weightedSum := 0.0
	similaritySum := 0.0
	matches := 0

	for _, h := range history {
		if h.Type != interventionType {
			continue
		}
		outcome, known := outcomeScore(h.Outcome)
		if !known {
			continue
		}

		similarity := features.Similarity(candidate, features.Extract(&h.Profile))
		if similarity <= e.similarityThreshold {
			continue
		}

		weightedSum += similarity * outcome
		similaritySum += similarity
		matches++
	}

	if matches == 0 {
		return &models.InterventionEstimate{
			StudentID:        profile.StudentID,
			InterventionType: interventionType,
			Effectiveness:    neutralEffectiveness,
			Confidence:       neutralConfidence,
			SimilarCaseCount: 0,
			Recommendation:   insufficientDataNote,
		}, nil
	}

	effectiveness := clamp(weightedSum/similaritySum, 0, 100)

	// Confidence grows with corroborating cases, capped at 90: a
	// similarity vote is never a sure thing.
	confidence := clamp(30+float64(matches)*10, 0, 90)

	estimate := &models.InterventionEstimate{
		StudentID:        profile.StudentID,
		InterventionType: interventionType,
		Effectiveness:    effectiveness,
		Confidence:       confidence,
		SimilarCaseCount: matches,
		Recommendation:   recommendationFor(interventionType, effectiveness, matches),
	}

	e.logger.Debug("intervention effectiveness estimated", map[string]interface{}{
		"studentId":     profile.StudentID,
		"type":          interventionType,
		"effectiveness": effectiveness,
		"cases":         matches,
	})

	return estimate, nil
}

func outcomeScore(outcome models.InterventionOutcome) (float64, bool) {
	switch outcome {
	case models.OutcomeSuccessful:
		return scoreSuccessful, true
	case models.OutcomePartiallySuccessful:
		return scorePartial, true
	case models.OutcomeNotSuccessful:
		return scoreFailed, true
	default:
		return 0, false
	}
}

func recommendationFor(interventionType string, effectiveness float64, cases int) string {
	switch {
	case effectiveness >= 75:
		return fmt.Sprintf("%q worked well for %d similar students; recommended", interventionType, cases)
	case effectiveness >= 50:
		return fmt.Sprintf("%q showed mixed results for %d similar students; consider combining with other support", interventionType, cases)
	default:
		return fmt.Sprintf("%q was rarely effective for %d similar students; consider an alternative", interventionType, cases)
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
