// internal/engine/rules/scorer.go
package rules

import (
	"fmt"
	"time"

	"edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/common/validation"
	"edurisk-engine/internal/models"

	"github.com/google/uuid"
)

// Scorer is the deterministic weighted-factor risk scorer. It has no
// external dependencies and always succeeds on valid input.
type Scorer struct {
	thresholds Thresholds
	logger     logger.Logger
}

func NewScorer(t Thresholds, log logger.Logger) *Scorer {
	return &Scorer{
		thresholds: t,
		logger:     log.WithFields(map[string]interface{}{"component": "rule-scorer"}),
	}
}

// Thresholds exposes the scorer's configuration table.
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score produces a rule-based assessment for the profile, without the
// dropout prediction sub-object. prev, when non-nil, is the student's
// immediately prior assessment and only feeds the behavioral swing rule.
func (s *Scorer) Score(p *models.StudentProfile, prev *models.RiskAssessment) (*models.RiskAssessment, error) {
	if err := validation.ValidateProfile(p); err != nil {
		id := ""
		if p != nil {
			id = p.StudentID
		}
		return nil, errors.NewInvalidProfileError(id, err.Error())
	}

	subScores := []models.SubScore{
		s.scoreAttendance(p),
		s.scoreAcademic(p),
		s.scoreFinancial(p),
		s.scoreBehavioral(p, prev),
		s.scoreHealth(p),
		s.scoreDistance(p),
		s.scoreFamily(p),
	}

	total := 0.0
	for _, sub := range subScores {
		total += sub.Weighted()
	}
	total = clamp(total, 0, 100)

	level := s.thresholds.Classify(total)
	now := time.Now().UTC()

	assessment := &models.RiskAssessment{
		ID:              uuid.NewString(),
		StudentID:       p.StudentID,
		AcademicYear:    AcademicYear(now),
		CalculatedAt:    now,
		SubScores:       subScores,
		TotalRiskScore:  total,
		RiskLevel:       level,
		Recommendations: Recommend(subScores, s.thresholds.ActionableCutoff),
	}

	s.logger.Debug("risk score calculated", map[string]interface{}{
		"studentId": p.StudentID,
		"score":     total,
		"level":     level,
	})

	return assessment, nil
}

func (s *Scorer) scoreAttendance(p *models.StudentProfile) models.SubScore {
	t := s.thresholds.Attendance
	score := 0.0

	switch {
	case p.AttendancePct <= t.CriticalPct:
		score += 100
	case p.AttendancePct < t.SeverePct:
		score += 70
	case p.AttendancePct < t.WarnPct:
		score += 45
	case p.AttendancePct < t.WatchPct:
		score += 20
	}

	switch {
	case p.ConsecutiveAbsences >= t.SevereAbsenceRun:
		score += 30
	case p.ConsecutiveAbsences >= t.WarnAbsenceRun:
		score += 15
	case p.ConsecutiveAbsences >= t.WatchAbsenceRun:
		score += 5
	}

	switch {
	case p.LateArrivals >= t.SevereLateCount:
		score += 10
	case p.LateArrivals >= t.WarnLateCount:
		score += 5
	}

	return models.SubScore{
		Category: models.CategoryAttendance,
		Score:    clamp(score, 0, 100),
		Weight:   WeightAttendance,
		Details: map[string]interface{}{
			"attendancePct":       p.AttendancePct,
			"consecutiveAbsences": p.ConsecutiveAbsences,
			"lateArrivals":        p.LateArrivals,
		},
	}
}

func (s *Scorer) scoreAcademic(p *models.StudentProfile) models.SubScore {
	t := s.thresholds.Academic
	score := 0.0

	switch {
	case p.AcademicPct <= t.CriticalPct:
		score += 100
	case p.AcademicPct < t.SeverePct:
		score += 70
	case p.AcademicPct < t.WarnPct:
		score += 45
	case p.AcademicPct < t.WatchPct:
		score += 20
	}

	switch {
	case p.FailedSubjects >= t.SevereFailedSubjects:
		score += 40
	case p.FailedSubjects >= t.WarnFailedSubjects:
		score += 25
	case p.FailedSubjects == 1:
		score += 10
	}

	return models.SubScore{
		Category: models.CategoryAcademic,
		Score:    clamp(score, 0, 100),
		Weight:   WeightAcademic,
		Details: map[string]interface{}{
			"academicPct":    p.AcademicPct,
			"failedSubjects": p.FailedSubjects,
		},
	}
}

func (s *Scorer) scoreFinancial(p *models.StudentProfile) models.SubScore {
	t := s.thresholds.Financial
	score := 0.0

	switch p.IncomeTier {
	case models.IncomeBelowPoverty:
		score += 100
	case models.IncomeLow:
		score += 60
	case models.IncomeMiddle:
		score += 25
	}

	if p.EconomicDistress {
		score += t.DistressPenalty
	}

	return models.SubScore{
		Category: models.CategoryFinancial,
		Score:    clamp(score, 0, 100),
		Weight:   WeightFinancial,
		Details: map[string]interface{}{
			"incomeTier":       int(p.IncomeTier),
			"economicDistress": p.EconomicDistress,
		},
	}
}

func (s *Scorer) scoreBehavioral(p *models.StudentProfile, prev *models.RiskAssessment) models.SubScore {
	t := s.thresholds.Behavioral
	score := 0.0

	if p.BehavioralIssues {
		score += t.IssuesPenalty
	}
	if p.PriorDropoutCount > 0 {
		score += float64(p.PriorDropoutCount) * t.PriorAttemptPenalty
	}

	details := map[string]interface{}{
		"behavioralIssues":  p.BehavioralIssues,
		"priorDropoutCount": p.PriorDropoutCount,
	}

	// A sharp academic decline since the last assessment counts as a
	// behavioral warning sign even without a flag on the profile.
	if swing, ok := academicSwing(p, prev); ok {
		details["academicSwingPct"] = swing
		if swing < -t.SwingPct {
			score += t.SwingPenalty
		}
	}

	return models.SubScore{
		Category: models.CategoryBehavioral,
		Score:    clamp(score, 0, 100),
		Weight:   WeightBehavioral,
		Details:  details,
	}
}

func (s *Scorer) scoreHealth(p *models.StudentProfile) models.SubScore {
	score := 0.0
	if p.HealthIssues {
		score += s.thresholds.Health.IssuesPenalty
	}

	return models.SubScore{
		Category: models.CategoryHealth,
		Score:    clamp(score, 0, 100),
		Weight:   WeightHealth,
		Details: map[string]interface{}{
			"healthIssues": p.HealthIssues,
		},
	}
}

func (s *Scorer) scoreDistance(p *models.StudentProfile) models.SubScore {
	t := s.thresholds.Distance
	score := 0.0

	switch {
	case p.DistanceKm >= t.SevereKm:
		score += 90
	case p.DistanceKm >= t.FarKm:
		score += 65
	case p.DistanceKm >= t.WarnKm:
		score += 40
	case p.DistanceKm >= t.WatchKm:
		score += 20
	}

	return models.SubScore{
		Category: models.CategoryDistance,
		Score:    clamp(score, 0, 100),
		Weight:   WeightDistance,
		Details: map[string]interface{}{
			"distanceKm":    p.DistanceKm,
			"transportMode": p.TransportMode,
		},
	}
}

func (s *Scorer) scoreFamily(p *models.StudentProfile) models.SubScore {
	t := s.thresholds.Family
	score := 0.0

	if p.FamilyDistress {
		score += t.DistressPenalty
	}

	eduAvg := (float64(p.FatherEducation) + float64(p.MotherEducation)) / 2
	if eduAvg <= t.LowEducationAvg {
		score += t.LowEducationPenalty
	}

	if p.SiblingCount >= t.ManySiblings {
		score += t.SiblingPenalty
	}

	return models.SubScore{
		Category: models.CategoryFamily,
		Score:    clamp(score, 0, 100),
		Weight:   WeightFamily,
		Details: map[string]interface{}{
			"familyDistress":       p.FamilyDistress,
			"parentalEducationAvg": eduAvg,
			"siblingCount":         p.SiblingCount,
		},
	}
}

// academicSwing returns the percentage-point change in academic performance
// since the previous assessment, read from its academic sub-score details.
func academicSwing(p *models.StudentProfile, prev *models.RiskAssessment) (float64, bool) {
	if prev == nil {
		return 0, false
	}
	sub, ok := prev.SubScoreFor(models.CategoryAcademic)
	if !ok || sub.Details == nil {
		return 0, false
	}
	raw, ok := sub.Details["academicPct"]
	if !ok {
		return 0, false
	}
	prevPct, ok := toFloat(raw)
	if !ok {
		return 0, false
	}
	return p.AcademicPct - prevPct, true
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// AcademicYear formats the school year containing ts, rolling over July 1.
func AcademicYear(ts time.Time) string {
	year := ts.Year()
	if ts.Month() < time.July {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
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
