// internal/engine/rules/thresholds.go
package rules

import (
	"edurisk-engine/internal/common/config"
	"edurisk-engine/internal/models"
)

// Category weights. Fixed constants summing to 1.0; they are part of the
// scoring contract and are never mutated per assessment.
const (
	WeightAttendance = 0.25
	WeightAcademic   = 0.25
	WeightFinancial  = 0.15
	WeightBehavioral = 0.10
	WeightHealth     = 0.10
	WeightDistance   = 0.10
	WeightFamily     = 0.05
)

// Weights maps each category to its fixed weight.
var Weights = map[models.RiskCategory]float64{
	models.CategoryAttendance: WeightAttendance,
	models.CategoryAcademic:   WeightAcademic,
	models.CategoryFinancial:  WeightFinancial,
	models.CategoryBehavioral: WeightBehavioral,
	models.CategoryHealth:     WeightHealth,
	models.CategoryDistance:   WeightDistance,
	models.CategoryFamily:     WeightFamily,
}

// Thresholds is the single configuration table behind the rule-based scorer.
// Every raw cutoff the rules consult lives here so tuning never touches the
// algorithm.
type Thresholds struct {
	// Level cutoffs: lower bounds of Medium, High and Critical. This table
	// is the canonical source for risk levels across the whole platform.
	Levels config.RiskLevelCutoffs

	// Sub-scores above this value are worth acting on and generate
	// recommendations.
	ActionableCutoff float64

	Attendance AttendanceRules
	Academic   AcademicRules
	Financial  FinancialRules
	Behavioral BehavioralRules
	Health     HealthRules
	Distance   DistanceRules
	Family     FamilyRules
}

type AttendanceRules struct {
	CriticalPct float64 // at or below: maximal sub-score
	SeverePct   float64
	WarnPct     float64
	WatchPct    float64

	SevereAbsenceRun int // consecutive absences
	WarnAbsenceRun   int
	WatchAbsenceRun  int

	SevereLateCount int
	WarnLateCount   int
}

type AcademicRules struct {
	CriticalPct float64 // at or below: maximal sub-score
	SeverePct   float64
	WarnPct     float64
	WatchPct    float64

	SevereFailedSubjects int
	WarnFailedSubjects   int
}

type FinancialRules struct {
	DistressPenalty float64 // active economic-distress flag
}

type BehavioralRules struct {
	IssuesPenalty       float64 // active behavioral-issues flag
	PriorAttemptPenalty float64 // per prior dropout attempt
	SwingPct            float64 // negative academic swing vs prior assessment
	SwingPenalty        float64
}

type HealthRules struct {
	IssuesPenalty float64
}

type DistanceRules struct {
	SevereKm float64
	FarKm    float64
	WarnKm   float64
	WatchKm  float64
}

type FamilyRules struct {
	DistressPenalty     float64
	LowEducationAvg     float64 // parental education average at or below
	LowEducationPenalty float64
	ManySiblings        int
	SiblingPenalty      float64
}

// DefaultThresholds returns the tuned production table. Level cutoffs and
// the actionable cutoff are taken from engine configuration.
func DefaultThresholds(cfg config.EngineConfig) Thresholds {
	return Thresholds{
		Levels:           cfg.RiskLevels,
		ActionableCutoff: cfg.ActionableCutoff,

		Attendance: AttendanceRules{
			CriticalPct:      50,
			SeverePct:        65,
			WarnPct:          75,
			WatchPct:         85,
			SevereAbsenceRun: 15,
			WarnAbsenceRun:   7,
			WatchAbsenceRun:  3,
			SevereLateCount:  10,
			WarnLateCount:    5,
		},
		Academic: AcademicRules{
			CriticalPct:          35,
			SeverePct:            50,
			WarnPct:              60,
			WatchPct:             75,
			SevereFailedSubjects: 4,
			WarnFailedSubjects:   2,
		},
		Financial: FinancialRules{
			DistressPenalty: 40,
		},
		Behavioral: BehavioralRules{
			IssuesPenalty:       70,
			PriorAttemptPenalty: 30,
			SwingPct:            10,
			SwingPenalty:        25,
		},
		Health: HealthRules{
			IssuesPenalty: 70,
		},
		Distance: DistanceRules{
			SevereKm: 30,
			FarKm:    20,
			WarnKm:   10,
			WatchKm:  5,
		},
		Family: FamilyRules{
			DistressPenalty:     80,
			LowEducationAvg:     1.5,
			LowEducationPenalty: 20,
			ManySiblings:        5,
			SiblingPenalty:      10,
		},
	}
}

// Classify maps a total risk score onto the canonical level scale.
func (t Thresholds) Classify(score float64) models.RiskLevel {
	switch {
	case score >= t.Levels.Critical:
		return models.RiskCritical
	case score >= t.Levels.High:
		return models.RiskHigh
	case score >= t.Levels.Medium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
