// internal/engine/rules/scorer_test.go
package rules

import (
	"testing"
	"time"

	"edurisk-engine/internal/common/config"
	commonerrors "edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func defaultEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		RiskLevels:          config.RiskLevelCutoffs{Medium: 30, High: 60, Critical: 80},
		ActionableCutoff:    50,
		SimilarityThreshold: 0.6,
		TrendTolerance:      2,
		BatchWorkers:        4,
	}
}

func newTestScorer(t *testing.T) *Scorer {
	return NewScorer(DefaultThresholds(defaultEngineConfig()), logger.NewTestLogger(t))
}

func lowRiskProfile() *models.StudentProfile {
	return &models.StudentProfile{
		StudentID:       "student-low",
		AttendancePct:   95,
		AcademicPct:     88,
		IncomeTier:      models.IncomeHigh,
		FatherEducation: models.EducationGraduate,
		MotherEducation: models.EducationGraduate,
	}
}

func criticalRiskProfile() *models.StudentProfile {
	return &models.StudentProfile{
		StudentID:         "student-critical",
		AttendancePct:     50,
		AcademicPct:       35,
		IncomeTier:        models.IncomeBelowPoverty,
		BehavioralIssues:  true,
		FamilyDistress:    true,
		PriorDropoutCount: 1,
	}
}

func midRiskProfile() *models.StudentProfile {
	return &models.StudentProfile{
		StudentID:           "student-mid",
		AttendancePct:       72,
		AcademicPct:         58,
		FailedSubjects:      2,
		ConsecutiveAbsences: 4,
		LateArrivals:        6,
		DistanceKm:          12,
		IncomeTier:          models.IncomeLow,
		FatherEducation:     models.EducationSecondary,
		MotherEducation:     models.EducationPrimary,
		SiblingCount:        3,
	}
}

// ==========================
// Weight Invariants
// ==========================

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScore_TotalIsWeightedSum(t *testing.T) {
	scorer := newTestScorer(t)

	for _, profile := range []*models.StudentProfile{
		lowRiskProfile(), criticalRiskProfile(), midRiskProfile(),
	} {
		assessment, err := scorer.Score(profile, nil)
		require.NoError(t, err)

		sum := 0.0
		for _, sub := range assessment.SubScores {
			sum += sub.Score * sub.Weight
		}
		assert.InDelta(t, sum, assessment.TotalRiskScore, 1e-6, "studentId %s", profile.StudentID)
		assert.GreaterOrEqual(t, assessment.TotalRiskScore, 0.0)
		assert.LessOrEqual(t, assessment.TotalRiskScore, 100.0)
		assert.Len(t, assessment.SubScores, 7)
	}
}

// ==========================
// Risk Level Boundaries
// ==========================

func TestClassify_ExactBoundaries(t *testing.T) {
	thresholds := DefaultThresholds(defaultEngineConfig())

	tests := []struct {
		score    float64
		expected models.RiskLevel
	}{
		{0, models.RiskLow},
		{29.999, models.RiskLow},
		{30.0, models.RiskMedium},
		{59.999, models.RiskMedium},
		{60.0, models.RiskHigh},
		{79.999, models.RiskHigh},
		{80.0, models.RiskCritical},
		{100, models.RiskCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, thresholds.Classify(tt.score), "score %v", tt.score)
	}
}

// ==========================
// Scenario Tests
// ==========================

func TestScore_LowRiskScenario(t *testing.T) {
	scorer := newTestScorer(t)

	assessment, err := scorer.Score(lowRiskProfile(), nil)
	require.NoError(t, err)

	assert.Equal(t, models.RiskLow, assessment.RiskLevel)
	assert.Less(t, assessment.TotalRiskScore, 30.0)
	assert.Empty(t, assessment.Recommendations)
}

func TestScore_CriticalRiskScenario(t *testing.T) {
	scorer := newTestScorer(t)

	assessment, err := scorer.Score(criticalRiskProfile(), nil)
	require.NoError(t, err)

	assert.Equal(t, models.RiskCritical, assessment.RiskLevel)
	assert.GreaterOrEqual(t, assessment.TotalRiskScore, 80.0)
	assert.NotEmpty(t, assessment.Recommendations)
}

func TestScore_Idempotent(t *testing.T) {
	scorer := newTestScorer(t)
	profile := midRiskProfile()

	first, err := scorer.Score(profile, nil)
	require.NoError(t, err)
	second, err := scorer.Score(profile, nil)
	require.NoError(t, err)

	assert.Equal(t, first.TotalRiskScore, second.TotalRiskScore)
	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.SubScores, second.SubScores)
}

// ==========================
// Input Validation
// ==========================

func TestScore_InvalidProfiles(t *testing.T) {
	scorer := newTestScorer(t)

	tests := []struct {
		name    string
		profile *models.StudentProfile
	}{
		{"nil profile", nil},
		{"missing student id", &models.StudentProfile{AttendancePct: 80}},
		{
			"negative distance",
			&models.StudentProfile{StudentID: "s1", AttendancePct: 80, DistanceKm: -3},
		},
		{
			"attendance above 100",
			&models.StudentProfile{StudentID: "s2", AttendancePct: 130},
		},
		{
			"income tier out of range",
			&models.StudentProfile{StudentID: "s3", AttendancePct: 80, IncomeTier: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scorer.Score(tt.profile, nil)
			require.Error(t, err)
			assert.True(t, commonerrors.IsInvalidProfile(err))
		})
	}
}

// ==========================
// Behavioral Swing Rule
// ==========================

func TestScore_AcademicSwingPenalty(t *testing.T) {
	scorer := newTestScorer(t)

	profile := lowRiskProfile()
	profile.AcademicPct = 70 // down from 88

	prev := &models.RiskAssessment{
		StudentID: profile.StudentID,
		SubScores: []models.SubScore{{
			Category: models.CategoryAcademic,
			Score:    0,
			Weight:   WeightAcademic,
			Details:  map[string]interface{}{"academicPct": 88.0},
		}},
	}

	withSwing, err := scorer.Score(profile, prev)
	require.NoError(t, err)
	withoutSwing, err := scorer.Score(profile, nil)
	require.NoError(t, err)

	swingSub, ok := withSwing.SubScoreFor(models.CategoryBehavioral)
	require.True(t, ok)
	plainSub, _ := withoutSwing.SubScoreFor(models.CategoryBehavioral)

	assert.Equal(t, plainSub.Score+25, swingSub.Score)
	assert.InDelta(t, -18.0, swingSub.Details["academicSwingPct"], 1e-9)
}

// ==========================
// Recommendations
// ==========================

func TestRecommend_OrderingAndCutoff(t *testing.T) {
	subScores := []models.SubScore{
		{Category: models.CategoryAttendance, Score: 90, Weight: WeightAttendance},
		{Category: models.CategoryAcademic, Score: 40, Weight: WeightAcademic},
		{Category: models.CategoryFinancial, Score: 80, Weight: WeightFinancial},
		{Category: models.CategoryBehavioral, Score: 55, Weight: WeightBehavioral},
		{Category: models.CategoryHealth, Score: 0, Weight: WeightHealth},
		{Category: models.CategoryDistance, Score: 0, Weight: WeightDistance},
		{Category: models.CategoryFamily, Score: 100, Weight: WeightFamily},
	}

	recs := Recommend(subScores, 50)

	// academic is below the cutoff, health/distance are zero
	require.Len(t, recs, 4)
	// ordered by score x weight: attendance 22.5, financial 12, behavioral 5.5, family 5
	assert.Equal(t, "attendance", recs[0].Category)
	assert.Equal(t, "financial", recs[1].Category)
	assert.Equal(t, "behavioral", recs[2].Category)
	assert.Equal(t, "family", recs[3].Category)

	assert.Equal(t, "urgent", recs[0].Priority)
	assert.Equal(t, "high", recs[1].Priority)
	assert.Equal(t, "medium", recs[2].Priority)
	assert.Equal(t, "urgent", recs[3].Priority)
}

func TestTopFactors_LimitsToN(t *testing.T) {
	assessment, err := newTestScorer(t).Score(criticalRiskProfile(), nil)
	require.NoError(t, err)

	factors := TopFactors(assessment.SubScores, 5)
	require.Len(t, factors, 5)
	for i := 1; i < len(factors); i++ {
		assert.GreaterOrEqual(t, factors[i-1].Impact, factors[i].Impact)
	}
}

func TestDropoutProbability_Bounds(t *testing.T) {
	scorer := newTestScorer(t)

	for _, p := range []*models.StudentProfile{lowRiskProfile(), criticalRiskProfile(), midRiskProfile()} {
		assessment, err := scorer.Score(p, nil)
		require.NoError(t, err)
		prob := DropoutProbability(assessment.SubScores)
		assert.GreaterOrEqual(t, prob, 0.0)
		assert.LessOrEqual(t, prob, 100.0)
		assert.InDelta(t, assessment.TotalRiskScore, prob, 1e-6)
	}
}

// ==========================
// Academic Year
// ==========================

func TestAcademicYear(t *testing.T) {
	tests := []struct {
		ts       time.Time
		expected string
	}{
		{time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), "2026-27"},
		{time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), "2026-27"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, AcademicYear(tt.ts))
	}
}
