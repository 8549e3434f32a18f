// internal/engine/history/trend_test.go
package history

import (
	"testing"

	"edurisk-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assessmentWithScore(score float64) *models.RiskAssessment {
	return &models.RiskAssessment{StudentID: "s1", TotalRiskScore: score}
}

func TestAttachTrend_NoPreviousAssessment(t *testing.T) {
	tracker := NewTracker(2)
	current := assessmentWithScore(45)

	result := tracker.AttachTrend(current, nil)

	require.Same(t, current, result)
	assert.Nil(t, result.PreviousRiskScore)
	assert.Nil(t, result.ChangeFromPrevious)
	assert.Empty(t, result.RiskTrend)
}

func TestAttachTrend_Classification(t *testing.T) {
	tests := []struct {
		name           string
		previous       float64
		current        float64
		expectedTrend  models.RiskTrend
		expectedChange float64
	}{
		{"risk dropped well past tolerance", 60, 45, models.TrendImproving, 25},
		{"risk rose well past tolerance", 40, 55, models.TrendWorsening, -37.5},
		{"identical score", 50, 50, models.TrendStable, 0},
		{"drop inside tolerance", 50, 48.5, models.TrendStable, 3},
		{"rise inside tolerance", 50, 51.5, models.TrendStable, -3},
		{"drop exactly at tolerance", 50, 48, models.TrendStable, 4},
		{"drop just past tolerance", 50, 47.9, models.TrendImproving, 4.2},
	}

	tracker := NewTracker(2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tracker.AttachTrend(assessmentWithScore(tt.current), assessmentWithScore(tt.previous))

			require.NotNil(t, result.PreviousRiskScore)
			assert.Equal(t, tt.previous, *result.PreviousRiskScore)
			require.NotNil(t, result.ChangeFromPrevious)
			assert.InDelta(t, tt.expectedChange, *result.ChangeFromPrevious, 1e-9)
			assert.Equal(t, tt.expectedTrend, result.RiskTrend)
		})
	}
}

func TestAttachTrend_ZeroPreviousScore(t *testing.T) {
	tracker := NewTracker(2)

	result := tracker.AttachTrend(assessmentWithScore(10), assessmentWithScore(0))

	require.NotNil(t, result.PreviousRiskScore)
	assert.Equal(t, 0.0, *result.PreviousRiskScore)
	// Percentage change is undefined against a zero baseline.
	assert.Nil(t, result.ChangeFromPrevious)
	assert.Equal(t, models.TrendWorsening, result.RiskTrend)
}
