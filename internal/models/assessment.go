// internal/models/assessment.go
package models

import "time"

// RiskCategory identifies one of the seven weighted risk dimensions.
type RiskCategory string

const (
	CategoryAttendance RiskCategory = "attendance"
	CategoryAcademic   RiskCategory = "academic"
	CategoryFinancial  RiskCategory = "financial"
	CategoryBehavioral RiskCategory = "behavioral"
	CategoryHealth     RiskCategory = "health"
	CategoryDistance   RiskCategory = "distance"
	CategoryFamily     RiskCategory = "family"
)

// RiskLevel is the ordinal classification of a total risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// RiskTrend describes how a student's risk moved since the prior assessment.
type RiskTrend string

const (
	TrendImproving RiskTrend = "Improving"
	TrendStable    RiskTrend = "Stable"
	TrendWorsening RiskTrend = "Worsening"
)

// Prediction methods.
const (
	MethodModel     = "model"
	MethodRuleBased = "rule-based"
)

// SubScore is one weighted category score with its explanatory details.
type SubScore struct {
	Category RiskCategory           `json:"category"`
	Score    float64                `json:"score"`
	Weight   float64                `json:"weight"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Weighted returns the sub-score's contribution to the total risk score.
func (s SubScore) Weighted() float64 {
	return s.Score * s.Weight
}

// PredictionFactor is one named driver behind a dropout prediction.
type PredictionFactor struct {
	Category    RiskCategory `json:"category"`
	Impact      float64      `json:"impact"`
	Description string       `json:"description"`
}

// DropoutPrediction is the probability estimate attached to an assessment.
type DropoutPrediction struct {
	Probability float64            `json:"probability"`
	Confidence  float64            `json:"confidence"`
	Method      string             `json:"method"`
	Factors     []PredictionFactor `json:"factors,omitempty"`
}

// Recommendation is one suggested follow-up action for school staff.
type Recommendation struct {
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// RiskAssessment is one immutable risk calculation for a student. History is
// append-only: trend fields are derived by reading the prior record, never by
// updating it.
type RiskAssessment struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"studentId"`
	AcademicYear string    `json:"academicYear"`
	CalculatedAt time.Time `json:"calculatedAt"`

	SubScores      []SubScore `json:"subScores"`
	TotalRiskScore float64    `json:"totalRiskScore"`
	RiskLevel      RiskLevel  `json:"riskLevel"`

	Prediction      *DropoutPrediction `json:"dropoutPrediction,omitempty"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`

	PreviousRiskScore  *float64  `json:"previousRiskScore,omitempty"`
	RiskTrend          RiskTrend `json:"riskTrend,omitempty"`
	ChangeFromPrevious *float64  `json:"changeFromPrevious,omitempty"`
}

// SubScoreFor returns the sub-score for a category, if present.
func (a *RiskAssessment) SubScoreFor(cat RiskCategory) (SubScore, bool) {
	for _, s := range a.SubScores {
		if s.Category == cat {
			return s, true
		}
	}
	return SubScore{}, false
}
