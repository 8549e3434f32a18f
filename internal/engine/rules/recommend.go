// internal/engine/rules/recommend.go
package rules

import (
	"sort"

	"edurisk-engine/internal/models"
)

// actionTemplate is the staff-facing follow-up for one risk category.
type actionTemplate struct {
	action      string
	description string
}

var actionTemplates = map[models.RiskCategory]actionTemplate{
	models.CategoryAttendance: {
		action:      "schedule-attendance-review",
		description: "Contact guardians and schedule an attendance review meeting",
	},
	models.CategoryAcademic: {
		action:      "arrange-remedial-classes",
		description: "Enroll the student in remedial classes for failing subjects",
	},
	models.CategoryFinancial: {
		action:      "refer-financial-aid",
		description: "Refer the family to the scholarship and fee-waiver program",
	},
	models.CategoryBehavioral: {
		action:      "assign-counselor",
		description: "Assign a school counselor for regular behavioral sessions",
	},
	models.CategoryHealth: {
		action:      "refer-health-checkup",
		description: "Arrange a health checkup and follow up on medical needs",
	},
	models.CategoryDistance: {
		action:      "arrange-transport-support",
		description: "Evaluate school transport or nearby-school transfer options",
	},
	models.CategoryFamily: {
		action:      "schedule-home-visit",
		description: "Schedule a home visit with the family welfare coordinator",
	},
}

// Recommend generates ordered follow-up actions from the highest weighted
// contributors. Only sub-scores above the actionable cutoff produce one.
func Recommend(subScores []models.SubScore, actionableCutoff float64) []models.Recommendation {
	ranked := RankByContribution(subScores)

	var recs []models.Recommendation
	for _, sub := range ranked {
		if sub.Score <= actionableCutoff {
			continue
		}
		tmpl, ok := actionTemplates[sub.Category]
		if !ok {
			continue
		}
		recs = append(recs, models.Recommendation{
			Priority:    priorityFor(sub.Score),
			Category:    string(sub.Category),
			Action:      tmpl.action,
			Description: tmpl.description,
		})
	}
	return recs
}

// RankByContribution sorts sub-scores by score x weight descending, ties
// broken by category name for determinism.
func RankByContribution(subScores []models.SubScore) []models.SubScore {
	ranked := make([]models.SubScore, len(subScores))
	copy(ranked, subScores)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := ranked[i].Weighted(), ranked[j].Weighted()
		if wi != wj {
			return wi > wj
		}
		return ranked[i].Category < ranked[j].Category
	})
	return ranked
}

// TopFactors converts the leading contributors into prediction factors.
func TopFactors(subScores []models.SubScore, n int) []models.PredictionFactor {
	ranked := RankByContribution(subScores)
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	factors := make([]models.PredictionFactor, 0, len(ranked))
	for _, sub := range ranked {
		tmpl := actionTemplates[sub.Category]
		factors = append(factors, models.PredictionFactor{
			Category:    sub.Category,
			Impact:      sub.Weighted(),
			Description: tmpl.description,
		})
	}
	return factors
}

// DropoutProbability is the deterministic rule-based dropout estimate: the
// same weighted aggregation as the total risk score, clamped to [0,100]. It
// backs the model wrapper's fallback path.
func DropoutProbability(subScores []models.SubScore) float64 {
	total := 0.0
	for _, sub := range subScores {
		total += sub.Weighted()
	}
	return clamp(total, 0, 100)
}

func priorityFor(score float64) string {
	switch {
	case score >= 85:
		return "urgent"
	case score >= 70:
		return "high"
	default:
		return "medium"
	}
}
