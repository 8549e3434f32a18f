// internal/engine/features/features.go

// Package features maps student profiles into the fixed-order normalized
// vector shared by the classifier and the similarity estimator.
package features

import (
	"math"

	"edurisk-engine/internal/models"
)

// Dim is the feature vector length.
const Dim = 14

// Feature indices, in wire order. The order is part of the model parameter
// contract: changing it invalidates persisted weights.
const (
	IdxAttendance = iota
	IdxFailedSubjects
	IdxConsecutiveAbsences
	IdxLateArrivals
	IdxDistance
	IdxIncomeTier
	IdxParentalEducation
	IdxHealthIssues
	IdxBehavioralIssues
	IdxFamilyDistress
	IdxEconomicDistress
	IdxPriorDropouts
	IdxSiblings
	IdxAcademic
)

// Per-feature normalization maximums.
const (
	maxFailedSubjects      = 10.0
	maxConsecutiveAbsences = 30.0
	maxLateArrivals        = 20.0
	maxDistanceKm          = 50.0
	maxIncomeTier          = 3.0
	maxEducationTier       = 6.0
	maxPriorDropouts       = 3.0
	maxSiblings            = 8.0
)

// Vector is a fixed-order feature encoding with every component in [0,1].
type Vector [Dim]float64

// Extract normalizes a profile into a feature vector. Missing inputs are
// zero after normalization, never an error; that shows up downstream as
// reduced completeness, not as a failure.
func Extract(p *models.StudentProfile) Vector {
	var v Vector
	if p == nil {
		return v
	}

	v[IdxAttendance] = clamp01(p.AttendancePct / 100)
	v[IdxFailedSubjects] = clamp01(float64(p.FailedSubjects) / maxFailedSubjects)
	v[IdxConsecutiveAbsences] = clamp01(float64(p.ConsecutiveAbsences) / maxConsecutiveAbsences)
	v[IdxLateArrivals] = clamp01(float64(p.LateArrivals) / maxLateArrivals)
	v[IdxDistance] = clamp01(p.DistanceKm / maxDistanceKm)
	v[IdxIncomeTier] = clamp01(float64(p.IncomeTier) / maxIncomeTier)
	v[IdxParentalEducation] = clamp01(avgEducation(p) / maxEducationTier)
	v[IdxHealthIssues] = boolFeature(p.HealthIssues)
	v[IdxBehavioralIssues] = boolFeature(p.BehavioralIssues)
	v[IdxFamilyDistress] = boolFeature(p.FamilyDistress)
	v[IdxEconomicDistress] = boolFeature(p.EconomicDistress)
	v[IdxPriorDropouts] = clamp01(float64(p.PriorDropoutCount) / maxPriorDropouts)
	v[IdxSiblings] = clamp01(float64(p.SiblingCount) / maxSiblings)
	v[IdxAcademic] = clamp01(p.AcademicPct / 100)

	return v
}

// Completeness returns the fraction of non-zero features, in [0,1]. It is
// the data-completeness proxy behind prediction confidence.
func Completeness(v Vector) float64 {
	nonZero := 0
	for _, f := range v {
		if f != 0 {
			nonZero++
		}
	}
	return float64(nonZero) / float64(Dim)
}

// Similarity is the normalized inverse Euclidean distance between two
// vectors: 1 means identical, 0 maximally distant.
func Similarity(a, b Vector) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	// All components sit in [0,1], so the largest possible distance is
	// sqrt(Dim).
	maxDistance := math.Sqrt(float64(Dim))
	return 1 - math.Sqrt(sum)/maxDistance
}

func avgEducation(p *models.StudentProfile) float64 {
	return (float64(p.FatherEducation) + float64(p.MotherEducation)) / 2
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
