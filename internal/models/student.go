// internal/models/student.go
package models

// IncomeTier is an ordinal family income bracket, poorest first.
type IncomeTier int

const (
	IncomeBelowPoverty IncomeTier = iota
	IncomeLow
	IncomeMiddle
	IncomeHigh
)

// EducationTier is an ordinal parental education level from no schooling (0)
// to postgraduate (6).
type EducationTier int

const (
	EducationNone EducationTier = iota
	EducationPrimary
	EducationMiddleSchool
	EducationSecondary
	EducationHigherSecondary
	EducationGraduate
	EducationPostgraduate
)

// StudentProfile is the read-only attribute set this engine consumes.
// It is owned by the student-records service; the engine never writes it.
type StudentProfile struct {
	StudentID           string        `json:"studentId"`
	AttendancePct       float64       `json:"attendancePct"`
	FailedSubjects      int           `json:"failedSubjects"`
	ConsecutiveAbsences int           `json:"consecutiveAbsences"`
	LateArrivals        int           `json:"lateArrivals"`
	DistanceKm          float64       `json:"distanceKm"`
	TransportMode       string        `json:"transportMode"`
	IncomeTier          IncomeTier    `json:"incomeTier"`
	FatherEducation     EducationTier `json:"fatherEducation"`
	MotherEducation     EducationTier `json:"motherEducation"`
	HealthIssues        bool          `json:"healthIssues"`
	BehavioralIssues    bool          `json:"behavioralIssues"`
	FamilyDistress      bool          `json:"familyDistress"`
	EconomicDistress    bool          `json:"economicDistress"`
	PriorDropoutCount   int           `json:"priorDropoutCount"`
	SiblingCount        int           `json:"siblingCount"`
	AcademicPct         float64       `json:"academicPct"`
}
