// internal/common/validation/profile.go
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"edurisk-engine/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// profileSchema is the structural contract for raw student profile documents
// coming from the records service. Semantic range checks beyond what a JSON
// schema can express live in ValidateProfile.
var profileSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"studentId":           map[string]interface{}{"type": "string", "minLength": 1},
		"attendancePct":       map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100},
		"failedSubjects":      map[string]interface{}{"type": "integer", "minimum": 0},
		"consecutiveAbsences": map[string]interface{}{"type": "integer", "minimum": 0},
		"lateArrivals":        map[string]interface{}{"type": "integer", "minimum": 0},
		"distanceKm":          map[string]interface{}{"type": "number", "minimum": 0},
		"transportMode":       map[string]interface{}{"type": "string"},
		"incomeTier":          map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 3},
		"fatherEducation":     map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 6},
		"motherEducation":     map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 6},
		"healthIssues":        map[string]interface{}{"type": "boolean"},
		"behavioralIssues":    map[string]interface{}{"type": "boolean"},
		"familyDistress":      map[string]interface{}{"type": "boolean"},
		"economicDistress":    map[string]interface{}{"type": "boolean"},
		"priorDropoutCount":   map[string]interface{}{"type": "integer", "minimum": 0},
		"siblingCount":        map[string]interface{}{"type": "integer", "minimum": 0},
		"academicPct":         map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100},
	},
	"required": []string{"studentId"},
}

// DecodeProfile validates a raw profile document against the schema and
// decodes it. Optional fields may be absent; present fields must be in range.
func DecodeProfile(raw []byte) (*models.StudentProfile, error) {
	schemaLoader := gojsonschema.NewGoLoader(profileSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("profile validation failed: %s", strings.Join(errs, "; "))
	}

	var profile models.StudentProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

// ValidateProfile applies the semantic range checks a decoded profile must
// satisfy before scoring. Missing (zero) optional values are legal; values
// outside their domain are not.
func ValidateProfile(p *models.StudentProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if p.StudentID == "" {
		return fmt.Errorf("studentId is required")
	}
	if p.AttendancePct < 0 || p.AttendancePct > 100 {
		return fmt.Errorf("attendancePct %.2f outside [0,100]", p.AttendancePct)
	}
	if p.AcademicPct < 0 || p.AcademicPct > 100 {
		return fmt.Errorf("academicPct %.2f outside [0,100]", p.AcademicPct)
	}
	if p.DistanceKm < 0 {
		return fmt.Errorf("distanceKm %.2f is negative", p.DistanceKm)
	}
	if p.FailedSubjects < 0 || p.ConsecutiveAbsences < 0 || p.LateArrivals < 0 {
		return fmt.Errorf("attendance counters must be non-negative")
	}
	if p.IncomeTier < models.IncomeBelowPoverty || p.IncomeTier > models.IncomeHigh {
		return fmt.Errorf("incomeTier %d outside [0,3]", p.IncomeTier)
	}
	if p.FatherEducation < models.EducationNone || p.FatherEducation > models.EducationPostgraduate {
		return fmt.Errorf("fatherEducation %d outside [0,6]", p.FatherEducation)
	}
	if p.MotherEducation < models.EducationNone || p.MotherEducation > models.EducationPostgraduate {
		return fmt.Errorf("motherEducation %d outside [0,6]", p.MotherEducation)
	}
	if p.PriorDropoutCount < 0 || p.SiblingCount < 0 {
		return fmt.Errorf("priorDropoutCount and siblingCount must be non-negative")
	}
	return nil
}
