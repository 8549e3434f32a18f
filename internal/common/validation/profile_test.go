// internal/common/validation/profile_test.go
package validation

import (
	"testing"

	"edurisk-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProfile(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "full document",
			raw: `{
				"studentId": "s1",
				"attendancePct": 72.5,
				"failedSubjects": 2,
				"distanceKm": 12,
				"transportMode": "bus",
				"incomeTier": 1,
				"fatherEducation": 3,
				"motherEducation": 2,
				"economicDistress": true,
				"siblingCount": 3,
				"academicPct": 58
			}`,
		},
		{
			name: "minimal document",
			raw:  `{"studentId": "s2"}`,
		},
		{
			name:    "missing student id",
			raw:     `{"attendancePct": 72.5}`,
			wantErr: true,
		},
		{
			name:    "attendance above range",
			raw:     `{"studentId": "s3", "attendancePct": 130}`,
			wantErr: true,
		},
		{
			name:    "negative distance",
			raw:     `{"studentId": "s4", "distanceKm": -2}`,
			wantErr: true,
		},
		{
			name:    "income tier out of range",
			raw:     `{"studentId": "s5", "incomeTier": 9}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			raw:     `{"studentId": "s6", "failedSubjects": "two"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `{broken`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeProfile([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.StudentID)
		})
	}
}

func TestDecodeProfile_FieldMapping(t *testing.T) {
	p, err := DecodeProfile([]byte(`{
		"studentId": "s1",
		"attendancePct": 72.5,
		"incomeTier": 1,
		"fatherEducation": 3,
		"behavioralIssues": true
	}`))
	require.NoError(t, err)

	assert.Equal(t, "s1", p.StudentID)
	assert.Equal(t, 72.5, p.AttendancePct)
	assert.Equal(t, models.IncomeLow, p.IncomeTier)
	assert.Equal(t, models.EducationSecondary, p.FatherEducation)
	assert.True(t, p.BehavioralIssues)
}

func TestValidateProfile(t *testing.T) {
	valid := &models.StudentProfile{StudentID: "s1", AttendancePct: 80, AcademicPct: 70}

	tests := []struct {
		name    string
		mutate  func(p *models.StudentProfile)
		wantErr bool
	}{
		{"valid", func(p *models.StudentProfile) {}, false},
		{"attendance low edge", func(p *models.StudentProfile) { p.AttendancePct = 0 }, false},
		{"attendance high edge", func(p *models.StudentProfile) { p.AttendancePct = 100 }, false},
		{"attendance above range", func(p *models.StudentProfile) { p.AttendancePct = 100.1 }, true},
		{"academic below range", func(p *models.StudentProfile) { p.AcademicPct = -1 }, true},
		{"negative distance", func(p *models.StudentProfile) { p.DistanceKm = -0.5 }, true},
		{"negative failed subjects", func(p *models.StudentProfile) { p.FailedSubjects = -1 }, true},
		{"income tier above range", func(p *models.StudentProfile) { p.IncomeTier = 4 }, true},
		{"education above range", func(p *models.StudentProfile) { p.MotherEducation = 7 }, true},
		{"negative siblings", func(p *models.StudentProfile) { p.SiblingCount = -2 }, true},
		{"missing student id", func(p *models.StudentProfile) { p.StudentID = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := *valid
			tt.mutate(&p)
			err := ValidateProfile(&p)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateProfile_Nil(t *testing.T) {
	assert.Error(t, ValidateProfile(nil))
}
