// internal/store/students.go
package store

import (
	"context"
	"database/sql"

	"edurisk-engine/internal/common/database"
	"edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/common/validation"
	"edurisk-engine/internal/models"
)

// StudentStore reads the student-records tables this engine consumes.
// Everything here is read-only: profiles, completed interventions and
// historical outcomes are owned by the records service.
type StudentStore struct {
	db *database.PostgresClient
}

func NewStudentStore(db *database.PostgresClient) *StudentStore {
	return &StudentStore{db: db}
}

// Profile returns a student's attribute set, or (nil, nil) when unknown.
func (s *StudentStore) Profile(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	const query = `
		SELECT student_id, attendance_pct, failed_subjects, consecutive_absences,
		       late_arrivals, distance_km, transport_mode, income_tier,
		       father_education, mother_education, health_issues, behavioral_issues,
		       family_distress, economic_distress, prior_dropout_count,
		       sibling_count, academic_pct
		FROM student_profiles
		WHERE student_id = $1`

	var p models.StudentProfile
	err := s.db.QueryRow(ctx, query, studentID).Scan(
		&p.StudentID, &p.AttendancePct, &p.FailedSubjects, &p.ConsecutiveAbsences,
		&p.LateArrivals, &p.DistanceKm, &p.TransportMode, &p.IncomeTier,
		&p.FatherEducation, &p.MotherEducation, &p.HealthIssues, &p.BehavioralIssues,
		&p.FamilyDistress, &p.EconomicDistress, &p.PriorDropoutCount,
		&p.SiblingCount, &p.AcademicPct,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceError("query student profile", err)
	}
	return &p, nil
}

// StudentIDs lists the enrolled student population for the scheduled sweep.
func (s *StudentStore) StudentIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT student_id FROM student_profiles ORDER BY student_id`)
	if err != nil {
		return nil, errors.NewPersistenceError("query student ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewPersistenceError("scan student id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterate student ids", err)
	}
	return ids, nil
}

// CompletedByType returns completed interventions of one type with known
// outcomes. The profile snapshot taken at intervention time is stored as a
// JSON document and validated on the way out.
func (s *StudentStore) CompletedByType(ctx context.Context, interventionType string) ([]models.CompletedIntervention, error) {
	const query = `
		SELECT student_id, intervention_type, outcome, completed_at, profile_snapshot
		FROM completed_interventions
		WHERE intervention_type = $1 AND outcome IS NOT NULL`

	rows, err := s.db.Query(ctx, query, interventionType)
	if err != nil {
		return nil, errors.NewPersistenceError("query completed interventions", err)
	}
	defer rows.Close()

	var out []models.CompletedIntervention
	for rows.Next() {
		var c models.CompletedIntervention
		var snapshot []byte
		if err := rows.Scan(&c.StudentID, &c.Type, &c.Outcome, &c.CompletedAt, &snapshot); err != nil {
			return nil, errors.NewPersistenceError("scan completed intervention", err)
		}
		profile, err := validation.DecodeProfile(snapshot)
		if err != nil {
			// A corrupt snapshot should not sink the whole estimate.
			continue
		}
		c.Profile = *profile
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterate completed interventions", err)
	}
	return out, nil
}

// TrainingOutcomes returns (profile, outcome) pairs across the population
// for model training and evaluation.
func (s *StudentStore) TrainingOutcomes(ctx context.Context) ([]models.OutcomeSample, error) {
	const query = `
		SELECT profile_snapshot, is_active
		FROM student_outcomes`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, errors.NewPersistenceError("query training outcomes", err)
	}
	defer rows.Close()

	var out []models.OutcomeSample
	for rows.Next() {
		var snapshot []byte
		var sample models.OutcomeSample
		if err := rows.Scan(&snapshot, &sample.IsActive); err != nil {
			return nil, errors.NewPersistenceError("scan training outcome", err)
		}
		profile, err := validation.DecodeProfile(snapshot)
		if err != nil {
			continue
		}
		sample.Profile = *profile
		out = append(out, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterate training outcomes", err)
	}
	return out, nil
}
