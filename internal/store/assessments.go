// internal/store/assessments.go

// Package store holds the Postgres and Redis collaborators around the
// engine: append-only assessment history, student/outcome feeds and model
// parameter persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"edurisk-engine/internal/common/database"
	"edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/models"
)

const createAssessmentsTable = `
CREATE TABLE IF NOT EXISTS risk_assessments (
	id            TEXT PRIMARY KEY,
	student_id    TEXT NOT NULL,
	academic_year TEXT NOT NULL,
	calculated_at TIMESTAMPTZ NOT NULL,
	total_score   DOUBLE PRECISION NOT NULL,
	risk_level    TEXT NOT NULL,
	payload       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_risk_assessments_student
	ON risk_assessments (student_id, calculated_at DESC);`

// AssessmentStore persists risk assessments. Records are append-only:
// inserts only, no updates.
type AssessmentStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewAssessmentStore(db *database.PostgresClient, log logger.Logger) *AssessmentStore {
	return &AssessmentStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "assessment-store"}),
	}
}

// EnsureSchema creates the assessments table when missing.
func (s *AssessmentStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createAssessmentsTable); err != nil {
		return errors.NewPersistenceError("ensure assessments schema", err)
	}
	return nil
}

// Save appends one assessment. The full record round-trips through the
// payload column; the scalar columns exist for indexing and reporting.
func (s *AssessmentStore) Save(ctx context.Context, a *models.RiskAssessment) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return errors.NewPersistenceError("marshal assessment", err)
	}

	const query = `
		INSERT INTO risk_assessments (id, student_id, academic_year, calculated_at, total_score, risk_level, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := s.db.Exec(ctx, query,
		a.ID, a.StudentID, a.AcademicYear, a.CalculatedAt, a.TotalRiskScore, string(a.RiskLevel), payload,
	); err != nil {
		return errors.NewPersistenceError("insert assessment", err)
	}
	return nil
}

// LatestAssessment returns the most recent record for a student, or
// (nil, nil) when the student has no history yet.
func (s *AssessmentStore) LatestAssessment(ctx context.Context, studentID string) (*models.RiskAssessment, error) {
	const query = `
		SELECT payload FROM risk_assessments
		WHERE student_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1`

	var payload []byte
	err := s.db.QueryRow(ctx, query, studentID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceError("query latest assessment", err)
	}

	var assessment models.RiskAssessment
	if err := json.Unmarshal(payload, &assessment); err != nil {
		return nil, errors.NewPersistenceError("decode assessment", fmt.Errorf("studentId %s: %w", studentID, err))
	}
	return &assessment, nil
}
