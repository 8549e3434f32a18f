// internal/store/params.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"edurisk-engine/internal/common/database"
	"edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/engine/model"
)

const createParamsTable = `
CREATE TABLE IF NOT EXISTS model_parameters (
	id         BIGSERIAL PRIMARY KEY,
	version    TEXT NOT NULL,
	trained_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);`

// ModelParamStore persists fitted classifier parameters. Each training run
// inserts a fresh row; Load returns the newest one.
type ModelParamStore struct {
	db *database.PostgresClient
}

func NewModelParamStore(db *database.PostgresClient) *ModelParamStore {
	return &ModelParamStore{db: db}
}

// EnsureSchema creates the parameters table when missing.
func (s *ModelParamStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createParamsTable); err != nil {
		return errors.NewPersistenceError("ensure model parameters schema", err)
	}
	return nil
}

// Load returns the most recently trained parameters, or (nil, nil) when no
// model has been trained yet.
func (s *ModelParamStore) Load(ctx context.Context) (*model.Parameters, error) {
	const query = `
		SELECT payload FROM model_parameters
		ORDER BY trained_at DESC, id DESC
		LIMIT 1`

	var payload []byte
	err := s.db.QueryRow(ctx, query).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceError("query model parameters", err)
	}

	var params model.Parameters
	if err := json.Unmarshal(payload, &params); err != nil {
		return nil, errors.NewPersistenceError("decode model parameters", err)
	}
	return &params, nil
}

// Save appends newly fitted parameters.
func (s *ModelParamStore) Save(ctx context.Context, params *model.Parameters) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return errors.NewPersistenceError("marshal model parameters", err)
	}

	const query = `
		INSERT INTO model_parameters (version, trained_at, payload)
		VALUES ($1, $2, $3)`

	if _, err := s.db.Exec(ctx, query, params.Version, params.TrainedAt, payload); err != nil {
		return errors.NewPersistenceError("insert model parameters", err)
	}
	return nil
}
