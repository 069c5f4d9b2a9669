package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/platform/sentinel"
)

// Postgres stores evaluation records with JSONB snapshots of their inputs and
// results.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const insertEvaluation = `
INSERT INTO evaluations
	(id, identifier, answers_key, parcel, answers, results, reliability,
	 source_evaluation_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *Postgres) Save(ctx context.Context, rec *models.Record) error {
	parcelJSON, err := json.Marshal(rec.Parcel)
	if err != nil {
		return fmt.Errorf("marshal parcel: %w", err)
	}
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	resultsJSON, err := json.Marshal(rec.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	reliabilityJSON, err := json.Marshal(rec.Reliability)
	if err != nil {
		return fmt.Errorf("marshal reliability: %w", err)
	}

	var source uuid.NullUUID
	if rec.SourceEvaluationID != nil {
		source = uuid.NullUUID{UUID: *rec.SourceEvaluationID, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, insertEvaluation,
		rec.ID,
		rec.Identifier,
		rec.AnswersKey(),
		parcelJSON,
		answersJSON,
		resultsJSON,
		reliabilityJSON,
		source,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

const selectColumns = `
SELECT id, identifier, parcel, answers, results, reliability,
	source_evaluation_id, created_at
FROM evaluations`

func (s *Postgres) Get(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get evaluation %s: %w", id, err)
	}
	return rec, nil
}

const cacheLookup = selectColumns + `
WHERE identifier = $1
	AND answers_key = $2
	AND source_evaluation_id IS NULL
	AND created_at >= $3
ORDER BY created_at DESC
LIMIT 1`

func (s *Postgres) FindValidCache(ctx context.Context, identifier string, answers parcel.UserAnswers, notBefore time.Time) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, cacheLookup, identifier, models.AnswersKey(answers), notBefore)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("find cached evaluation: %w", err)
	}
	return rec, nil
}

func scanRecord(row *sql.Row) (*models.Record, error) {
	var (
		rec                          models.Record
		parcelJSON, answersJSON      []byte
		resultsJSON, reliabilityJSON []byte
		source                       uuid.NullUUID
	)
	err := row.Scan(&rec.ID, &rec.Identifier, &parcelJSON, &answersJSON,
		&resultsJSON, &reliabilityJSON, &source, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(parcelJSON, &rec.Parcel); err != nil {
		return nil, fmt.Errorf("decode parcel: %w", err)
	}
	if err := json.Unmarshal(answersJSON, &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(resultsJSON, &rec.Results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if err := json.Unmarshal(reliabilityJSON, &rec.Reliability); err != nil {
		return nil, fmt.Errorf("decode reliability: %w", err)
	}
	if source.Valid {
		id := source.UUID
		rec.SourceEvaluationID = &id
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
