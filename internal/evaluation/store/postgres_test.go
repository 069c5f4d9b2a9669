package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/platform/sentinel"
)

var evaluationColumns = []string{
	"id", "identifier", "parcel", "answers", "results", "reliability",
	"source_evaluation_id", "created_at",
}

func newPostgresWithMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestPostgresSave(t *testing.T) {
	repo, mock := newPostgresWithMock(t)
	answers := parcel.UserAnswers{Ownership: parcel.Known(parcel.OwnershipPrivate)}
	rec := record(time.Now().UTC(), answers)
	source := uuid.New()
	rec.SourceEvaluationID = &source

	mock.ExpectExec("INSERT INTO evaluations").
		WithArgs(rec.ID, identifier, models.AnswersKey(answers),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			uuid.NullUUID{UUID: source, Valid: true}, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveError(t *testing.T) {
	repo, mock := newPostgresWithMock(t)
	mock.ExpectExec("INSERT INTO evaluations").WillReturnError(errors.New("connection reset"))

	err := repo.Save(context.Background(), record(time.Now(), parcel.UserAnswers{}))
	assert.ErrorContains(t, err, "insert evaluation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetNotFound(t *testing.T) {
	repo, mock := newPostgresWithMock(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT id, identifier, parcel").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(evaluationColumns))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindValidCache(t *testing.T) {
	repo, mock := newPostgresWithMock(t)
	id := uuid.New()
	at := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	notBefore := at.Add(-24 * time.Hour)
	answers := parcel.UserAnswers{WaterConnection: parcel.Known(true)}

	p := parcel.New(identifier)
	p.SiteArea = parcel.Known(1200.0)
	results := []mutability.UsageResult{{Usage: mutability.UsageResidential, Rank: 1, Index: 72.5}}
	reliability := mutability.Reliability{Note: 8, Label: "Bonne"}

	rows := sqlmock.NewRows(evaluationColumns).AddRow(
		id.String(), identifier,
		mustJSON(t, p), mustJSON(t, answers), mustJSON(t, results), mustJSON(t, reliability),
		nil, at,
	)
	mock.ExpectQuery("source_evaluation_id IS NULL").
		WithArgs(identifier, models.AnswersKey(answers), notBefore).
		WillReturnRows(rows)

	got, err := repo.FindValidCache(context.Background(), identifier, answers, notBefore)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.True(t, got.Answers.Equal(answers))
	assert.Equal(t, results, got.Results)
	assert.Equal(t, reliability, got.Reliability)
	assert.Nil(t, got.SourceEvaluationID)
	assert.Equal(t, parcel.Known(1200.0), got.Parcel.SiteArea)
	assert.Equal(t, at, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindValidCacheMiss(t *testing.T) {
	repo, mock := newPostgresWithMock(t)
	mock.ExpectQuery("source_evaluation_id IS NULL").
		WillReturnRows(sqlmock.NewRows(evaluationColumns))

	_, err := repo.FindValidCache(context.Background(), identifier, parcel.UserAnswers{}, time.Now())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
