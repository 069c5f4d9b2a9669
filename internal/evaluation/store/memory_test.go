package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/platform/sentinel"
)

const identifier = "25056000HZ0346"

func record(at time.Time, answers parcel.UserAnswers) *models.Record {
	return &models.Record{
		ID:         uuid.New(),
		Identifier: identifier,
		Parcel:     *parcel.New(identifier),
		Answers:    answers,
		CreatedAt:  at,
	}
}

func TestInMemoryFindValidCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	answers := parcel.UserAnswers{WaterConnection: parcel.Known(true)}

	t.Run("returns the newest scored record", func(t *testing.T) {
		repo := NewInMemory()
		old := record(now.Add(-2*time.Hour), answers)
		recent := record(now.Add(-time.Hour), answers)
		require.NoError(t, repo.Save(ctx, old))
		require.NoError(t, repo.Save(ctx, recent))

		got, err := repo.FindValidCache(ctx, identifier, answers, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, recent.ID, got.ID)
	})

	t.Run("skips records older than the cutoff", func(t *testing.T) {
		repo := NewInMemory()
		require.NoError(t, repo.Save(ctx, record(now.Add(-25*time.Hour), answers)))

		_, err := repo.FindValidCache(ctx, identifier, answers, now.Add(-24*time.Hour))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("skips records that reused another evaluation", func(t *testing.T) {
		repo := NewInMemory()
		rec := record(now, answers)
		source := uuid.New()
		rec.SourceEvaluationID = &source
		require.NoError(t, repo.Save(ctx, rec))

		_, err := repo.FindValidCache(ctx, identifier, answers, now.Add(-time.Hour))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("requires equal answers", func(t *testing.T) {
		repo := NewInMemory()
		require.NoError(t, repo.Save(ctx, record(now, answers)))

		other := parcel.UserAnswers{WaterConnection: parcel.Known(false)}
		_, err := repo.FindValidCache(ctx, identifier, other, now.Add(-time.Hour))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemoryGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemory()
	rec := record(time.Now(), parcel.UserAnswers{})
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, 1, repo.Len())

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
