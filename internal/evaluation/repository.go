// Package evaluation scores parcels behind an evaluation cache and records
// every scoring call.
package evaluation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/parcel"
)

// Repository stores evaluation records.
type Repository interface {
	// FindValidCache returns the newest scored record (one without a source
	// evaluation) for identifier with equal answers created at or after
	// notBefore, or sentinel.ErrNotFound.
	FindValidCache(ctx context.Context, identifier string, answers parcel.UserAnswers, notBefore time.Time) (*models.Record, error)
	Save(ctx context.Context, rec *models.Record) error
	// Get returns sentinel.ErrNotFound for an unknown id.
	Get(ctx context.Context, id uuid.UUID) (*models.Record, error)
}
