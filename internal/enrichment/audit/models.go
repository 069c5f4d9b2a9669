// Package audit records one summary per enrichment run, off the request path.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Log summarizes one enrichment run.
type Log struct {
	ID            uuid.UUID `json:"id"`
	Identifier    string    `json:"identifier"`
	Status        string    `json:"status"`
	SourcesUsed   []string  `json:"sourcesUsed"`
	SourcesFailed []string  `json:"sourcesFailed"`
	MissingFields []string  `json:"missingFields"`
	DurationMs    int64     `json:"durationMs"`
	Error         string    `json:"error,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// StatusMandatoryMissing marks runs aborted before any optional stage.
const StatusMandatoryMissing = "MANDATORY_DATA_MISSING"

// Repository persists audit logs. Implementations may be slow or fail; the
// Recorder never lets either reach the caller.
type Repository interface {
	Save(ctx context.Context, log Log) error
}

// Reader lists the most recent logs of one parcel, newest first.
type Reader interface {
	ListByIdentifier(ctx context.Context, identifier string, limit int) ([]Log, error)
}
