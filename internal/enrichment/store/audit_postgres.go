// Package store holds the persistence adapters of the enrichment context.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"mutafriches/internal/enrichment/audit"
)

// AuditPostgres persists enrichment logs in the enrichment_logs table.
type AuditPostgres struct {
	db *sql.DB
}

var (
	_ audit.Repository = (*AuditPostgres)(nil)
	_ audit.Reader     = (*AuditPostgres)(nil)
)

func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

const insertLog = `
INSERT INTO enrichment_logs
	(id, identifier, status, sources_used, sources_failed, missing_fields,
	 duration_ms, error, request_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (s *AuditPostgres) Save(ctx context.Context, l audit.Log) error {
	_, err := s.db.ExecContext(ctx, insertLog,
		l.ID,
		l.Identifier,
		l.Status,
		pq.Array(nonNil(l.SourcesUsed)),
		pq.Array(nonNil(l.SourcesFailed)),
		pq.Array(nonNil(l.MissingFields)),
		l.DurationMs,
		nullString(l.Error),
		nullString(l.RequestID),
		l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert enrichment log: %w", err)
	}
	return nil
}

const selectLogsByIdentifier = `
SELECT id, identifier, status, sources_used, sources_failed, missing_fields,
	duration_ms, error, request_id, created_at
FROM enrichment_logs
WHERE identifier = $1
ORDER BY created_at DESC
LIMIT $2`

// ListByIdentifier returns the latest logs of one parcel, newest first.
func (s *AuditPostgres) ListByIdentifier(ctx context.Context, identifier string, limit int) ([]audit.Log, error) {
	rows, err := s.db.QueryContext(ctx, selectLogsByIdentifier, identifier, limit)
	if err != nil {
		return nil, fmt.Errorf("list enrichment logs: %w", err)
	}
	defer rows.Close()

	var logs []audit.Log
	for rows.Next() {
		var (
			l             audit.Log
			used, failed  pq.StringArray
			missing       pq.StringArray
			errMsg, reqID sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Identifier, &l.Status, &used, &failed, &missing,
			&l.DurationMs, &errMsg, &reqID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan enrichment log: %w", err)
		}
		l.SourcesUsed = []string(used)
		l.SourcesFailed = []string(failed)
		l.MissingFields = []string(missing)
		l.Error = errMsg.String
		l.RequestID = reqID.String
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrichment logs: %w", err)
	}
	return logs, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
