// Package store holds the evaluation repositories.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/platform/sentinel"
)

// InMemory is a process-local repository for the CLI and tests.
type InMemory struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[uuid.UUID]*models.Record)}
}

func (s *InMemory) Save(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *InMemory) Get(_ context.Context, id uuid.UUID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemory) FindValidCache(_ context.Context, identifier string, answers parcel.UserAnswers, notBefore time.Time) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *models.Record
	for _, rec := range s.records {
		if rec.SourceEvaluationID != nil || rec.Identifier != identifier || !rec.Answers.Equal(answers) {
			continue
		}
		if rec.CreatedAt.Before(notBefore) {
			continue
		}
		if newest == nil || rec.CreatedAt.After(newest.CreatedAt) {
			newest = rec
		}
	}
	if newest == nil {
		return nil, sentinel.ErrNotFound
	}
	return newest.Clone(), nil
}

// Len reports how many records are stored.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
