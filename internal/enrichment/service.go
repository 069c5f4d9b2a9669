// Package enrichment fronts the enrichment pipeline with an optional parcel
// cache and exposes the audit trail of past runs.
package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mutafriches/internal/enrichment/audit"
	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/enrichment/pipeline"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
	"mutafriches/pkg/platform/sentinel"
)

const (
	defaultCacheWriteTimeout = 2 * time.Second

	DefaultLogLimit = 20
	MaxLogLimit     = 100
)

// Runner runs one enrichment. Implemented by *pipeline.Pipeline.
type Runner interface {
	Enrich(ctx context.Context, identifier string) (*pipeline.Result, error)
}

// Cache stores enrichment results by identifier. Get returns
// sentinel.ErrCacheMiss when nothing is stored.
type Cache interface {
	Get(ctx context.Context, identifier string) (*pipeline.Result, error)
	Set(ctx context.Context, identifier string, res *pipeline.Result) error
}

// CacheObserver counts cache lookups by result: hit, miss or error.
type CacheObserver interface {
	IncrementCacheLookup(result string)
}

// Service is safe for concurrent use.
type Service struct {
	runner            Runner
	cache             Cache
	observer          CacheObserver
	logs              audit.Reader
	logger            *slog.Logger
	cacheWriteTimeout time.Duration

	writes sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables result caching.
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithCacheObserver(o CacheObserver) Option { return func(s *Service) { s.observer = o } }

// WithAuditReader serves Logs from r.
func WithAuditReader(r audit.Reader) Option { return func(s *Service) { s.logs = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithCacheWriteTimeout bounds each background cache write.
func WithCacheWriteTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cacheWriteTimeout = d
		}
	}
}

func NewService(runner Runner, opts ...Option) *Service {
	s := &Service{
		runner:            runner,
		logger:            slog.Default(),
		cacheWriteTimeout: defaultCacheWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich returns a cached result when one exists, otherwise runs the pipeline.
// Cache failures are logged and never returned. FAILED runs are not cached.
// The cache write happens in the background; Wait drains pending writes.
func (s *Service) Enrich(ctx context.Context, identifier string) (*pipeline.Result, error) {
	id, err := parcel.NormalizeIdentifier(identifier)
	if err != nil || s.cache == nil {
		return s.runner.Enrich(ctx, identifier)
	}

	cached, err := s.cache.Get(ctx, id)
	switch {
	case err == nil:
		s.observe("hit")
		return cached, nil
	case errors.Is(err, sentinel.ErrCacheMiss):
		s.observe("miss")
	default:
		s.observe("error")
		s.logger.WarnContext(ctx, "enrichment cache read failed",
			"identifier", id,
			"error", err,
		)
	}

	res, err := s.runner.Enrich(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != models.StatusFailed {
		s.store(ctx, id, res)
	}
	return res, nil
}

// Logs returns the most recent audit logs of a parcel, newest first. A limit
// outside 1..MaxLogLimit falls back to DefaultLogLimit.
func (s *Service) Logs(ctx context.Context, identifier string, limit int) ([]audit.Log, error) {
	id, err := parcel.NormalizeIdentifier(identifier)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid parcel identifier")
	}
	if s.logs == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit trail not configured")
	}
	if limit <= 0 || limit > MaxLogLimit {
		limit = DefaultLogLimit
	}

	logs, err := s.logs.ListByIdentifier(ctx, id, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list enrichment logs")
	}
	if logs == nil {
		logs = []audit.Log{}
	}
	return logs, nil
}

// Wait blocks until background cache writes finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) store(ctx context.Context, id string, res *pipeline.Result) {
	ctx = context.WithoutCancel(ctx)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		setCtx, cancel := context.WithTimeout(ctx, s.cacheWriteTimeout)
		defer cancel()
		if err := s.cache.Set(setCtx, id, res); err != nil {
			s.logger.WarnContext(ctx, "enrichment cache write failed",
				"identifier", id,
				"error", err,
			)
		}
	}()
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.IncrementCacheLookup(result)
	}
}
