package evaluation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mutafriches/internal/enrichment/pipeline"
	"mutafriches/internal/evaluation/metrics"
	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
	"mutafriches/pkg/platform/sentinel"
	"mutafriches/pkg/requestcontext"
)

const (
	DefaultCacheTTL       = 24 * time.Hour
	defaultPersistTimeout = 5 * time.Second
)

// Cache results reported to metrics.
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheBypass = "bypass"
)

// Scorer ranks the seven usages for a parcel. Implemented by *mutability.Scorer.
type Scorer interface {
	Score(p parcel.Parcel) []mutability.UsageResult
}

// Estimator rates how complete a parcel's data is.
type Estimator interface {
	Estimate(p parcel.Parcel) mutability.Reliability
}

// Enricher builds a parcel from its identifier.
type Enricher interface {
	Enrich(ctx context.Context, identifier string) (*pipeline.Result, error)
}

// IdentifierEvaluation pairs an enrichment with the evaluation of its parcel.
type IdentifierEvaluation struct {
	Enrichment *pipeline.Result   `json:"enrichment"`
	Evaluation *models.Evaluation `json:"evaluation"`
}

// Service scores parcels, reusing recent results for identical inputs.
// Records are written in the background; Wait blocks until they are done.
type Service struct {
	repo      Repository
	scorer    Scorer
	estimator Estimator
	enricher  Enricher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	cacheTTL       time.Duration
	persistTimeout time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*models.Record
	writes  sync.WaitGroup
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEnricher enables EvaluateIdentifier.
func WithEnricher(e Enricher) Option {
	return func(s *Service) { s.enricher = e }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithPersistTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// WithClock overrides the request time used for record timestamps and cache
// expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, scorer Scorer, estimator Estimator, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		scorer:         scorer,
		estimator:      estimator,
		logger:         slog.Default(),
		cacheTTL:       DefaultCacheTTL,
		persistTimeout: defaultPersistTimeout,
		pending:        make(map[uuid.UUID]*models.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate scores p with the given answers. When no answer is unknown and an
// identical evaluation was scored within the cache TTL, its results are
// reused and the new record points at it.
func (s *Service) Evaluate(ctx context.Context, p parcel.Parcel, answers parcel.UserAnswers) (*models.Evaluation, error) {
	identifier, err := parcel.NormalizeIdentifier(p.Identifier)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid parcel identifier")
	}
	p = p.WithAnswers(answers)
	p.Identifier = identifier
	if err := p.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid parcel")
	}

	now := s.clock(ctx).UTC()
	rec := &models.Record{
		ID:         uuid.New(),
		Identifier: identifier,
		Parcel:     p,
		Answers:    answers,
		CreatedAt:  now,
	}

	result := cacheBypass
	var source *models.Record
	if !answers.HasUnknown() {
		result = cacheMiss
		source = s.lookup(ctx, identifier, answers, now.Add(-s.cacheTTL))
	}

	if source != nil {
		result = cacheHit
		sourceID := source.ID
		rec.Results = models.CloneResults(source.Results)
		rec.Reliability = source.Reliability
		rec.SourceEvaluationID = &sourceID
	} else {
		start := time.Now()
		rec.Results = s.scorer.Score(p)
		rec.Reliability = s.estimator.Estimate(p)
		s.metrics.ObserveScoring(time.Since(start))
	}
	s.metrics.IncrementEvaluation(result)

	s.logger.InfoContext(ctx, "parcel evaluated",
		"identifier", identifier,
		"evaluation_id", rec.ID,
		"cache", result,
	)

	s.persist(ctx, rec)
	return models.NewEvaluation(rec), nil
}

// EvaluateIdentifier enriches the identifier and evaluates the resulting
// parcel.
func (s *Service) EvaluateIdentifier(ctx context.Context, identifier string, answers parcel.UserAnswers) (*IdentifierEvaluation, error) {
	if s.enricher == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "enrichment is not configured")
	}
	res, err := s.enricher.Enrich(ctx, identifier)
	if err != nil {
		return nil, err
	}
	eval, err := s.Evaluate(ctx, *res.Parcel, answers)
	if err != nil {
		return nil, err
	}
	return &IdentifierEvaluation{Enrichment: res, Evaluation: eval}, nil
}

// Get returns a stored record, including one whose write is still pending.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	s.mu.Lock()
	rec, ok := s.pending[id]
	s.mu.Unlock()
	if ok {
		return rec.Clone(), nil
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "evaluation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evaluation")
	}
	return rec, nil
}

// Wait blocks until every queued record write has finished or ctx is done.
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

func (s *Service) clock(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

// lookup finds a scored record to reuse. Repository errors count as a miss.
func (s *Service) lookup(ctx context.Context, identifier string, answers parcel.UserAnswers, notBefore time.Time) *models.Record {
	if rec := s.pendingMatch(identifier, answers, notBefore); rec != nil {
		return rec
	}

	rec, err := s.repo.FindValidCache(ctx, identifier, answers, notBefore)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "evaluation cache lookup failed",
				"identifier", identifier,
				"error", err,
			)
		}
		return nil
	}
	if rec.Identifier != identifier || !rec.Answers.Equal(answers) || rec.Answers.HasUnknown() {
		return nil
	}
	return rec
}

func (s *Service) pendingMatch(identifier string, answers parcel.UserAnswers, notBefore time.Time) *models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newest *models.Record
	for _, rec := range s.pending {
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
	return newest
}

// persist writes rec in the background. Failures are logged and counted.
func (s *Service) persist(ctx context.Context, rec *models.Record) {
	s.mu.Lock()
	s.pending[rec.ID] = rec
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		defer func() {
			s.mu.Lock()
			delete(s.pending, rec.ID)
			s.mu.Unlock()
		}()

		saveCtx, cancel := context.WithTimeout(ctx, s.persistTimeout)
		defer cancel()
		if err := s.repo.Save(saveCtx, rec); err != nil {
			s.metrics.IncrementPersistFailure()
			s.logger.ErrorContext(ctx, "failed to persist evaluation",
				"identifier", rec.Identifier,
				"evaluation_id", rec.ID,
				"error", err,
			)
		}
	}()
}
