package evaluation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/enrichment/pipeline"
	evalmodels "mutafriches/internal/evaluation/models"
	"mutafriches/internal/evaluation/store"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
)

const identifier = "25056000HZ0346"

type countingScorer struct {
	inner *mutability.Scorer
	calls atomic.Int32
}

func (c *countingScorer) Score(p parcel.Parcel) []mutability.UsageResult {
	c.calls.Add(1)
	return c.inner.Score(p)
}

type brokenRepo struct{}

func (brokenRepo) FindValidCache(context.Context, string, parcel.UserAnswers, time.Time) (*evalmodels.Record, error) {
	return nil, errors.New("database is down")
}

func (brokenRepo) Save(context.Context, *evalmodels.Record) error {
	return errors.New("database is down")
}

func (brokenRepo) Get(context.Context, uuid.UUID) (*evalmodels.Record, error) {
	return nil, errors.New("database is down")
}

type stubEnricher struct {
	err error
}

func (e stubEnricher) Enrich(_ context.Context, id string) (*pipeline.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	p := parcel.New(id)
	p.SiteArea = parcel.Known(5000.0)
	return &pipeline.Result{Parcel: p, Status: models.StatusSuccess}, nil
}

type ServiceSuite struct {
	suite.Suite
	repo   *store.InMemory
	scorer *countingScorer
	now    time.Time
	svc    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.repo = store.NewInMemory()
	s.scorer = &countingScorer{inner: mutability.NewScorer(mutability.DefaultMatrix())}
	s.now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	s.svc = s.newService(s.repo)
}

func (s *ServiceSuite) newService(repo Repository, opts ...Option) *Service {
	opts = append([]Option{
		WithClock(func() time.Time { return s.now }),
		WithEnricher(stubEnricher{}),
	}, opts...)
	return NewService(repo, s.scorer, mutability.Estimator{}, opts...)
}

func (s *ServiceSuite) wait() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Require().NoError(s.svc.Wait(ctx))
}

func sampleParcel() parcel.Parcel {
	p := parcel.New(identifier)
	p.SiteArea = parcel.Known(12000.0)
	p.TownCenter = parcel.Known(true)
	return *p
}

func knownAnswers() parcel.UserAnswers {
	return parcel.UserAnswers{
		Ownership:       parcel.Known(parcel.OwnershipPublic),
		WaterConnection: parcel.Known(true),
	}
}

// =============================================================================
// Evaluation cache
// =============================================================================

func (s *ServiceSuite) TestCacheHit() {
	ctx := context.Background()

	s.Run("second identical call reuses the first evaluation", func() {
		first, err := s.svc.Evaluate(ctx, sampleParcel(), knownAnswers())
		s.Require().NoError(err)
		s.False(first.FromCache)
		s.Nil(first.SourceEvaluationID)

		second, err := s.svc.Evaluate(ctx, sampleParcel(), knownAnswers())
		s.Require().NoError(err)

		s.Equal(int32(1), s.scorer.calls.Load())
		s.True(second.FromCache)
		s.Require().NotNil(second.SourceEvaluationID)
		s.Equal(first.ID, *second.SourceEvaluationID)
		s.NotEqual(first.ID, second.ID)
		s.Equal(first.Results, second.Results)
		s.Equal(first.Reliability, second.Reliability)
	})

	s.Run("hit is served from the repository once writes are done", func() {
		s.wait()
		third, err := s.svc.Evaluate(ctx, sampleParcel(), knownAnswers())
		s.Require().NoError(err)
		s.True(third.FromCache)
		s.Equal(int32(1), s.scorer.calls.Load())

		s.wait()
		s.Equal(3, s.repo.Len())
	})
}

func (s *ServiceSuite) TestCacheMiss() {
	ctx := context.Background()

	s.Run("unknown answer bypasses the cache", func() {
		answers := knownAnswers()
		answers.Pollution = parcel.Unknown[parcel.PollutionStatus]()

		_, err := s.svc.Evaluate(ctx, sampleParcel(), answers)
		s.Require().NoError(err)
		again, err := s.svc.Evaluate(ctx, sampleParcel(), answers)
		s.Require().NoError(err)

		s.False(again.FromCache)
		s.Equal(int32(2), s.scorer.calls.Load())
	})

	s.Run("different answers are scored again", func() {
		s.scorer.calls.Store(0)
		_, err := s.svc.Evaluate(ctx, sampleParcel(), knownAnswers())
		s.Require().NoError(err)

		other := knownAnswers()
		other.WaterConnection = parcel.Known(false)
		res, err := s.svc.Evaluate(ctx, sampleParcel(), other)
		s.Require().NoError(err)

		s.False(res.FromCache)
		s.Equal(int32(2), s.scorer.calls.Load())
	})

	s.Run("expired evaluations are not reused", func() {
		s.scorer.calls.Store(0)
		_, err := s.svc.Evaluate(ctx, sampleParcel(), knownAnswers())
		s.Require().NoError(err)
		s.wait()

		s.now = s.now.Add(DefaultCacheTTL + time.Minute)
		res, err := s.svc.Evaluate(ctx, sampleParcel(), knownAnswers())
		s.Require().NoError(err)

		s.False(res.FromCache)
		s.Equal(int32(1), s.scorer.calls.Load())
	})
}

// =============================================================================
// Persistence failures
// =============================================================================

func (s *ServiceSuite) TestRepositoryFailuresAreSwallowed() {
	s.svc = s.newService(brokenRepo{})

	res, err := s.svc.Evaluate(context.Background(), sampleParcel(), knownAnswers())
	s.Require().NoError(err)
	s.Len(res.Results, mutability.UsageCount)
	s.wait()

	_, err = s.svc.Get(context.Background(), res.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

// =============================================================================
// Validation and lookups
// =============================================================================

func (s *ServiceSuite) TestInvalidInput() {
	s.Run("malformed identifier", func() {
		p := sampleParcel()
		p.Identifier = "not-a-parcel"
		_, err := s.svc.Evaluate(context.Background(), p, knownAnswers())
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("answer outside its allowed values", func() {
		answers := knownAnswers()
		answers.Ownership = parcel.Known(parcel.Ownership("someone"))
		_, err := s.svc.Evaluate(context.Background(), sampleParcel(), answers)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestGet() {
	res, err := s.svc.Evaluate(context.Background(), sampleParcel(), knownAnswers())
	s.Require().NoError(err)
	s.wait()

	rec, err := s.svc.Get(context.Background(), res.ID)
	s.Require().NoError(err)
	s.Equal(identifier, rec.Identifier)
	s.Equal(res.Results, rec.Results)

	_, err = s.svc.Get(context.Background(), uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestEvaluateIdentifier() {
	s.Run("enriches then evaluates", func() {
		out, err := s.svc.EvaluateIdentifier(context.Background(), identifier, knownAnswers())
		s.Require().NoError(err)
		s.Equal(models.StatusSuccess, out.Enrichment.Status)
		s.Equal(identifier, out.Evaluation.Identifier)
		s.Len(out.Evaluation.Results, mutability.UsageCount)
	})

	s.Run("enrichment errors are returned as is", func() {
		cause := dErrors.New(dErrors.CodeMandatoryDataMissing, "cadastre lookup failed")
		s.svc = s.newService(s.repo, WithEnricher(stubEnricher{err: cause}))

		_, err := s.svc.EvaluateIdentifier(context.Background(), identifier, knownAnswers())
		s.True(dErrors.HasCode(err, dErrors.CodeMandatoryDataMissing))
	})
}
