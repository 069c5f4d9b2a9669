//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/evaluation/store"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/platform/sentinel"
	"mutafriches/pkg/testutil/containers"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	repo     *store.Postgres
}

func TestPostgresIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.repo = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "evaluations"))
}

func (s *PostgresIntegrationSuite) scored(at time.Time, answers parcel.UserAnswers) *models.Record {
	p := parcel.New("25056000HZ0346")
	p.SiteArea = parcel.Known(4200.0)
	p.Answers = answers
	return &models.Record{
		ID:          uuid.New(),
		Identifier:  p.Identifier,
		Parcel:      *p,
		Answers:     answers,
		Results:     mutability.NewScorer(mutability.DefaultMatrix()).Score(*p),
		Reliability: mutability.EstimateReliability(*p),
		CreatedAt:   at.UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresIntegrationSuite) TestRoundTrip() {
	ctx := context.Background()
	rec := s.scored(time.Now(), parcel.UserAnswers{WaterConnection: parcel.Known(true)})
	s.Require().NoError(s.repo.Save(ctx, rec))

	got, err := s.repo.Get(ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.Results, got.Results)
	s.Equal(rec.Reliability, got.Reliability)
	s.Equal(rec.CreatedAt, got.CreatedAt)
	s.True(got.Answers.Equal(rec.Answers))

	_, err = s.repo.Get(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestFindValidCache() {
	ctx := context.Background()
	now := time.Now()
	answers := parcel.UserAnswers{Ownership: parcel.Known(parcel.OwnershipPublic)}

	expired := s.scored(now.Add(-48*time.Hour), answers)
	fresh := s.scored(now.Add(-time.Hour), answers)
	reuse := s.scored(now, answers)
	reuse.SourceEvaluationID = &fresh.ID
	for _, rec := range []*models.Record{expired, fresh, reuse} {
		s.Require().NoError(s.repo.Save(ctx, rec))
	}

	got, err := s.repo.FindValidCache(ctx, "25056000HZ0346", answers, now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(fresh.ID, got.ID)

	_, err = s.repo.FindValidCache(ctx, "25056000HZ0346", parcel.UserAnswers{}, now.Add(-24*time.Hour))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
