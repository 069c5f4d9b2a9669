package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	enrichmodels "mutafriches/internal/enrichment/models"
	"mutafriches/internal/enrichment/pipeline"
	"mutafriches/internal/evaluation"
	"mutafriches/internal/evaluation/export"
	"mutafriches/internal/evaluation/handler/mocks"
	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
	"mutafriches/pkg/platform/sentinel"
	"mutafriches/pkg/requestcontext"
	"mutafriches/pkg/testutil"
)

const identifier = "25056000HZ0346"

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service
type EvaluationHandlerSuite struct {
	suite.Suite
	svc    *mocks.MockService
	router chi.Router
}

func TestEvaluationHandlerSuite(t *testing.T) {
	suite.Run(t, new(EvaluationHandlerSuite))
}

func (s *EvaluationHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.svc, logger).Register(s.router)
}

func sampleRecord() *models.Record {
	p := parcel.New(identifier)
	p.SiteArea = parcel.Known(3000.0)
	return &models.Record{
		ID:          uuid.New(),
		Identifier:  identifier,
		Parcel:      *p,
		Results:     mutability.NewScorer(mutability.DefaultMatrix()).Score(*p),
		Reliability: mutability.EstimateReliability(*p),
		CreatedAt:   time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// POST /api/v1/evaluations
// =============================================================================

func (s *EvaluationHandlerSuite) TestEvaluate() {
	rec := sampleRecord()
	s.svc.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), parcel.UserAnswers{WaterConnection: parcel.Known(true)}).
		DoAndReturn(func(ctx context.Context, p parcel.Parcel, _ parcel.UserAnswers) (*models.Evaluation, error) {
			s.Equal("req-42", requestcontext.RequestID(ctx))
			s.Equal(identifier, p.Identifier)
			return models.NewEvaluation(rec), nil
		})

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/evaluations",
		`{"parcel":{"identifier":"25056000HZ0346","siteArea":3000},"answers":{"waterConnection":true}}`)
	rr := testutil.DoRequest(s.router, testutil.WithRequestID(req, "req-42"))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[models.Evaluation](s.T(), rr)
	s.Equal(rec.ID, resp.ID)
	s.Len(resp.Results, mutability.UsageCount)
	s.False(resp.FromCache)
}

func (s *EvaluationHandlerSuite) TestEvaluateRejectsBadBodies() {
	s.Run("missing parcel", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/evaluations", `{"answers":{}}`)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed json", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/evaluations", `{"parcel":`)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("validation errors from the service", func() {
		s.svc.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "invalid parcel"))

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/evaluations",
			`{"parcel":{"identifier":"bad"},"answers":{}}`)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

// =============================================================================
// POST /api/v1/evaluations/by-identifier
// =============================================================================

func (s *EvaluationHandlerSuite) TestEvaluateIdentifier() {
	rec := sampleRecord()
	s.svc.EXPECT().EvaluateIdentifier(gomock.Any(), identifier, parcel.UserAnswers{}).
		Return(&evaluation.IdentifierEvaluation{
			Enrichment: &pipeline.Result{Parcel: &rec.Parcel, Status: enrichmodels.StatusPartial},
			Evaluation: models.NewEvaluation(rec),
		}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/evaluations/by-identifier",
		map[string]any{"identifier": identifier})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[evaluation.IdentifierEvaluation](s.T(), rr)
	s.Equal(enrichmodels.StatusPartial, resp.Enrichment.Status)
	s.Equal(rec.ID, resp.Evaluation.ID)
}

func (s *EvaluationHandlerSuite) TestEvaluateIdentifierMandatoryDataMissing() {
	s.svc.EXPECT().EvaluateIdentifier(gomock.Any(), identifier, gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeMandatoryDataMissing, "cadastre data unavailable"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/evaluations/by-identifier",
		map[string]any{"identifier": identifier})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "mandatory_data_missing")
}

// =============================================================================
// GET /api/v1/evaluations/{id}
// =============================================================================

func (s *EvaluationHandlerSuite) TestGet() {
	s.Run("returns the stored record", func() {
		rec := sampleRecord()
		s.svc.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/evaluations/"+rec.ID.String()))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[models.Record](s.T(), rr)
		s.Equal(rec.ID, resp.ID)
		s.Equal(identifier, resp.Identifier)
	})

	s.Run("unknown id", func() {
		id := uuid.New()
		s.svc.EXPECT().Get(gomock.Any(), id).
			Return(nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "evaluation not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/evaluations/"+id.String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/evaluations/nope"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("storage failure is internal", func() {
		id := uuid.New()
		s.svc.EXPECT().Get(gomock.Any(), id).Return(nil, errors.New("connection refused"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/evaluations/"+id.String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	})
}

// =============================================================================
// GET /api/v1/evaluations/{id}/export
// =============================================================================

func (s *EvaluationHandlerSuite) TestExport() {
	rec := sampleRecord()
	s.svc.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)

	rr := testutil.DoRequest(s.router,
		testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/evaluations/"+rec.ID.String()+"/export"))

	testutil.AssertStatusOK(s.T(), rr)
	s.Equal(export.ContentType, rr.Header().Get("Content-Type"))
	s.Contains(rr.Header().Get("Content-Disposition"), export.Filename(rec))
	s.NotZero(rr.Body.Len())
}
