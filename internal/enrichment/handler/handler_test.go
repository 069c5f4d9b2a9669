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
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mutafriches/internal/enrichment/audit"
	"mutafriches/internal/enrichment/handler/mocks"
	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/enrichment/pipeline"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
	"mutafriches/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service
type EnrichmentHandlerSuite struct {
	suite.Suite
	svc    *mocks.MockService
	router chi.Router
}

func TestEnrichmentHandlerSuite(t *testing.T) {
	suite.Run(t, new(EnrichmentHandlerSuite))
}

func (s *EnrichmentHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.svc, logger).Register(s.router)
}

func (s *EnrichmentHandlerSuite) TestEnrich() {
	p := parcel.New("25056000HZ0346")
	p.SiteArea = parcel.Known(12000.0)
	s.svc.EXPECT().Enrich(gomock.Any(), "25056000HZ0346").Return(&pipeline.Result{
		Parcel:   p,
		Status:   models.StatusPartial,
		Duration: 1500 * time.Millisecond,
		Provenance: models.Provenance{
			SourcesUsed:   []string{"cadastre"},
			SourcesFailed: []string{"enedis"},
			MissingFields: []string{"distanceToGrid"},
		},
	}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/enrichments",
		map[string]string{"identifier": "25056000HZ0346"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[EnrichResponse](s.T(), rr)
	s.Equal(models.StatusPartial, resp.Status)
	s.Equal(int64(1500), resp.DurationMs)
	s.Equal([]string{"enedis"}, resp.Provenance.SourcesFailed)
	v, ok := resp.Parcel.SiteArea.Get()
	s.True(ok)
	s.Equal(12000.0, v)
}

func (s *EnrichmentHandlerSuite) TestMandatoryDataMissing() {
	s.svc.EXPECT().Enrich(gomock.Any(), "25056000HZ0346").Return(nil,
		dErrors.Wrap(errors.New("cadastre lookup failed"), dErrors.CodeMandatoryDataMissing, "cadastre data unavailable"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/enrichments",
		map[string]string{"identifier": "25056000HZ0346"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "mandatory_data_missing")
}

func (s *EnrichmentHandlerSuite) TestRejectsBadBodies() {
	s.Run("missing identifier", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/enrichments", map[string]string{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown field", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/enrichments", `{"id":"x"}`)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *EnrichmentHandlerSuite) TestUnexpectedErrorIsInternal() {
	s.svc.EXPECT().Enrich(gomock.Any(), gomock.Any()).Return(nil, context.Canceled)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/enrichments",
		map[string]string{"identifier": "25056000HZ0346"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
}

// =============================================================================
// Audit trail
// =============================================================================

func (s *EnrichmentHandlerSuite) TestLogs() {
	s.Run("default limit", func() {
		s.svc.EXPECT().Logs(gomock.Any(), "25056000HZ0346", 0).Return([]audit.Log{
			{Identifier: "25056000HZ0346", Status: "PARTIAL", SourcesFailed: []string{"enedis"}},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/enrichments/25056000HZ0346/logs"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[LogsResponse](s.T(), rr)
		s.Equal("25056000HZ0346", resp.Identifier)
		s.Require().Len(resp.Logs, 1)
		s.Equal("PARTIAL", resp.Logs[0].Status)
	})

	s.Run("explicit limit", func() {
		s.svc.EXPECT().Logs(gomock.Any(), "25056000HZ0346", 5).Return([]audit.Log{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/enrichments/25056000HZ0346/logs?limit=5"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("bad limit", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/enrichments/25056000HZ0346/logs?limit=-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid identifier", func() {
		s.svc.EXPECT().Logs(gomock.Any(), "bogus", 0).Return(nil,
			dErrors.New(dErrors.CodeValidation, "invalid parcel identifier"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/enrichments/bogus/logs"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("store failure is internal", func() {
		s.svc.EXPECT().Logs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/enrichments/25056000HZ0346/logs"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	})
}
