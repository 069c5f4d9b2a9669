package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type recordingObserver struct {
	mu         sync.Mutex
	categories []string
}

func (o *recordingObserver) ObserveProviderCall(_ string, category string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.categories = append(o.categories, category)
}

type ClientSuite struct {
	suite.Suite
	hits atomic.Int32
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) server(h http.HandlerFunc) *httptest.Server {
	s.hits.Store(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		h(w, r)
	}))
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *ClientSuite) category(err error) ErrorCategory {
	var pe *ProviderError
	s.Require().True(errors.As(err, &pe), "expected ProviderError, got %v", err)
	return pe.Category
}

// =============================================================================
// Success path
// =============================================================================

func (s *ClientSuite) TestGetJSON() {
	s.Run("decodes body and forwards query", func() {
		srv := s.server(func(w http.ResponseWriter, r *http.Request) {
			s.Equal("/parcelles", r.URL.Path)
			s.Equal("25056000HZ0346", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{"commune":"Besançon","surface":1234}`))
		})
		obs := &recordingObserver{}
		c := NewClient(Config{Name: "cadastre", BaseURL: srv.URL + "/"}, WithObserver(obs))

		var out struct {
			Commune string  `json:"commune"`
			Surface float64 `json:"surface"`
		}
		err := c.GetJSON(context.Background(), "/parcelles", url.Values{"id": {"25056000HZ0346"}}, &out)

		s.Require().NoError(err)
		s.Equal("Besançon", out.Commune)
		s.Equal(1234.0, out.Surface)
		s.Equal([]string{"ok"}, obs.categories)
	})
}

// =============================================================================
// Failure categorization
// =============================================================================

func (s *ClientSuite) TestFailureCategories() {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    ErrorCategory
	}{
		{
			name:    "404 is not found",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
			want:    ErrorNotFound,
		},
		{
			name:    "503 is an outage",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			want:    ErrorProviderOutage,
		},
		{
			name:    "429 is rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			want:    ErrorRateLimited,
		},
		{
			name:    "malformed json is bad data",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"commune":`)) },
			want:    ErrorBadData,
		},
		{
			name:    "empty body is bad data",
			handler: func(w http.ResponseWriter, _ *http.Request) {},
			want:    ErrorBadData,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			srv := s.server(tt.handler)
			c := NewClient(Config{Name: "p", BaseURL: srv.URL})

			var out map[string]any
			err := c.GetJSON(context.Background(), "x", nil, &out)

			s.Require().Error(err)
			s.Equal(tt.want, s.category(err))
		})
	}

	s.Run("slow provider times out", func() {
		release := make(chan struct{})
		srv := s.server(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)
		c := NewClient(Config{Name: "slow", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

		var out map[string]any
		err := c.GetJSON(context.Background(), "x", nil, &out)

		s.Require().Error(err)
		s.Equal(ErrorTimeout, s.category(err))
	})
}

// =============================================================================
// Circuit breaker
// =============================================================================

func (s *ClientSuite) TestCircuitBreaker() {
	s.Run("opens after repeated outages and stops calling the provider", func() {
		srv := s.server(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		c := NewClient(Config{
			Name:                "flaky",
			BaseURL:             srv.URL,
			BreakerMinRequests:  2,
			BreakerFailureRatio: 0.5,
			BreakerOpenTimeout:  time.Minute,
		})

		var out map[string]any
		for range 2 {
			s.Error(c.GetJSON(context.Background(), "x", nil, &out))
		}
		err := c.GetJSON(context.Background(), "x", nil, &out)

		s.Equal(ErrorCircuitOpen, s.category(err))
		s.Equal(int32(2), s.hits.Load())
	})

	s.Run("not found does not trip the breaker", func() {
		srv := s.server(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		c := NewClient(Config{Name: "sparse", BaseURL: srv.URL, BreakerMinRequests: 2})

		var out map[string]any
		for range 4 {
			err := c.GetJSON(context.Background(), "x", nil, &out)
			s.Equal(ErrorNotFound, s.category(err))
		}
		s.Equal(int32(4), s.hits.Load())
	})
}

func (s *ClientSuite) TestClassify() {
	s.Nil(Classify("p", nil))
	s.Equal(ErrorTimeout, Classify("p", context.DeadlineExceeded).Category)
	s.Equal(ErrorInternal, Classify("p", errors.New("boom")).Category)

	pe := NewProviderError(ErrorBadData, "p", "bad", nil)
	s.Same(pe, Classify("other", pe))
}
