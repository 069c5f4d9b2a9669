// Package providers is the shared transport for external data providers:
// one JSON-over-HTTP client per provider, with a per-call timeout, a rate
// limiter and a circuit breaker. Calls are attempted once; there are no retries.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 8 << 20

// Config describes one provider endpoint.
type Config struct {
	Name          string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int

	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

func (c Config) normalize() Config {
	out := c
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	if out.Burst <= 0 {
		out.Burst = 1
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = 10
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = 0.5
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = 30 * time.Second
	}
	return out
}

// Observer receives one observation per provider call.
type Observer interface {
	ObserveProviderCall(provider string, category string, duration time.Duration)
}

// Client calls a single provider.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *slog.Logger
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver records call outcomes, typically into Prometheus.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient builds a client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg = cfg.normalize()
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.limiter = rate.NewLimiter(rate.Inf, cfg.Burst)
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAgainstBreaker(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("provider circuit breaker state change",
				"provider", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Name returns the provider name used in provenance lists.
func (c *Client) Name() string { return c.cfg.Name }

// GetJSON issues GET BaseURL+path?query and decodes the JSON body into out.
// Every failure is returned as a *ProviderError.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	start := time.Now()
	err := c.getJSON(ctx, path, query, out)
	perr := Classify(c.cfg.Name, err)
	if c.observer != nil {
		category := "ok"
		if perr != nil {
			category = string(perr.Category)
		}
		c.observer.ObserveProviderCall(c.cfg.Name, category, time.Since(start))
	}
	if perr != nil {
		return perr
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return NewProviderError(ErrorRateLimited, c.cfg.Name, "rate limiter", err)
	}

	endpoint, err := c.endpoint(path, query)
	if err != nil {
		return NewProviderError(ErrorInternal, c.cfg.Name, "build url", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return NewProviderError(ErrorBadData, c.cfg.Name, "empty body", ErrNoData)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewProviderError(ErrorBadData, c.cfg.Name, "decode response", err)
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	base, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		base.RawQuery = query.Encode()
	}
	return base.String(), nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewProviderError(ErrorInternal, c.cfg.Name, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewProviderError(ErrorTimeout, c.cfg.Name, "request timed out", err)
		}
		return nil, NewProviderError(ErrorProviderOutage, c.cfg.Name, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewProviderError(ErrorTimeout, c.cfg.Name, "reading body timed out", err)
		}
		return nil, NewProviderError(ErrorProviderOutage, c.cfg.Name, "read body", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewProviderError(ErrorNotFound, c.cfg.Name, "no record", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewProviderError(ErrorRateLimited, c.cfg.Name, resp.Status, nil)
	case resp.StatusCode >= 500:
		return nil, NewProviderError(ErrorProviderOutage, c.cfg.Name, resp.Status, nil)
	case resp.StatusCode >= 400:
		return nil, NewProviderError(ErrorBadData, c.cfg.Name, fmt.Sprintf("rejected query: %s", resp.Status), nil)
	}
	return body, nil
}
