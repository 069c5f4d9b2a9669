// Package georisk queries the national geo-risk datasets for one coordinate
// pair, all at once, and folds the answers into a parcel.GeoRiskResult.
package georisk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// Source is one geo-risk dataset.
type Source interface {
	ID() parcel.GeoRiskSource
	// Fetch returns the normalized payload around (lat, lon). A nil payload with
	// a nil error means the source had nothing to say and is not counted as used.
	Fetch(ctx context.Context, lat, lon, radius float64) (parcel.Payload, error)
}

// SourceConfig bounds one source call.
type SourceConfig struct {
	Timeout time.Duration
	Radius  float64
}

// DefaultSourceConfigs holds per-source timeouts (seconds) and query radii (metres).
// Radius 0 means a point query.
var DefaultSourceConfigs = map[parcel.GeoRiskSource]SourceConfig{
	parcel.GeoRiskRGA:             {Timeout: 10 * time.Second},
	parcel.GeoRiskCavities:        {Timeout: 15 * time.Second, Radius: 1000},
	parcel.GeoRiskCatNat:          {Timeout: 15 * time.Second, Radius: 1000},
	parcel.GeoRiskFloodTRI:        {Timeout: 15 * time.Second, Radius: 1000},
	parcel.GeoRiskFloodAZI:        {Timeout: 15 * time.Second, Radius: 1000},
	parcel.GeoRiskFloodPAPI:       {Timeout: 15 * time.Second, Radius: 1000},
	parcel.GeoRiskPPR:             {Timeout: 20 * time.Second, Radius: 1000},
	parcel.GeoRiskGroundMovements: {Timeout: 15 * time.Second, Radius: 1000},
	parcel.GeoRiskSeismicZoning:   {Timeout: 10 * time.Second},
	parcel.GeoRiskSIS:             {Timeout: 15 * time.Second, Radius: 1000},
	parcel.GeoRiskICPE:            {Timeout: 30 * time.Second, Radius: 1000},
	parcel.GeoRiskNuclearSites:    {Timeout: 15 * time.Second, Radius: 15000},
	parcel.GeoRiskRadon:           {Timeout: 10 * time.Second},
}

const fallbackTimeout = 10 * time.Second

// ErrNotConfigured marks a fixed source with no registered implementation.
var ErrNotConfigured = errors.New("geo-risk source not configured")

// Observer receives the number of sources used per fan-out.
type Observer interface {
	ObserveGeoRiskSourcesUsed(n int)
}

// FanOut issues every source fetch concurrently.
type FanOut struct {
	sources  map[parcel.GeoRiskSource]Source
	configs  map[parcel.GeoRiskSource]SourceConfig
	logger   *slog.Logger
	observer Observer
}

// Option configures a FanOut.
type Option func(*FanOut)

// WithLogger sets the logger for per-source failures.
func WithLogger(l *slog.Logger) Option {
	return func(f *FanOut) { f.logger = l }
}

// WithObserver records how many sources answered.
func WithObserver(o Observer) Option {
	return func(f *FanOut) { f.observer = o }
}

// WithSourceConfig overrides the timeout and radius of one source.
func WithSourceConfig(id parcel.GeoRiskSource, cfg SourceConfig) Option {
	return func(f *FanOut) { f.configs[id] = cfg }
}

// New registers sources by ID. A later source with the same ID replaces an earlier one.
func New(sources []Source, opts ...Option) *FanOut {
	f := &FanOut{
		sources: make(map[parcel.GeoRiskSource]Source, len(sources)),
		configs: make(map[parcel.GeoRiskSource]SourceConfig, len(DefaultSourceConfigs)),
		logger:  slog.Default(),
	}
	for id, cfg := range DefaultSourceConfigs {
		f.configs[id] = cfg
	}
	for _, s := range sources {
		f.sources[s.ID()] = s
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type slot struct {
	payload parcel.Payload
	err     error
}

// FetchAll queries the thirteen fixed sources around p. Failures, timeouts and
// panics of one source never affect the others.
func (f *FanOut) FetchAll(ctx context.Context, p geo.Point) parcel.GeoRiskResult {
	ids := parcel.GeoRiskSources
	slots := make([]slot, len(ids))

	// Plain Group: a failed source must not cancel its siblings.
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			slots[i] = f.fetchOne(ctx, id, p)
			return nil
		})
	}
	_ = g.Wait()

	result := parcel.GeoRiskResult{
		Metadata: parcel.GeoRiskMetadata{
			SourcesUsed:   []parcel.GeoRiskSource{},
			SourcesFailed: []parcel.GeoRiskSource{},
		},
	}
	risks := make(map[parcel.GeoRiskSource]parcel.Payload)
	for i, id := range ids {
		s := slots[i]
		if s.err == nil && s.payload != nil {
			risks[id] = s.payload
			result.Metadata.SourcesUsed = append(result.Metadata.SourcesUsed, id)
			continue
		}
		result.Metadata.SourcesFailed = append(result.Metadata.SourcesFailed, id)
		if s.err != nil && !errors.Is(s.err, ErrNotConfigured) {
			f.logger.WarnContext(ctx, "geo-risk source failed", "source", id, "error", s.err)
		}
	}

	used := len(result.Metadata.SourcesUsed)
	if used > 0 {
		result.Risks = risks
	}
	result.Metadata.Reliability = parcel.GeoRiskReliability(used)
	if f.observer != nil {
		f.observer.ObserveGeoRiskSourcesUsed(used)
	}
	return result
}

// fetchOne returns when the source answers or its deadline passes, whichever
// comes first, so a source that ignores its context cannot stall the fan-out.
func (f *FanOut) fetchOne(ctx context.Context, id parcel.GeoRiskSource, p geo.Point) slot {
	src, ok := f.sources[id]
	if !ok {
		return slot{err: ErrNotConfigured}
	}
	cfg := f.configs[id]
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = fallbackTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan slot, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- slot{err: fmt.Errorf("geo-risk source %s panicked: %v", id, r)}
			}
		}()
		payload, err := src.Fetch(ctx, p.Lat, p.Lon, cfg.Radius)
		done <- slot{payload: payload, err: err}
	}()

	select {
	case s := <-done:
		return s
	case <-ctx.Done():
		return slot{err: fmt.Errorf("geo-risk source %s: %w", id, ctx.Err())}
	}
}
