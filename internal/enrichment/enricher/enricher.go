// Package enricher holds the domain enrichers composed by the pipeline. Each
// enricher wraps one to three provider calls, writes the enriched fields of the
// parcel it is given and returns the provenance of what it did.
package enricher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
	"mutafriches/pkg/numeric"
)

// Enricher fills one domain of a parcel.
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome
}

// Source names reported in provenance lists.
const (
	SourceCadastre     = "cadastre"
	SourceBuildings    = "bdnb"
	SourceGrid         = "enedis"
	SourceTransit      = "transport_stops"
	SourceTownCenters  = "town_halls"
	SourceRoads        = "ign_roads"
	SourceHousing      = "lovac"
	SourceAmenities    = "bpe"
	SourceClay         = "rga"
	SourceCavities     = "cavities"
	SourcePollutedSite = "sis"
	SourceInstallation = "icpe"
	SourceGeoRisks     = "georisques"
	SourceEnvironment  = "nature_zones"
	SourceHeritage     = "heritage"
	SourceUrbanPlan    = "gpu"
)

// Field names reported as missing that are not scoring criteria.
const (
	FieldCoordinates = "coordinates"
	FieldPolygon     = "polygon"
	FieldGeoRisks    = "geoRisks"
)

func field(c parcel.Criterion) string { return string(c) }

var errNoRecord = errors.New("provider returned no record")

// roundMetres keeps distances at metre precision.
func roundMetres(d float64) float64 { return numeric.Round(d, 0) }

// nearest returns the smallest Haversine distance from origin to points, and
// false when points is empty.
func nearest(origin geo.Point, points []geo.Point) (float64, bool) {
	best := math.Inf(1)
	for _, pt := range points {
		best = math.Min(best, geo.Haversine(origin, pt))
	}
	return best, len(points) > 0
}

type config struct {
	logger *slog.Logger
}

// Option configures an enricher.
type Option func(*config)

// WithLogger sets the logger used to report soft failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts []Option) config {
	c := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) softFailure(ctx context.Context, enricher, source string, err error) {
	c.logger.WarnContext(ctx, "enrichment source failed",
		"enricher", enricher,
		"source", source,
		"error", err,
	)
}

// gather runs fns concurrently and returns their errors by index. A panic in
// one branch becomes that branch's error. Branches are never cancelled by a
// sibling's failure, and every branch has returned when gather does.
func gather(ctx context.Context, fns ...func(context.Context) error) []error {
	errs := make([]error, len(fns))
	var g errgroup.Group
	for i, fn := range fns {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			errs[i] = fn(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
