package enricher

import (
	"context"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// GridClient locates the nearest electricity grid connection point.
type GridClient interface {
	NearestConnectionPoint(ctx context.Context, p geo.Point) (geo.Point, error)
}

// Energy fills the distance to the grid.
type Energy struct {
	grid GridClient
	config
}

func NewEnergy(grid GridClient, opts ...Option) *Energy {
	return &Energy{grid: grid, config: newConfig(opts)}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	if p.Coordinates == nil {
		return models.Skipped(field(parcel.CriterionDistanceToGrid))
	}
	origin := *p.Coordinates

	var point geo.Point
	errs := gather(ctx, func(ctx context.Context) (err error) {
		point, err = e.grid.NearestConnectionPoint(ctx, origin)
		return err
	})

	var b models.OutcomeBuilder
	if errs[0] != nil {
		e.softFailure(ctx, e.Name(), SourceGrid, errs[0])
		b.Failed(SourceGrid, field(parcel.CriterionDistanceToGrid))
		return b.Build()
	}
	p.DistanceToGrid = parcel.Known(roundMetres(geo.Haversine(origin, point)))
	b.Used(SourceGrid)
	return b.Build()
}
