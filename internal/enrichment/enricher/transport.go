package enricher

import (
	"context"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// TownCenterRadius is the distance to the town hall under which a site is
// considered central.
const TownCenterRadius = 500.0

// TransportSearchRadius bounds the stop and road searches. A search that finds
// nothing reports this radius: the true distance is at least that far, which
// already lands in the farthest scoring bucket for both criteria.
const TransportSearchRadius = 5000.0

// TransitClient lists public transport stops around a point.
type TransitClient interface {
	StopsAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error)
}

// TownHallClient locates the town hall of a commune.
type TownHallClient interface {
	TownHall(ctx context.Context, inseeCode string) (geo.Point, error)
}

// RoadClient returns main road geometries around a point as polylines.
type RoadClient interface {
	RoadsAround(ctx context.Context, p geo.Point, radius float64) ([][]geo.Point, error)
}

// Transport fills transit distance, road distance and the town-centre flag.
type Transport struct {
	transit      TransitClient
	townHalls    TownHallClient
	roads        RoadClient
	searchRadius float64
	config
}

func NewTransport(transit TransitClient, townHalls TownHallClient, roads RoadClient, opts ...Option) *Transport {
	return &Transport{
		transit:      transit,
		townHalls:    townHalls,
		roads:        roads,
		searchRadius: TransportSearchRadius,
		config:       newConfig(opts),
	}
}

func (e *Transport) Name() string { return "transport" }

func (e *Transport) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	fields := []string{
		field(parcel.CriterionDistanceToTransit),
		field(parcel.CriterionTownCenter),
		field(parcel.CriterionDistanceToRoad),
	}
	if p.Coordinates == nil {
		return models.Skipped(fields...)
	}
	origin := *p.Coordinates
	insee := p.InseeCode

	var (
		stops []geo.Point
		hall  geo.Point
		roads [][]geo.Point
	)
	errs := gather(ctx,
		func(ctx context.Context) (err error) {
			stops, err = e.transit.StopsAround(ctx, origin, e.searchRadius)
			return err
		},
		func(ctx context.Context) (err error) {
			if insee == "" {
				return nil
			}
			hall, err = e.townHalls.TownHall(ctx, insee)
			return err
		},
		func(ctx context.Context) (err error) {
			roads, err = e.roads.RoadsAround(ctx, origin, e.searchRadius)
			return err
		},
	)

	var b models.OutcomeBuilder

	if errs[0] != nil {
		e.softFailure(ctx, e.Name(), SourceTransit, errs[0])
		b.Failed(SourceTransit, fields[0])
	} else {
		b.Used(SourceTransit)
		if d, ok := nearest(origin, stops); ok {
			p.DistanceToTransit = parcel.Known(roundMetres(d))
		} else {
			// No stop within the search radius: the radius is a lower bound.
			p.DistanceToTransit = parcel.Known(e.searchRadius)
		}
	}

	switch {
	case insee == "":
		b.Missing(fields[1])
	case errs[1] != nil:
		e.softFailure(ctx, e.Name(), SourceTownCenters, errs[1])
		b.Failed(SourceTownCenters, fields[1])
	default:
		b.Used(SourceTownCenters)
		p.TownCenter = parcel.Known(geo.Haversine(origin, hall) <= TownCenterRadius)
	}

	if errs[2] != nil {
		e.softFailure(ctx, e.Name(), SourceRoads, errs[2])
		b.Failed(SourceRoads, fields[2])
	} else {
		b.Used(SourceRoads)
		// Starts at the radius so an empty search reports the lower bound.
		best := e.searchRadius
		for _, line := range roads {
			if d := geo.DistanceToLine(origin, line); d < best {
				best = d
			}
		}
		p.DistanceToRoad = parcel.Known(roundMetres(best))
	}

	return b.Build()
}
