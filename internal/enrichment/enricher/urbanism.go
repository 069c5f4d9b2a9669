package enricher

import (
	"context"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
	"mutafriches/pkg/numeric"
)

// AmenityRadius is the walking distance under which an amenity counts as nearby.
const AmenityRadius = 500.0

// HousingClient returns the vacant and total housing counts of a commune.
type HousingClient interface {
	HousingCounts(ctx context.Context, inseeCode string) (vacant, total int64, err error)
}

// AmenityClient lists everyday amenities (shops, schools, health) around a point.
type AmenityClient interface {
	AmenitiesAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error)
}

// ComputeVacancyRate returns vacant/total as a percentage rounded half-up to
// one decimal, or nil when total is zero.
func ComputeVacancyRate(vacant, total int64) *float64 {
	rate, ok := numeric.Percent(vacant, total, 1)
	if !ok {
		return nil
	}
	return &rate
}

// Urbanism fills the vacancy rate and the amenity flag.
type Urbanism struct {
	housing   HousingClient
	amenities AmenityClient
	config
}

func NewUrbanism(housing HousingClient, amenities AmenityClient, opts ...Option) *Urbanism {
	return &Urbanism{housing: housing, amenities: amenities, config: newConfig(opts)}
}

func (e *Urbanism) Name() string { return "urbanism" }

func (e *Urbanism) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	vacancyField := field(parcel.CriterionVacancyRate)
	amenityField := field(parcel.CriterionAmenitiesNearby)
	if p.InseeCode == "" && p.Coordinates == nil {
		return models.Skipped(vacancyField, amenityField)
	}
	insee := p.InseeCode
	origin := p.Coordinates

	var (
		vacant, total int64
		amenities     []geo.Point
	)
	errs := gather(ctx,
		func(ctx context.Context) (err error) {
			if insee == "" {
				return nil
			}
			vacant, total, err = e.housing.HousingCounts(ctx, insee)
			return err
		},
		func(ctx context.Context) (err error) {
			if origin == nil {
				return nil
			}
			amenities, err = e.amenities.AmenitiesAround(ctx, *origin, AmenityRadius)
			return err
		},
	)

	var b models.OutcomeBuilder

	switch {
	case insee == "":
		b.Missing(vacancyField)
	case errs[0] != nil:
		e.softFailure(ctx, e.Name(), SourceHousing, errs[0])
		b.Failed(SourceHousing, vacancyField)
	default:
		b.Used(SourceHousing)
		if rate := ComputeVacancyRate(vacant, total); rate != nil {
			p.VacancyRate = parcel.Known(*rate)
		} else {
			b.Missing(vacancyField)
		}
	}

	switch {
	case origin == nil:
		b.Missing(amenityField)
	case errs[1] != nil:
		e.softFailure(ctx, e.Name(), SourceAmenities, errs[1])
		b.Failed(SourceAmenities, amenityField)
	default:
		b.Used(SourceAmenities)
		d, ok := nearest(*origin, amenities)
		p.AmenitiesNearby = parcel.Known(ok && d <= AmenityRadius)
	}

	return b.Build()
}
