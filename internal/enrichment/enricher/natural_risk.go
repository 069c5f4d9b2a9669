package enricher

import (
	"context"
	"fmt"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// Cavity proximity thresholds in metres.
const (
	CavityHighDistance   = 100.0
	CavityMediumDistance = 500.0
	CavitySearchRadius   = 1000.0
)

// ClayExposure is the shrink-swell clay exposure level as published.
type ClayExposure string

const (
	ClayHigh   ClayExposure = "high"
	ClayMedium ClayExposure = "medium"
	ClayLow    ClayExposure = "low"
	ClayNone   ClayExposure = "none"
)

// ClayClient returns the shrink-swell clay exposure at a point.
type ClayClient interface {
	ClayExposure(ctx context.Context, p geo.Point) (ClayExposure, error)
}

// CavityClient lists known underground cavities around a point.
type CavityClient interface {
	CavitiesAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error)
}

// ClayRiskLevel maps a clay exposure onto the natural-risk scale. ok is false
// for a value outside the published levels.
func ClayRiskLevel(e ClayExposure) (lvl parcel.NaturalRiskLevel, ok bool) {
	switch e {
	case ClayHigh:
		return parcel.NaturalRiskHigh, true
	case ClayMedium:
		return parcel.NaturalRiskMedium, true
	case ClayLow:
		return parcel.NaturalRiskLow, true
	case ClayNone:
		return parcel.NaturalRiskNone, true
	default:
		return "", false
	}
}

// CavityRiskLevel maps the nearest cavity distance onto the natural-risk scale.
// found is false when no cavity lies within the search radius.
func CavityRiskLevel(distance float64, found bool) parcel.NaturalRiskLevel {
	switch {
	case !found:
		return parcel.NaturalRiskNone
	case distance <= CavityHighDistance:
		return parcel.NaturalRiskHigh
	case distance <= CavityMediumDistance:
		return parcel.NaturalRiskMedium
	default:
		return parcel.NaturalRiskLow
	}
}

// CombineNaturalRisk keeps the worst available signal. A nil signal is
// unavailable; when both are nil the result is missing.
func CombineNaturalRisk(clay, cavity *parcel.NaturalRiskLevel) parcel.Field[parcel.NaturalRiskLevel] {
	switch {
	case clay == nil && cavity == nil:
		return parcel.Field[parcel.NaturalRiskLevel]{}
	case clay == nil:
		return parcel.Known(*cavity)
	case cavity == nil:
		return parcel.Known(*clay)
	case cavity.Rank() > clay.Rank():
		return parcel.Known(*cavity)
	default:
		return parcel.Known(*clay)
	}
}

// NaturalRisk combines clay and cavity hazards into one level.
type NaturalRisk struct {
	clay     ClayClient
	cavities CavityClient
	config
}

func NewNaturalRisk(clay ClayClient, cavities CavityClient, opts ...Option) *NaturalRisk {
	return &NaturalRisk{clay: clay, cavities: cavities, config: newConfig(opts)}
}

func (e *NaturalRisk) Name() string { return "natural_risk" }

func (e *NaturalRisk) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	riskField := field(parcel.CriterionNaturalRisk)
	if p.Coordinates == nil {
		return models.Skipped(riskField)
	}
	origin := *p.Coordinates

	var (
		exposure ClayExposure
		cavities []geo.Point
	)
	errs := gather(ctx,
		func(ctx context.Context) (err error) {
			exposure, err = e.clay.ClayExposure(ctx, origin)
			return err
		},
		func(ctx context.Context) (err error) {
			cavities, err = e.cavities.CavitiesAround(ctx, origin, CavitySearchRadius)
			return err
		},
	)

	var (
		b                  models.OutcomeBuilder
		clayLvl, cavityLvl *parcel.NaturalRiskLevel
	)
	if errs[0] == nil {
		if lvl, ok := ClayRiskLevel(exposure); ok {
			clayLvl = &lvl
		} else {
			errs[0] = fmt.Errorf("unrecognized clay exposure %q", exposure)
		}
	}
	if errs[0] != nil {
		e.softFailure(ctx, e.Name(), SourceClay, errs[0])
		b.Failed(SourceClay)
	} else {
		b.Used(SourceClay)
	}
	if errs[1] != nil {
		e.softFailure(ctx, e.Name(), SourceCavities, errs[1])
		b.Failed(SourceCavities)
	} else {
		b.Used(SourceCavities)
		d, found := nearest(origin, cavities)
		lvl := CavityRiskLevel(d, found)
		cavityLvl = &lvl
	}

	risk := CombineNaturalRisk(clayLvl, cavityLvl)
	if risk.IsKnown() {
		p.NaturalRisk = risk
	} else {
		b.Missing(riskField)
	}
	return b.Build()
}
