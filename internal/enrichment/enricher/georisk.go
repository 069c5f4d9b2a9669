package enricher

import (
	"context"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// GeoRiskFetcher is the fan-out over the geo-risk datasets.
type GeoRiskFetcher interface {
	FetchAll(ctx context.Context, p geo.Point) parcel.GeoRiskResult
}

// GeoRisk attaches the raw geo-risk bundle to the parcel. Per-dataset
// provenance stays in the bundle's metadata; the pipeline only sees whether
// any dataset answered.
type GeoRisk struct {
	fanOut GeoRiskFetcher
	config
}

func NewGeoRisk(fanOut GeoRiskFetcher, opts ...Option) *GeoRisk {
	return &GeoRisk{fanOut: fanOut, config: newConfig(opts)}
}

func (e *GeoRisk) Name() string { return "georisk" }

func (e *GeoRisk) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	if p.Coordinates == nil {
		return models.Skipped(FieldGeoRisks)
	}
	result := e.fanOut.FetchAll(ctx, *p.Coordinates)

	var b models.OutcomeBuilder
	if result.Risks == nil {
		e.logger.WarnContext(ctx, "no geo-risk source answered",
			"failed", len(result.Metadata.SourcesFailed))
		b.Failed(SourceGeoRisks, FieldGeoRisks)
		return b.Build()
	}
	p.GeoRisks = &result
	b.Used(SourceGeoRisks)
	return b.Build()
}
