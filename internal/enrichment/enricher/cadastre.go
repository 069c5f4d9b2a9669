package enricher

import (
	"context"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// CadastreParcel is the cadastral record of a parcel.
type CadastreParcel struct {
	Identifier string
	InseeCode  string
	Commune    string
	Area       float64
	Centroid   *geo.Point
	Polygon    geo.Polygon
}

// CadastreClient resolves an identifier to its cadastral record.
type CadastreClient interface {
	LookupParcel(ctx context.Context, identifier string) (*CadastreParcel, error)
}

// BuildingClient returns the built footprint of a parcel in square metres.
type BuildingClient interface {
	BuiltArea(ctx context.Context, identifier string) (float64, error)
}

// Cadastre is the mandatory first stage. Outcome.Success reflects the cadastre
// lookup alone; the building footprint is a soft sub-fetch.
type Cadastre struct {
	cadastre  CadastreClient
	buildings BuildingClient
	config
}

func NewCadastre(cadastre CadastreClient, buildings BuildingClient, opts ...Option) *Cadastre {
	return &Cadastre{cadastre: cadastre, buildings: buildings, config: newConfig(opts)}
}

func (e *Cadastre) Name() string { return "cadastre" }

func (e *Cadastre) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	var (
		record *CadastreParcel
		built  float64
	)
	errs := gather(ctx,
		func(ctx context.Context) (err error) {
			record, err = e.cadastre.LookupParcel(ctx, p.Identifier)
			if err == nil && record == nil {
				err = errNoRecord
			}
			return err
		},
		func(ctx context.Context) (err error) {
			built, err = e.buildings.BuiltArea(ctx, p.Identifier)
			return err
		},
	)

	var b models.OutcomeBuilder
	if errs[0] != nil {
		e.softFailure(ctx, e.Name(), SourceCadastre, errs[0])
		b.Failed(SourceCadastre,
			field(parcel.CriterionSiteArea), FieldCoordinates, FieldPolygon)
		out := b.Build()
		out.Success = false
		return out
	}

	b.Used(SourceCadastre)
	if record.Commune != "" {
		p.Commune = record.Commune
	}
	if record.InseeCode != "" {
		p.InseeCode = record.InseeCode
	}
	if record.Area > 0 {
		p.SiteArea = parcel.Known(record.Area)
	} else {
		b.Missing(field(parcel.CriterionSiteArea))
	}
	if len(record.Polygon) > 0 {
		p.Polygon = record.Polygon
	} else {
		b.Missing(FieldPolygon)
	}
	switch {
	case record.Centroid != nil && record.Centroid.Valid():
		c := *record.Centroid
		p.Coordinates = &c
	default:
		if c, ok := geo.Centroid(record.Polygon); ok {
			p.Coordinates = &c
		} else {
			b.Missing(FieldCoordinates)
		}
	}

	if errs[1] != nil {
		e.softFailure(ctx, e.Name(), SourceBuildings, errs[1])
		b.Failed(SourceBuildings, field(parcel.CriterionBuiltArea))
	} else {
		b.Used(SourceBuildings)
		p.BuiltArea = parcel.Known(built)
	}

	out := b.Build()
	out.Success = true
	return out
}
