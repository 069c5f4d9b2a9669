package httpapi

import (
	"context"
	"net/url"

	"mutafriches/internal/enrichment/enricher"
	"mutafriches/pkg/geo"
)

// Cadastre looks parcels up by identifier.
type Cadastre struct{ c JSONGetter }

func NewCadastre(c JSONGetter) *Cadastre { return &Cadastre{c: c} }

type cadastreRecord struct {
	Identifier string       `json:"identifier"`
	InseeCode  string       `json:"insee_code"`
	Commune    string       `json:"commune"`
	Area       float64      `json:"area"`
	Centroid   *point       `json:"centroid"`
	Polygon    [][2]float64 `json:"polygon"`
}

func (a *Cadastre) LookupParcel(ctx context.Context, identifier string) (*enricher.CadastreParcel, error) {
	var rec cadastreRecord
	if err := a.c.GetJSON(ctx, "/parcelles", url.Values{"code": {identifier}}, &rec); err != nil {
		return nil, err
	}
	if rec.Identifier == "" {
		return nil, badData(a.c, "parcel record without identifier")
	}
	out := &enricher.CadastreParcel{
		Identifier: rec.Identifier,
		InseeCode:  rec.InseeCode,
		Commune:    rec.Commune,
		Area:       rec.Area,
	}
	if rec.Centroid != nil {
		c := rec.Centroid.geo()
		out.Centroid = &c
	}
	for _, lonLat := range rec.Polygon {
		out.Polygon = append(out.Polygon, geo.Point{Lat: lonLat[1], Lon: lonLat[0]})
	}
	return out, nil
}

// Buildings returns the built footprint of a parcel.
type Buildings struct{ c JSONGetter }

func NewBuildings(c JSONGetter) *Buildings { return &Buildings{c: c} }

func (a *Buildings) BuiltArea(ctx context.Context, identifier string) (float64, error) {
	var resp struct {
		BuiltArea *float64 `json:"built_area"`
	}
	if err := a.c.GetJSON(ctx, "/batiments", url.Values{"parcelle": {identifier}}, &resp); err != nil {
		return 0, err
	}
	if resp.BuiltArea == nil {
		return 0, badData(a.c, "missing built_area")
	}
	return *resp.BuiltArea, nil
}
