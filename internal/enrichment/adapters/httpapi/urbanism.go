package httpapi

import (
	"context"
	"net/url"

	"mutafriches/pkg/geo"
)

// Housing returns commune-level housing counts.
type Housing struct{ c JSONGetter }

func NewHousing(c JSONGetter) *Housing { return &Housing{c: c} }

func (a *Housing) HousingCounts(ctx context.Context, inseeCode string) (int64, int64, error) {
	var resp struct {
		Vacant *int64 `json:"vacant"`
		Total  *int64 `json:"total"`
	}
	if err := a.c.GetJSON(ctx, "/logements", url.Values{"code_insee": {inseeCode}}, &resp); err != nil {
		return 0, 0, err
	}
	if resp.Vacant == nil || resp.Total == nil {
		return 0, 0, badData(a.c, "incomplete housing counts")
	}
	if *resp.Vacant < 0 || *resp.Vacant > *resp.Total {
		return 0, 0, badData(a.c, "inconsistent housing counts")
	}
	return *resp.Vacant, *resp.Total, nil
}

// Amenities lists shops and services.
type Amenities struct{ c JSONGetter }

func NewAmenities(c JSONGetter) *Amenities { return &Amenities{c: c} }

func (a *Amenities) AmenitiesAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error) {
	var resp pointList
	if err := a.c.GetJSON(ctx, "/equipements", around(p, radius), &resp); err != nil {
		return nil, err
	}
	return resp.points(), nil
}
