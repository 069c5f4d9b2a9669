package httpapi

import (
	"context"
	"strconv"

	"mutafriches/internal/enrichment/georisk"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// datasetPaths maps each geo-risk dataset to its endpoint.
var datasetPaths = map[parcel.GeoRiskSource]string{
	parcel.GeoRiskRGA:             "/rga",
	parcel.GeoRiskCavities:        "/cavites",
	parcel.GeoRiskCatNat:          "/gaspar/catnat",
	parcel.GeoRiskFloodTRI:        "/gaspar/tri",
	parcel.GeoRiskFloodAZI:        "/gaspar/azi",
	parcel.GeoRiskFloodPAPI:       "/gaspar/papi",
	parcel.GeoRiskPPR:             "/ppr",
	parcel.GeoRiskGroundMovements: "/mvt",
	parcel.GeoRiskSeismicZoning:   "/zonage_sismique",
	parcel.GeoRiskSIS:             "/sis",
	parcel.GeoRiskICPE:            "/installations_classees",
	parcel.GeoRiskNuclearSites:    "/installations_nucleaires",
	parcel.GeoRiskRadon:           "/radon",
}

// Dataset is one geo-risk source served by the risk portal.
type Dataset struct {
	id   parcel.GeoRiskSource
	path string
	c    JSONGetter
}

// NewDatasets returns one source per known dataset. clientFor is called once
// per dataset so each can carry its own breaker.
func NewDatasets(clientFor func(parcel.GeoRiskSource) JSONGetter) []georisk.Source {
	out := make([]georisk.Source, 0, len(parcel.GeoRiskSources))
	for _, id := range parcel.GeoRiskSources {
		out = append(out, &Dataset{id: id, path: datasetPaths[id], c: clientFor(id)})
	}
	return out
}

func (d *Dataset) ID() parcel.GeoRiskSource { return d.id }

// Fetch returns {"count": n, "items": [...]} plus any scalar summary fields.
// A response without a data array is not a usable answer.
func (d *Dataset) Fetch(ctx context.Context, lat, lon, radius float64) (parcel.Payload, error) {
	var resp map[string]any
	q := around(geo.Point{Lat: lat, Lon: lon}, 0)
	if radius > 0 {
		q.Set("rayon", strconv.FormatFloat(radius, 'f', 0, 64))
	}
	if err := d.c.GetJSON(ctx, d.path, q, &resp); err != nil {
		return nil, err
	}
	items, ok := resp["data"].([]any)
	if !ok {
		return nil, nil
	}
	payload := parcel.Payload{"count": len(items), "items": items}
	for k, v := range resp {
		switch v.(type) {
		case string, float64, bool:
			if k != "count" && k != "items" {
				payload[k] = v
			}
		}
	}
	return payload, nil
}
