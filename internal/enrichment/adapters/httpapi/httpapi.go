// Package httpapi implements the enricher ports as thin JSON clients over
// providers.Client. Each adapter speaks the normalized shape exposed by the
// provider gateway: points as {"lat","lon"}, lists under "items".
package httpapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"mutafriches/internal/enrichment/providers"
	"mutafriches/pkg/geo"
)

// JSONGetter is satisfied by *providers.Client.
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	Name() string
}

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p point) geo() geo.Point { return geo.Point{Lat: p.Lat, Lon: p.Lon} }

type pointList struct {
	Items []point `json:"items"`
}

func (l pointList) points() []geo.Point {
	out := make([]geo.Point, 0, len(l.Items))
	for _, it := range l.Items {
		if pt := it.geo(); pt.Valid() {
			out = append(out, pt)
		}
	}
	return out
}

func around(p geo.Point, radius float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', 6, 64))
	if radius > 0 {
		q.Set("radius", strconv.FormatFloat(radius, 'f', 0, 64))
	}
	return q
}

// geometry encodes a polygon as a GeoJSON Polygon, lon/lat ordered and closed.
func geometry(poly geo.Polygon) string {
	ring := make([][2]float64, 0, len(poly)+1)
	for _, pt := range poly {
		ring = append(ring, [2]float64{pt.Lon, pt.Lat})
	}
	if len(poly) > 0 && poly[0] != poly[len(poly)-1] {
		ring = append(ring, [2]float64{poly[0].Lon, poly[0].Lat})
	}
	raw, _ := json.Marshal(map[string]any{
		"type":        "Polygon",
		"coordinates": [][][2]float64{ring},
	})
	return string(raw)
}

func badData(c JSONGetter, msg string) error {
	return providers.NewProviderError(providers.ErrorBadData, c.Name(), msg, providers.ErrNoData)
}
