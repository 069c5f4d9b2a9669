package httpapi

import (
	"context"
	"net/url"

	"mutafriches/pkg/geo"
)

// Grid finds the nearest electrical connection point.
type Grid struct{ c JSONGetter }

func NewGrid(c JSONGetter) *Grid { return &Grid{c: c} }

func (a *Grid) NearestConnectionPoint(ctx context.Context, p geo.Point) (geo.Point, error) {
	var resp point
	if err := a.c.GetJSON(ctx, "/postes/nearest", around(p, 0), &resp); err != nil {
		return geo.Point{}, err
	}
	if !resp.geo().Valid() {
		return geo.Point{}, badData(a.c, "invalid connection point")
	}
	return resp.geo(), nil
}

// Transit lists public transport stops.
type Transit struct{ c JSONGetter }

func NewTransit(c JSONGetter) *Transit { return &Transit{c: c} }

func (a *Transit) StopsAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error) {
	var resp pointList
	if err := a.c.GetJSON(ctx, "/stops", around(p, radius), &resp); err != nil {
		return nil, err
	}
	return resp.points(), nil
}

// TownHalls locates the town hall of a commune.
type TownHalls struct{ c JSONGetter }

func NewTownHalls(c JSONGetter) *TownHalls { return &TownHalls{c: c} }

func (a *TownHalls) TownHall(ctx context.Context, inseeCode string) (geo.Point, error) {
	var resp point
	if err := a.c.GetJSON(ctx, "/mairies", url.Values{"code_insee": {inseeCode}}, &resp); err != nil {
		return geo.Point{}, err
	}
	if !resp.geo().Valid() {
		return geo.Point{}, badData(a.c, "invalid town hall location")
	}
	return resp.geo(), nil
}

// Roads lists main road centrelines.
type Roads struct{ c JSONGetter }

func NewRoads(c JSONGetter) *Roads { return &Roads{c: c} }

func (a *Roads) RoadsAround(ctx context.Context, p geo.Point, radius float64) ([][]geo.Point, error) {
	var resp struct {
		Items []struct {
			Geometry [][2]float64 `json:"geometry"`
		} `json:"items"`
	}
	if err := a.c.GetJSON(ctx, "/routes", around(p, radius), &resp); err != nil {
		return nil, err
	}
	out := make([][]geo.Point, 0, len(resp.Items))
	for _, road := range resp.Items {
		line := make([]geo.Point, 0, len(road.Geometry))
		for _, lonLat := range road.Geometry {
			line = append(line, geo.Point{Lat: lonLat[1], Lon: lonLat[0]})
		}
		if len(line) > 0 {
			out = append(out, line)
		}
	}
	return out, nil
}
