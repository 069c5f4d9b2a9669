package enricher

import (
	"context"
	"errors"

	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

var errOutage = errors.New("provider outage")

type fakeCadastre struct {
	record *CadastreParcel
	err    error
	calls  int
}

func (f *fakeCadastre) LookupParcel(context.Context, string) (*CadastreParcel, error) {
	f.calls++
	return f.record, f.err
}

type fakeBuildings struct {
	area float64
	err  error
}

func (f fakeBuildings) BuiltArea(context.Context, string) (float64, error) { return f.area, f.err }

type fakeGrid struct {
	point geo.Point
	err   error
}

func (f fakeGrid) NearestConnectionPoint(context.Context, geo.Point) (geo.Point, error) {
	return f.point, f.err
}

type fakePoints struct {
	points []geo.Point
	err    error
}

func (f fakePoints) StopsAround(context.Context, geo.Point, float64) ([]geo.Point, error) {
	return f.points, f.err
}

func (f fakePoints) AmenitiesAround(context.Context, geo.Point, float64) ([]geo.Point, error) {
	return f.points, f.err
}

func (f fakePoints) CavitiesAround(context.Context, geo.Point, float64) ([]geo.Point, error) {
	return f.points, f.err
}

func (f fakePoints) InstallationsAround(context.Context, geo.Point, float64) ([]geo.Point, error) {
	return f.points, f.err
}

type fakeTownHall struct {
	point geo.Point
	err   error
}

func (f fakeTownHall) TownHall(context.Context, string) (geo.Point, error) { return f.point, f.err }

type fakeRoads struct {
	lines [][]geo.Point
	err   error
}

func (f fakeRoads) RoadsAround(context.Context, geo.Point, float64) ([][]geo.Point, error) {
	return f.lines, f.err
}

type fakeHousing struct {
	vacant, total int64
	err           error
}

func (f fakeHousing) HousingCounts(context.Context, string) (int64, int64, error) {
	return f.vacant, f.total, f.err
}

type fakeClay struct {
	exposure ClayExposure
	err      error
}

func (f fakeClay) ClayExposure(context.Context, geo.Point) (ClayExposure, error) {
	return f.exposure, f.err
}

type fakeSIS struct {
	in    bool
	err   error
	panic bool
}

func (f fakeSIS) InPollutedSite(context.Context, geo.Point) (bool, error) {
	if f.panic {
		panic("sis adapter bug")
	}
	return f.in, f.err
}

type fakeEnvironment struct {
	zoning   parcel.EnvironmentalZoning
	corridor parcel.GreenBlueCorridor
	err      error
}

func (f fakeEnvironment) EnvironmentalZoning(context.Context, geo.Polygon) (parcel.EnvironmentalZoning, parcel.GreenBlueCorridor, error) {
	return f.zoning, f.corridor, f.err
}

type fakeHeritage struct {
	zoning parcel.HeritageZoning
	err    error
}

func (f fakeHeritage) HeritageZoning(context.Context, geo.Polygon) (parcel.HeritageZoning, error) {
	return f.zoning, f.err
}

type fakeUrbanPlan struct {
	zone parcel.RegulatoryZoning
	err  error
}

func (f fakeUrbanPlan) ZoneType(context.Context, string, geo.Polygon) (parcel.RegulatoryZoning, error) {
	return f.zone, f.err
}

type fakeFanOut struct {
	result parcel.GeoRiskResult
}

func (f fakeFanOut) FetchAll(context.Context, geo.Point) parcel.GeoRiskResult { return f.result }

// offset returns a point roughly metres north of p.
func offset(p geo.Point, metres float64) geo.Point {
	return geo.Point{Lat: p.Lat + metres/111_195.0, Lon: p.Lon}
}
