// Package geo provides the small amount of geometry the enrichment pipeline needs:
// great-circle distances, point-to-segment distances and polygon centroids.
//
// Results are approximations. Distances use a spherical Earth and segments are
// projected onto a local equirectangular plane, which is accurate to a few metres
// at parcel scale.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by Haversine.
const EarthRadiusMeters = 6371008.8

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// Polygon is a single outer ring. The closing vertex may or may not repeat the first one.
type Polygon []Point

// Haversine returns the great-circle distance between a and b in metres.
func Haversine(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceToSegment returns the distance in metres from p to the segment [a, b].
func DistanceToSegment(p, a, b Point) float64 {
	ax, ay := project(a, p)
	bx, by := project(b, p)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay)
	}

	// p is the projection origin, so the vector from a to p is (-ax, -ay).
	t := (-ax*dx - ay*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(ax+t*dx, ay+t*dy)
}

// DistanceToLine returns the shortest distance in metres from p to a polyline.
// It returns +Inf for an empty line.
func DistanceToLine(p Point, line []Point) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return Haversine(p, line[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		if d := DistanceToSegment(p, line[i-1], line[i]); d < best {
			best = d
		}
	}
	return best
}

// Centroid approximates the centroid of a polygon as the mean of its distinct vertices.
// The second return value is false for an empty polygon.
func Centroid(poly Polygon) (Point, bool) {
	vertices := poly
	if n := len(vertices); n > 1 && vertices[0] == vertices[n-1] {
		vertices = vertices[:n-1]
	}
	if len(vertices) == 0 {
		return Point{}, false
	}

	var lat, lon float64
	for _, v := range vertices {
		lat += v.Lat
		lon += v.Lon
	}
	n := float64(len(vertices))
	return Point{Lat: lat / n, Lon: lon / n}, true
}

// project maps q onto a local plane centred on origin, in metres.
func project(q, origin Point) (x, y float64) {
	x = radians(q.Lon-origin.Lon) * math.Cos(radians(origin.Lat)) * EarthRadiusMeters
	y = radians(q.Lat-origin.Lat) * EarthRadiusMeters
	return x, y
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
