// Package geo holds the small amount of geodesy agencies and establishment
// search need.
package geo

import "math"

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32
)

// Position is a WGS84 coordinate.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is within WGS84 bounds.
func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b Position) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Box is a latitude/longitude rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether p lies inside b, bounds included.
func (b Box) Contains(p Position) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BoundingBox returns a rectangle holding every point within km of center.
// It over-approximates the circle, callers still filter with DistanceKm.
func BoundingBox(center Position, km float64) Box {
	dLat := km / kmPerDegree
	b := Box{
		MinLat: math.Max(center.Lat-dLat, -90),
		MaxLat: math.Min(center.Lat+dLat, 90),
		MinLon: -180,
		MaxLon: 180,
	}
	cos := math.Cos(toRadians(center.Lat))
	if cos < 1e-6 || b.MinLat == -90 || b.MaxLat == 90 {
		return b
	}
	dLon := km / (kmPerDegree * cos)
	if dLon >= 180 {
		return b
	}
	b.MinLon = math.Max(center.Lon-dLon, -180)
	b.MaxLon = math.Min(center.Lon+dLon, 180)
	return b
}
