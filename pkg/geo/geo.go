// Package geo holds the small amount of spherical geometry used for map and
// nearby queries.
package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// ErrInvalidBounds is returned for malformed bounding boxes.
var ErrInvalidBounds = errors.New("bounds must be north,south,east,west in degrees")

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Bounds is a latitude/longitude box. West > East means the box crosses the
// antimeridian.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ParseBounds parses "north,south,east,west".
func ParseBounds(raw string) (Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return Bounds{}, ErrInvalidBounds
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Bounds{}, ErrInvalidBounds
		}
		v[i] = f
	}
	b := Bounds{North: v[0], South: v[1], East: v[2], West: v[3]}
	if b.North < b.South || b.North > 90 || b.South < -90 ||
		math.Abs(b.East) > 180 || math.Abs(b.West) > 180 {
		return Bounds{}, ErrInvalidBounds
	}
	return b, nil
}

// Contains reports whether the point lies inside b, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	if lat < b.South || lat > b.North {
		return false
	}
	if b.West <= b.East {
		return lon >= b.West && lon <= b.East
	}
	return lon >= b.West || lon <= b.East
}
