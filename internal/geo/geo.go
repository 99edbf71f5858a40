// Package geo provides the coordinate parsing and great-circle helpers used by
// the proximity search.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean earth radius used by DistanceMeters.
const EarthRadiusMeters = 6371000.0

// minLonScale keeps the longitude delta finite near the poles.
const minLonScale = 1e-6

// ErrFormat is returned when a stored coordinate cannot be parsed.
var ErrFormat = errors.New("invalid coordinate format")

// ParseCoordinate parses a "<lat>,<lon>" string into decimal degrees.
//
// Whitespace around either part is ignored. Values are not range checked, but
// non-finite values are rejected.
func ParseCoordinate(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected \"lat,lon\", got %q", ErrFormat, s)
	}

	lat, err = parseDegrees(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude %q", ErrFormat, parts[0])
	}

	lon, err = parseDegrees(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude %q", ErrFormat, parts[1])
	}

	return lat, lon, nil
}

func parseDegrees(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}
	return v, nil
}

// FormatCoordinate renders a coordinate in the stored "lat,lon" form.
func FormatCoordinate(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

// DistanceMeters returns the haversine distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// rounding can push a a hair past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Box is an axis aligned latitude/longitude rectangle.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundingBox returns a box around (lat, lon) that contains every point within
// radiusMeters. It is a coarse pre-filter; callers still check the exact distance.
func BoundingBox(lat, lon, radiusMeters float64) Box {
	latDelta := (radiusMeters / EarthRadiusMeters) * (180 / math.Pi)
	lonDelta := latDelta / math.Max(math.Cos(toRadians(lat)), minLonScale)

	return Box{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}

// Contains reports whether the point lies inside the box, edges included.
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
