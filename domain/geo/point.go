package geo

import (
	"fmt"
	"math"
)

// Point is a query position in degrees
type Point struct {
	Lat float64
	Lon float64
}

// NewPoint creates a Point, rejecting NaN and infinite values.
// Out-of-range degrees are accepted and simply match a distant row.
func NewPoint(lat, lon float64) (Point, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return Point{}, fmt.Errorf("coordinates must be finite numbers, got (%v, %v)", lat, lon)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// String returns the point as "lat,lon"
func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lon)
}

// DistanceTo returns the Euclidean distance in raw degree units.
// This is not a great-circle distance; logged points are close together.
func (p Point) DistanceTo(lat, lon float64) float64 {
	dLat := lat - p.Lat
	dLon := lon - p.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
