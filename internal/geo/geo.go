// Package geo provides small geodesic helpers shared by the providers.
package geo

import (
	"math"

	"github.com/campusgo/campusnav/internal/models"
)

const earthRadiusMeters = 6371000

// Outdoor walking pace used when estimating a leg without provider data.
const walkingSpeedMps = 1.4

// Haversine calculates the distance in meters between two lat/lng points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Distance is Haversine over two Coordinates values.
func Distance(a, b models.Coordinates) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// WalkingSeconds estimates the time to walk the given distance.
func WalkingSeconds(meters float64) float64 {
	return meters / walkingSpeedMps
}

// MetersToMiles converts meters to miles.
func MetersToMiles(meters float64) float64 {
	return meters / 1609.344
}
