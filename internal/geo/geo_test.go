package geo

import (
	"math"
	"testing"

	"github.com/campusgo/campusnav/internal/models"
)

func TestDistance(t *testing.T) {
	downtown := models.Coordinates{Lat: 45.49701, Lng: -73.57878}
	lakeside := models.Coordinates{Lat: 45.45842, Lng: -73.64050}

	d := Distance(downtown, lakeside)
	// About 6.4 km between the two campuses.
	if d < 6000 || d > 7000 {
		t.Errorf("distance = %v m, want roughly 6.4 km", d)
	}

	if Distance(downtown, downtown) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestWalkingSeconds(t *testing.T) {
	if got := WalkingSeconds(140); math.Abs(got-100) > 0.01 {
		t.Errorf("WalkingSeconds(140) = %v, want 100", got)
	}
}

func TestMetersToMiles(t *testing.T) {
	if got := MetersToMiles(1609.344); math.Abs(got-1) > 1e-9 {
		t.Errorf("MetersToMiles(1609.344) = %v, want 1", got)
	}
}
