package geolocation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campusgo/campusnav/internal/models"
)

var campusDefault = models.Coordinates{Lat: 45.497, Lng: -73.578}

func TestGetCurrentLocationCached(t *testing.T) {
	l := NewDeviceLocator(campusDefault, 50*time.Millisecond, time.Minute)

	reported := models.Coordinates{Lat: 45.495, Lng: -73.579}
	l.Report(reported)

	got, err := l.GetCurrentLocation(context.Background(), false)
	if err != nil {
		t.Fatalf("GetCurrentLocation: %v", err)
	}
	if got == nil || *got != reported {
		t.Errorf("position = %v, want the reported one", got)
	}
}

func TestGetCurrentLocationWaitsForReport(t *testing.T) {
	l := NewDeviceLocator(campusDefault, time.Second, time.Minute)

	reported := models.Coordinates{Lat: 45.495, Lng: -73.579}
	go func() {
		time.Sleep(20 * time.Millisecond)
		l.Report(reported)
	}()

	got, err := l.GetCurrentLocation(context.Background(), false)
	if err != nil {
		t.Fatalf("GetCurrentLocation: %v", err)
	}
	if got == nil || *got != reported {
		t.Errorf("position = %v, want the reported one", got)
	}
}

func TestGetCurrentLocationFallback(t *testing.T) {
	l := NewDeviceLocator(campusDefault, 10*time.Millisecond, time.Minute)

	got, err := l.GetCurrentLocation(context.Background(), true)
	if err != nil {
		t.Fatalf("GetCurrentLocation: %v", err)
	}
	if got == nil || *got != campusDefault {
		t.Errorf("position = %v, want the campus default", got)
	}
}

func TestGetCurrentLocationSoftFailure(t *testing.T) {
	l := NewDeviceLocator(campusDefault, 10*time.Millisecond, time.Minute)

	got, err := l.GetCurrentLocation(context.Background(), false)
	if err != nil {
		t.Fatalf("GetCurrentLocation: %v", err)
	}
	if got != nil {
		t.Errorf("position = %v, want nil without fallback", got)
	}
}

func TestGetCurrentLocationStaleReport(t *testing.T) {
	l := NewDeviceLocator(campusDefault, 10*time.Millisecond, time.Nanosecond)

	l.Report(models.Coordinates{Lat: 45.495, Lng: -73.579})
	time.Sleep(time.Millisecond)

	// The cached report is past maxAge, so the lookup degrades to the
	// fallback.
	got, err := l.GetCurrentLocation(context.Background(), true)
	if err != nil {
		t.Fatalf("GetCurrentLocation: %v", err)
	}
	if got == nil || *got != campusDefault {
		t.Errorf("position = %v, want the campus default", got)
	}
}

func TestGetCurrentLocationContextCancel(t *testing.T) {
	l := NewDeviceLocator(campusDefault, time.Minute, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	got, err := l.GetCurrentLocation(ctx, false)
	if err != nil {
		t.Fatalf("GetCurrentLocation: %v", err)
	}
	if got != nil {
		t.Errorf("position = %v, want nil on cancellation", got)
	}
	if time.Since(start) > time.Second {
		t.Error("lookup should return promptly after cancellation")
	}
}

func TestWatchLocation(t *testing.T) {
	l := NewDeviceLocator(campusDefault, time.Second, time.Minute)

	var mu sync.Mutex
	var seen []models.Coordinates
	id := l.WatchLocation(func(c models.Coordinates) {
		mu.Lock()
		seen = append(seen, c)
		mu.Unlock()
	})

	first := models.Coordinates{Lat: 45.495, Lng: -73.579}
	second := models.Coordinates{Lat: 45.496, Lng: -73.580}
	l.Report(first)
	l.Report(second)

	mu.Lock()
	n := len(seen)
	mu.Unlock()
	if n != 2 {
		t.Fatalf("watch saw %d reports, want 2", n)
	}

	l.ClearWatch(id)
	l.Report(first)

	mu.Lock()
	n = len(seen)
	mu.Unlock()
	if n != 2 {
		t.Error("cleared watch should see no further reports")
	}
}
