package routing_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/campusgo/campusnav/internal/models"
	"github.com/campusgo/campusnav/internal/routing"
)

// fakeDirections serves canned durations per travel mode.
type fakeDirections struct {
	mu        sync.Mutex
	durations map[models.TravelMode]float64
	errs      map[models.TravelMode]error
	walkLegs  float64
	calls     int
}

func (f *fakeDirections) Directions(ctx context.Context, origin, destination string, mode models.TravelMode) (models.RouteSegment, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err := f.errs[mode]; err != nil {
		return models.RouteSegment{}, err
	}
	duration, ok := f.durations[mode]
	if !ok {
		duration = f.walkLegs
	}
	return models.RouteSegment{
		Kind:    models.SegmentOutdoor,
		Summary: models.RouteSummary{Mode: mode, DurationSeconds: duration},
		Steps:   []models.Step{{Instruction: fmt.Sprintf("Head to %s", destination)}},
	}, nil
}

type fakePlanner struct {
	ride *routing.ShuttleRide
	err  error
}

func (f *fakePlanner) PlanRide(ctx context.Context, origin, destination models.Coordinates, departAfter time.Time) (*routing.ShuttleRide, error) {
	return f.ride, f.err
}

// recordingCanvas counts renderer calls.
type recordingCanvas struct {
	mu      sync.Mutex
	draws   int
	clears  int
	markers []string
	cleared int
}

func (c *recordingCanvas) DrawRoute(models.RouteSegment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draws++
	return nil
}

func (c *recordingCanvas) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
	return nil
}

func (c *recordingCanvas) PlaceMarker(label string, at models.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers = append(c.markers, label)
	return nil
}

func (c *recordingCanvas) ClearMarkers() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	return nil
}

func outdoorLoc(title string) models.OutdoorLocation {
	return models.OutdoorLocation{
		Title:       title,
		Address:     title + " street",
		Coordinates: models.Coordinates{Lat: 45.49, Lng: -73.57},
	}
}

func TestGetRouteValidation(t *testing.T) {
	p := routing.NewOutdoorProvider(&fakeDirections{}, nil, &recordingCanvas{}, &recordingCanvas{}, nil)
	ctx := context.Background()

	indoor := models.IndoorLocation{Title: "H 531"}

	tests := []struct {
		name        string
		start, dest models.Location
		wantErr     error
	}{
		{"indoor start", indoor, outdoorLoc("B"), models.ErrMixedRouting},
		{"indoor destination", outdoorLoc("A"), indoor, models.ErrMixedRouting},
		{"empty start address", models.OutdoorLocation{Title: "A"}, outdoorLoc("B"), models.ErrInvalidAddress},
		{"empty destination address", outdoorLoc("A"), models.OutdoorLocation{Title: "B", Address: "   "}, models.ErrInvalidAddress},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.GetRoute(ctx, tc.start, tc.dest, models.ModeWalking)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("GetRoute error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestGetShortestRoutePicksMinimum(t *testing.T) {
	directions := &fakeDirections{
		durations: map[models.TravelMode]float64{
			models.ModeWalking: 50,
			models.ModeDriving: 30,
			models.ModeTransit: 70,
		},
		errs: map[models.TravelMode]error{},
	}
	// The shuttle planner fails so the shuttle mode is discarded.
	p := routing.NewOutdoorProvider(directions, &fakePlanner{err: errors.New("no stops")}, &recordingCanvas{}, &recordingCanvas{}, nil)

	segment, err := p.GetShortestRoute(context.Background(), outdoorLoc("A"), outdoorLoc("B"))
	if err != nil {
		t.Fatalf("GetShortestRoute: %v", err)
	}
	if segment.Summary.Mode != models.ModeDriving {
		t.Errorf("mode = %v, want driving", segment.Summary.Mode)
	}
	if segment.Summary.DurationSeconds != 30 {
		t.Errorf("duration = %v, want 30", segment.Summary.DurationSeconds)
	}
}

func TestGetShortestRouteTieGoesToEarlierMode(t *testing.T) {
	directions := &fakeDirections{
		durations: map[models.TravelMode]float64{
			models.ModeWalking: 30,
			models.ModeDriving: 30,
			models.ModeTransit: 30,
		},
	}
	p := routing.NewOutdoorProvider(directions, &fakePlanner{err: errors.New("no stops")}, &recordingCanvas{}, &recordingCanvas{}, nil)

	segment, err := p.GetShortestRoute(context.Background(), outdoorLoc("A"), outdoorLoc("B"))
	if err != nil {
		t.Fatalf("GetShortestRoute: %v", err)
	}
	if segment.Summary.Mode != models.ModeWalking {
		t.Errorf("mode = %v, want walking on a tie", segment.Summary.Mode)
	}
}

func TestGetShortestRouteAllModesFail(t *testing.T) {
	failed := errors.New("upstream down")
	directions := &fakeDirections{
		errs: map[models.TravelMode]error{
			models.ModeWalking: failed,
			models.ModeDriving: failed,
			models.ModeTransit: failed,
		},
	}
	p := routing.NewOutdoorProvider(directions, &fakePlanner{err: failed}, &recordingCanvas{}, &recordingCanvas{}, nil)

	_, err := p.GetShortestRoute(context.Background(), outdoorLoc("A"), outdoorLoc("B"))
	if !errors.Is(err, models.ErrNoRoute) {
		t.Errorf("error = %v, want ErrNoRoute", err)
	}
}

func TestShuttleRouteComposition(t *testing.T) {
	departs := time.Now().Add(4 * time.Minute)
	planner := &fakePlanner{ride: &routing.ShuttleRide{
		FromStop:        "Downtown Shuttle Stop",
		ToStop:          "Lakeside Shuttle Stop",
		FromCoordinates: models.Coordinates{Lat: 45.497, Lng: -73.578},
		ToCoordinates:   models.Coordinates{Lat: 45.458, Lng: -73.64},
		Departs:         departs,
		WaitSeconds:     240,
		RideSeconds:     1500,
		DistanceMeters:  6200,
	}}
	directions := &fakeDirections{walkLegs: 120} // each walking leg
	p := routing.NewOutdoorProvider(directions, planner, &recordingCanvas{}, &recordingCanvas{}, nil)

	segment, err := p.GetRoute(context.Background(), outdoorLoc("A"), outdoorLoc("B"), models.ModeShuttle)
	if err != nil {
		t.Fatalf("GetRoute(shuttle): %v", err)
	}

	want := 120 + 240 + 1500 + 120.0
	if segment.Summary.DurationSeconds != want {
		t.Errorf("duration = %v, want %v", segment.Summary.DurationSeconds, want)
	}
	if segment.Summary.Mode != models.ModeShuttle {
		t.Errorf("mode = %v, want shuttle", segment.Summary.Mode)
	}
	// walk in, board, ride, walk out
	if len(segment.Steps) != 4 {
		t.Errorf("steps = %d, want 4", len(segment.Steps))
	}
}

func TestShuttleModeWithoutPlanner(t *testing.T) {
	p := routing.NewOutdoorProvider(&fakeDirections{}, nil, &recordingCanvas{}, &recordingCanvas{}, nil)

	_, err := p.GetRoute(context.Background(), outdoorLoc("A"), outdoorLoc("B"), models.ModeShuttle)
	if err == nil {
		t.Error("expected an error with no shuttle planner configured")
	}
}

func TestMarkersAndClearNavigation(t *testing.T) {
	canvas := &recordingCanvas{}
	p := routing.NewOutdoorProvider(&fakeDirections{}, nil, canvas, canvas, nil)

	// Clearing with nothing rendered is a no-op.
	if err := p.ClearNavigation(); err != nil {
		t.Fatalf("ClearNavigation: %v", err)
	}
	if canvas.clears != 0 || canvas.cleared != 0 {
		t.Error("clear should be a no-op before anything is rendered")
	}

	if err := p.PlaceStartMarker(); err == nil {
		t.Error("expected an error placing a marker with no start point")
	}

	p.SetStartPoint(outdoorLoc("Current location"))
	p.SetDestinationPoint(outdoorLoc("Library"))
	if err := p.PlaceStartMarker(); err != nil {
		t.Fatalf("PlaceStartMarker: %v", err)
	}
	if err := p.PlaceDestinationMarker(); err != nil {
		t.Fatalf("PlaceDestinationMarker: %v", err)
	}
	if len(canvas.markers) != 2 {
		t.Fatalf("markers = %v, want 2 placed", canvas.markers)
	}

	if err := p.RenderRoute(models.RouteSegment{Kind: models.SegmentOutdoor}); err != nil {
		t.Fatalf("RenderRoute: %v", err)
	}
	if err := p.ClearNavigation(); err != nil {
		t.Fatalf("ClearNavigation: %v", err)
	}
	if canvas.clears != 1 || canvas.cleared != 1 {
		t.Errorf("clears = %d, marker clears = %d, want 1 and 1", canvas.clears, canvas.cleared)
	}

	// A second clear is again a no-op.
	if err := p.ClearNavigation(); err != nil {
		t.Fatalf("ClearNavigation: %v", err)
	}
	if canvas.clears != 1 {
		t.Error("second clear should not touch the canvas")
	}
}
