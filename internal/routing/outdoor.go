package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/campusgo/campusnav/internal/models"
)

// OutdoorProvider routes between street-addressable locations via the
// directions client, racing the four travel-mode strategies for shortest
// route selection. It also owns the outdoor render state: start and
// destination points, markers, and the active polyline.
type OutdoorProvider struct {
	directions DirectionsClient
	shuttle    ShuttlePlanner
	renderer   Renderer
	markers    MarkerRenderer
	log        *slog.Logger

	mu          sync.Mutex
	start       *models.OutdoorLocation
	destination *models.OutdoorLocation
	active      bool
}

// NewOutdoorProvider wires the provider to its collaborators. The shuttle
// planner may be nil when no shuttle is configured; the shuttle mode then
// simply never wins.
func NewOutdoorProvider(directions DirectionsClient, shuttle ShuttlePlanner, renderer Renderer, markers MarkerRenderer, log *slog.Logger) *OutdoorProvider {
	if log == nil {
		log = slog.Default()
	}
	return &OutdoorProvider{
		directions: directions,
		shuttle:    shuttle,
		renderer:   renderer,
		markers:    markers,
		log:        log,
	}
}

// GetRoute computes one travel-mode leg between two outdoor locations. Both
// endpoints must carry a non-empty address.
func (p *OutdoorProvider) GetRoute(ctx context.Context, start, destination models.Location, mode models.TravelMode) (models.RouteSegment, error) {
	from, ok := start.(models.OutdoorLocation)
	if !ok {
		return models.RouteSegment{}, models.ErrMixedRouting
	}
	to, ok := destination.(models.OutdoorLocation)
	if !ok {
		return models.RouteSegment{}, models.ErrMixedRouting
	}
	if strings.TrimSpace(from.Address) == "" || strings.TrimSpace(to.Address) == "" {
		return models.RouteSegment{}, models.ErrInvalidAddress
	}

	if mode == models.ModeShuttle {
		return p.shuttleRoute(ctx, from, to)
	}
	return p.directions.Directions(ctx, from.Address, to.Address, mode)
}

// GetShortestRoute races all travel modes concurrently and keeps the one
// with the lowest total duration. Failed modes are discarded; equal
// durations go to the earlier mode in models.OutdoorModes.
func (p *OutdoorProvider) GetShortestRoute(ctx context.Context, start, destination models.Location) (models.RouteSegment, error) {
	results := make([]*models.RouteSegment, len(models.OutdoorModes))
	var wg sync.WaitGroup
	for i, mode := range models.OutdoorModes {
		wg.Add(1)
		go func(i int, mode models.TravelMode) {
			defer wg.Done()
			segment, err := p.GetRoute(ctx, start, destination, mode)
			if err != nil {
				p.log.Debug("travel mode discarded", "mode", mode, "error", err)
				return
			}
			results[i] = &segment
		}(i, mode)
	}
	wg.Wait()

	var best *models.RouteSegment
	for _, segment := range results {
		if segment == nil {
			continue
		}
		if best == nil || segment.Summary.DurationSeconds < best.Summary.DurationSeconds {
			best = segment
		}
	}
	if best == nil {
		return models.RouteSegment{}, models.ErrNoRoute
	}
	return *best, nil
}

// shuttleRoute composes walk-ride-walk via the planned shuttle stops. The
// total duration is the sum across all three legs plus the wait at the stop.
func (p *OutdoorProvider) shuttleRoute(ctx context.Context, from, to models.OutdoorLocation) (models.RouteSegment, error) {
	if p.shuttle == nil {
		return models.RouteSegment{}, errors.New("shuttle planner not configured")
	}
	ride, err := p.shuttle.PlanRide(ctx, from.Coordinates, to.Coordinates, time.Now())
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("planning shuttle ride: %w", err)
	}

	walkIn, err := p.directions.Directions(ctx, from.Coordinates.String(), ride.FromCoordinates.String(), models.ModeWalking)
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("walking leg to shuttle stop: %w", err)
	}
	walkOut, err := p.directions.Directions(ctx, ride.ToCoordinates.String(), to.Coordinates.String(), models.ModeWalking)
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("walking leg from shuttle stop: %w", err)
	}

	segment := models.RouteSegment{
		Kind: models.SegmentOutdoor,
		Summary: models.RouteSummary{
			Mode: models.ModeShuttle,
			DurationSeconds: walkIn.Summary.DurationSeconds +
				ride.WaitSeconds + ride.RideSeconds +
				walkOut.Summary.DurationSeconds,
			DistanceMeters: walkIn.Summary.DistanceMeters +
				ride.DistanceMeters +
				walkOut.Summary.DistanceMeters,
		},
	}
	segment.Steps = append(segment.Steps, walkIn.Steps...)
	segment.Steps = append(segment.Steps,
		models.Step{
			Instruction:     fmt.Sprintf("Board the campus shuttle at %s (departs %s)", ride.FromStop, ride.Departs.Format("15:04")),
			DurationSeconds: ride.WaitSeconds,
		},
		models.Step{
			Instruction:     fmt.Sprintf("Ride the shuttle to %s", ride.ToStop),
			DistanceMeters:  ride.DistanceMeters,
			DurationSeconds: ride.RideSeconds,
		},
	)
	segment.Steps = append(segment.Steps, walkOut.Steps...)
	return segment, nil
}

// SetStartPoint records the route origin.
func (p *OutdoorProvider) SetStartPoint(l models.OutdoorLocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = &l
}

// SetDestinationPoint records the route destination.
func (p *OutdoorProvider) SetDestinationPoint(l models.OutdoorLocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destination = &l
}

// StartPoint returns the recorded origin, if any.
func (p *OutdoorProvider) StartPoint() (models.OutdoorLocation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start == nil {
		return models.OutdoorLocation{}, false
	}
	return *p.start, true
}

// DestinationPoint returns the recorded destination, if any.
func (p *OutdoorProvider) DestinationPoint() (models.OutdoorLocation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destination == nil {
		return models.OutdoorLocation{}, false
	}
	return *p.destination, true
}

// PlaceStartMarker renders a marker at the recorded origin.
func (p *OutdoorProvider) PlaceStartMarker() error {
	p.mu.Lock()
	start := p.start
	p.mu.Unlock()
	if start == nil {
		return errors.New("no start point set")
	}
	return p.markers.PlaceMarker(start.Title, start.Coordinates)
}

// PlaceDestinationMarker renders a marker at the recorded destination.
func (p *OutdoorProvider) PlaceDestinationMarker() error {
	p.mu.Lock()
	destination := p.destination
	p.mu.Unlock()
	if destination == nil {
		return errors.New("no destination point set")
	}
	return p.markers.PlaceMarker(destination.Title, destination.Coordinates)
}

// RenderRoute draws the segment on the outdoor canvas.
func (p *OutdoorProvider) RenderRoute(segment models.RouteSegment) error {
	if err := p.renderer.DrawRoute(segment); err != nil {
		return err
	}
	p.mu.Lock()
	p.active = true
	p.mu.Unlock()
	return nil
}

// ClearNavigation removes any rendered route and markers. Calling it with no
// active route is a no-op.
func (p *OutdoorProvider) ClearNavigation() error {
	p.mu.Lock()
	active := p.active
	p.active = false
	p.mu.Unlock()
	if !active {
		return nil
	}
	if err := p.renderer.Clear(); err != nil {
		return err
	}
	return p.markers.ClearMarkers()
}
