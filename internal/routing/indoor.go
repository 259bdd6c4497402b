package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/campusgo/campusnav/internal/mapdata"
	"github.com/campusgo/campusnav/internal/models"
)

// ErrIndoorOnly is returned when an endpoint handed to the indoor provider
// is not an indoor location.
var ErrIndoorOnly = errors.New("indoor routing requires two indoor locations")

// MapSource provides building map graphs, loading them on first use.
type MapSource interface {
	Load(indoorMapID string) (*mapdata.Map, error)
}

// IndoorProvider computes turn-by-turn indoor directions. Both the standard
// and accessible variants are computed up front; the accessibility toggle
// picks the variant at render time, so flipping it re-renders without
// recomputing. Cross-building routes are two independent legs, one per
// building graph, joined at detected entrances.
type IndoorProvider struct {
	maps     MapSource
	renderer Renderer
	log      *slog.Logger

	accessible atomic.Bool

	mu          sync.Mutex
	legs        []computedLeg
	destination *models.IndoorLocation
	active      bool
}

type computedLeg struct {
	mapID      string
	standard   *mapdata.Directions
	accessible *mapdata.Directions
}

// NewIndoorProvider wires the provider to its map source and renderer.
func NewIndoorProvider(maps MapSource, renderer Renderer, log *slog.Logger) *IndoorProvider {
	if log == nil {
		log = slog.Default()
	}
	return &IndoorProvider{maps: maps, renderer: renderer, log: log}
}

// SetAccessible flips the accessible-path toggle. It is read at render time,
// not compute time.
func (p *IndoorProvider) SetAccessible(on bool) {
	p.accessible.Store(on)
}

// Accessible reports the current toggle state.
func (p *IndoorProvider) Accessible() bool {
	return p.accessible.Load()
}

// GetRoute computes indoor directions between two resolved rooms. Loading
// the backing map graph happens here if it is not yet resident.
func (p *IndoorProvider) GetRoute(ctx context.Context, start, destination models.Location, mode models.TravelMode) (models.RouteSegment, error) {
	from, ok := start.(models.IndoorLocation)
	if !ok {
		return models.RouteSegment{}, ErrIndoorOnly
	}
	to, ok := destination.(models.IndoorLocation)
	if !ok {
		return models.RouteSegment{}, ErrIndoorOnly
	}
	if from.Room == nil || to.Room == nil {
		return models.RouteSegment{}, errors.New("indoor routing requires resolved rooms")
	}

	var legs []computedLeg
	if from.IndoorMapID == to.IndoorMapID {
		leg, err := p.computeLeg(from.IndoorMapID, *from.Room, *to.Room)
		if err != nil {
			return models.RouteSegment{}, err
		}
		if leg.standard == nil {
			return models.RouteSegment{}, models.ErrNoRoute
		}
		legs = []computedLeg{leg}
	} else {
		crossLegs, err := p.crossBuildingLegs(from, to)
		if err != nil {
			return models.RouteSegment{}, err
		}
		legs = crossLegs
	}

	p.mu.Lock()
	p.legs = legs
	p.mu.Unlock()

	return segmentFromLegs(legs), nil
}

// crossBuildingLegs computes one leg per building: room to entrance on the
// start side, entrance to room on the destination side. A building with no
// detected entrance yields an empty leg, silently incomplete.
func (p *IndoorProvider) crossBuildingLegs(from, to models.IndoorLocation) ([]computedLeg, error) {
	fromMap, err := p.maps.Load(from.IndoorMapID)
	if err != nil {
		return nil, fmt.Errorf("loading indoor map %s: %w", from.IndoorMapID, err)
	}
	toMap, err := p.maps.Load(to.IndoorMapID)
	if err != nil {
		return nil, fmt.Errorf("loading indoor map %s: %w", to.IndoorMapID, err)
	}

	legs := make([]computedLeg, 0, 2)

	exitLeg := computedLeg{mapID: from.IndoorMapID}
	if entrances := fromMap.Entrances(); len(entrances) > 0 {
		exitLeg.standard = fromMap.GetDirections(*from.Room, entrances[0], false)
		exitLeg.accessible = fromMap.GetDirections(*from.Room, entrances[0], true)
	}
	legs = append(legs, exitLeg)

	enterLeg := computedLeg{mapID: to.IndoorMapID}
	if entrances := toMap.Entrances(); len(entrances) > 0 {
		enterLeg.standard = toMap.GetDirections(entrances[0], *to.Room, false)
		enterLeg.accessible = toMap.GetDirections(entrances[0], *to.Room, true)
	}
	legs = append(legs, enterLeg)

	return legs, nil
}

func (p *IndoorProvider) computeLeg(mapID string, from, to models.RoomRef) (computedLeg, error) {
	m, err := p.maps.Load(mapID)
	if err != nil {
		return computedLeg{}, fmt.Errorf("loading indoor map %s: %w", mapID, err)
	}
	return computedLeg{
		mapID:      mapID,
		standard:   m.GetDirections(from, to, false),
		accessible: m.GetDirections(from, to, true),
	}, nil
}

// SetDestination records the indoor destination for the current-location
// flow.
func (p *IndoorProvider) SetDestination(dest models.IndoorLocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destination = &dest
}

// Destination returns the recorded indoor destination, if any.
func (p *IndoorProvider) Destination() (models.IndoorLocation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destination == nil {
		return models.IndoorLocation{}, false
	}
	return *p.destination, true
}

// RenderDestination computes entrance-to-room directions for the recorded
// destination and draws them. Any failure is returned so the caller can fall
// back to outdoor routing.
func (p *IndoorProvider) RenderDestination(ctx context.Context) error {
	p.mu.Lock()
	dest := p.destination
	p.mu.Unlock()
	if dest == nil || dest.Room == nil {
		return errors.New("no resolved indoor destination")
	}

	m, err := p.maps.Load(dest.IndoorMapID)
	if err != nil {
		return fmt.Errorf("loading indoor map %s: %w", dest.IndoorMapID, err)
	}
	entrances := m.Entrances()
	if len(entrances) == 0 {
		return fmt.Errorf("no entrance found in map %s", dest.IndoorMapID)
	}

	leg := computedLeg{
		mapID:      dest.IndoorMapID,
		standard:   m.GetDirections(entrances[0], *dest.Room, false),
		accessible: m.GetDirections(entrances[0], *dest.Room, true),
	}
	if leg.standard == nil {
		return fmt.Errorf("no indoor path to %s", dest.Title)
	}

	p.mu.Lock()
	p.legs = []computedLeg{leg}
	p.mu.Unlock()

	return p.RenderNavigation()
}

// RenderNavigation draws the computed legs using the variant chosen by the
// accessibility toggle. Legs with no directions are skipped silently.
func (p *IndoorProvider) RenderNavigation() error {
	p.mu.Lock()
	legs := make([]computedLeg, len(p.legs))
	copy(legs, p.legs)
	p.mu.Unlock()

	if len(legs) == 0 {
		return errors.New("no indoor navigation computed")
	}

	accessible := p.accessible.Load()
	for _, leg := range legs {
		directions := leg.standard
		if accessible && leg.accessible != nil {
			directions = leg.accessible
		}
		if directions == nil {
			continue
		}
		if err := p.renderer.DrawRoute(segmentFromDirections(directions)); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.active = true
	p.mu.Unlock()
	return nil
}

// ClearNavigation removes any drawn indoor navigation. Calling it with no
// active navigation is a no-op.
func (p *IndoorProvider) ClearNavigation() error {
	p.mu.Lock()
	active := p.active
	p.active = false
	p.legs = nil
	p.mu.Unlock()
	if !active {
		return nil
	}
	return p.renderer.Clear()
}

func segmentFromDirections(d *mapdata.Directions) models.RouteSegment {
	return models.RouteSegment{
		Kind: models.SegmentIndoor,
		Summary: models.RouteSummary{
			DurationSeconds: d.DurationSeconds,
			DistanceMeters:  d.DistanceMeters,
		},
		Steps: d.Steps,
	}
}

func segmentFromLegs(legs []computedLeg) models.RouteSegment {
	segment := models.RouteSegment{Kind: models.SegmentIndoor}
	for _, leg := range legs {
		if leg.standard == nil {
			continue
		}
		segment.Summary.DurationSeconds += leg.standard.DurationSeconds
		segment.Summary.DistanceMeters += leg.standard.DistanceMeters
		segment.Steps = append(segment.Steps, leg.standard.Steps...)
	}
	return segment
}
