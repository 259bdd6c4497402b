// Package navigation coordinates route requests across the outdoor and
// indoor providers: it classifies start/destination pairs, dispatches to the
// matching provider, and runs the best-effort current-location flow with
// fallback on failure.
package navigation

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/campusgo/campusnav/internal/mapstate"
	"github.com/campusgo/campusnav/internal/models"
)

const currentLocationTitle = "Current location"

// OutdoorRouter is the outdoor provider surface the coordinator drives.
type OutdoorRouter interface {
	GetRoute(ctx context.Context, start, destination models.Location, mode models.TravelMode) (models.RouteSegment, error)
	GetShortestRoute(ctx context.Context, start, destination models.Location) (models.RouteSegment, error)
	SetStartPoint(models.OutdoorLocation)
	SetDestinationPoint(models.OutdoorLocation)
	PlaceStartMarker() error
	PlaceDestinationMarker() error
	RenderRoute(models.RouteSegment) error
	ClearNavigation() error
}

// IndoorRouter is the indoor provider surface the coordinator drives.
type IndoorRouter interface {
	GetRoute(ctx context.Context, start, destination models.Location, mode models.TravelMode) (models.RouteSegment, error)
	SetDestination(models.IndoorLocation)
	RenderDestination(ctx context.Context) error
	ClearNavigation() error
}

// RoomResolver resolves free-text room codes to indoor locations.
type RoomResolver interface {
	FindIndoorLocation(code string) *models.IndoorLocation
}

// Locator yields the current device position.
type Locator interface {
	GetCurrentLocation(ctx context.Context, useFallback bool) (*models.Coordinates, error)
}

// StateStore receives map display state changes.
type StateStore interface {
	Dispatch(mapstate.Action)
	State() mapstate.State
}

// Coordinator is the routing-strategy dispatcher. All collaborators are
// injected; it holds no ambient state beyond the invocation generation
// counter.
type Coordinator struct {
	outdoor  OutdoorRouter
	indoor   IndoorRouter
	resolver RoomResolver
	locator  Locator
	store    StateStore
	log      *slog.Logger

	generation atomic.Int64
}

// New wires a coordinator to its collaborators.
func New(outdoor OutdoorRouter, indoor IndoorRouter, resolver RoomResolver, locator Locator, store StateStore, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		outdoor:  outdoor,
		indoor:   indoor,
		resolver: resolver,
		locator:  locator,
		store:    store,
		log:      log,
	}
}

// GetCompleteRoute classifies the pair and delegates to the matching
// provider. The map kind is dispatched before the provider call so the UI
// can switch canvases while the route computes. Mixed pairs are rejected
// with ErrMixedRouting and no store dispatch: mixed routing is a deliberate
// limitation, not a fallback case. Errors propagate to the caller.
func (c *Coordinator) GetCompleteRoute(ctx context.Context, start, destination models.Location, mode models.TravelMode) (*models.CompleteRoute, error) {
	var segment models.RouteSegment
	var err error

	switch {
	case start.Kind() == models.KindOutdoor && destination.Kind() == models.KindOutdoor:
		c.store.Dispatch(mapstate.SetMapKind(mapstate.MapOutdoor))
		segment, err = c.outdoor.GetRoute(ctx, start, destination, mode)
	case start.Kind() == models.KindIndoor && destination.Kind() == models.KindIndoor:
		c.store.Dispatch(mapstate.SetMapKind(mapstate.MapIndoor))
		segment, err = c.indoor.GetRoute(ctx, start, destination, mode)
	default:
		return nil, models.ErrMixedRouting
	}
	if err != nil {
		return nil, err
	}

	return &models.CompleteRoute{Segments: []models.RouteSegment{segment}}, nil
}

// RouteFromCurrentLocation routes from the device position to the given
// destination. It is best-effort: every failure is logged and recovered
// locally, nothing is returned to the caller, and the UI is never left with
// an exception. A newer invocation supersedes an older one: once superseded,
// an invocation stops touching the store, markers, and renderers.
func (c *Coordinator) RouteFromCurrentLocation(ctx context.Context, destination models.Location) {
	gen := c.generation.Add(1)
	live := func() bool { return c.generation.Load() == gen }
	dispatch := func(a mapstate.Action) {
		if live() {
			c.store.Dispatch(a)
		}
	}
	abort := func(reason string, err error) {
		c.log.Warn("routing from current location aborted", "reason", reason, "error", err)
		dispatch(mapstate.SetMapKind(mapstate.MapOutdoor))
		dispatch(mapstate.SetShowRoute(false))
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("routing from current location panicked", "panic", r)
			dispatch(mapstate.SetMapKind(mapstate.MapOutdoor))
			dispatch(mapstate.SetShowRoute(false))
		}
	}()

	// Step 1: previous navigation may or may not exist; clearing it is
	// best-effort.
	if err := c.outdoor.ClearNavigation(); err != nil {
		c.log.Warn("clearing outdoor navigation", "error", err)
	}
	if err := c.indoor.ClearNavigation(); err != nil {
		c.log.Warn("clearing indoor navigation", "error", err)
	}

	// Step 2: the one fatal step. Without a position there is nothing to
	// route from.
	position, err := c.locator.GetCurrentLocation(ctx, true)
	if err != nil || position == nil {
		abort("current position unavailable", err)
		return
	}

	// Step 3: stringified coordinate payloads were already coerced at the
	// JSON boundary; a pair that is still invalid here is unrepairable.
	if !destinationCoordinatesValid(destination) {
		abort("destination coordinates malformed", nil)
		return
	}

	if !live() {
		return
	}

	// Step 4: anchor the route at the current position.
	start := models.OutdoorLocation{
		Title:       currentLocationTitle,
		Address:     position.String(),
		Coordinates: *position,
	}
	c.outdoor.SetStartPoint(start)
	if err := c.outdoor.PlaceStartMarker(); err != nil {
		c.log.Warn("placing start marker", "error", err)
	}

	switch dest := destination.(type) {
	case models.IndoorLocation:
		c.routeIndoorDestination(ctx, start, dest, live, dispatch)
	case models.OutdoorLocation:
		c.routeOutdoorDestination(ctx, start, dest, live, dispatch)
	default:
		abort("unknown destination kind", nil)
	}
}

// routeIndoorDestination runs step 5: enhance the destination through the
// resolver, render indoors, and degrade to the shortest outdoor route when
// indoor rendering fails.
func (c *Coordinator) routeIndoorDestination(ctx context.Context, start models.OutdoorLocation, dest models.IndoorLocation, live func() bool, dispatch func(mapstate.Action)) {
	if enhanced := c.resolver.FindIndoorLocation(roomCode(dest)); enhanced != nil {
		merged := *enhanced
		if dest.Title != "" {
			merged.Title = dest.Title // the caller's label wins
		}
		dest = merged
	}

	if !live() {
		return
	}

	c.indoor.SetDestination(dest)
	// Mirror an outdoor equivalent so a later outdoor fallback has a
	// destination to work with.
	c.outdoor.SetDestinationPoint(outdoorEquivalent(dest))
	dispatch(mapstate.SetMapKind(mapstate.MapIndoor))

	if err := c.indoor.RenderDestination(ctx); err != nil {
		// Indoor rendering fails when map data is missing or partial;
		// degrade to the fastest outdoor route instead of surfacing an
		// error.
		c.log.Warn("indoor navigation failed, falling back to outdoor", "error", err)
		if !live() {
			return
		}
		dispatch(mapstate.SetMapKind(mapstate.MapOutdoor))
		if !c.renderShortestOutdoor(ctx, start, outdoorEquivalent(dest), live) {
			return
		}
	}

	dispatch(mapstate.SetShowRoute(true))
}

// routeOutdoorDestination runs step 6: marker, map switch, shortest route.
func (c *Coordinator) routeOutdoorDestination(ctx context.Context, start, dest models.OutdoorLocation, live func() bool, dispatch func(mapstate.Action)) {
	c.outdoor.SetDestinationPoint(dest)
	if err := c.outdoor.PlaceDestinationMarker(); err != nil {
		c.log.Warn("placing destination marker", "error", err)
	}
	dispatch(mapstate.SetMapKind(mapstate.MapOutdoor))

	if !c.renderShortestOutdoor(ctx, start, dest, live) {
		return
	}
	dispatch(mapstate.SetShowRoute(true))
}

// renderShortestOutdoor computes and draws the fastest outdoor route.
// Finding no viable strategy is a warning, not an error.
func (c *Coordinator) renderShortestOutdoor(ctx context.Context, start, dest models.OutdoorLocation, live func() bool) bool {
	segment, err := c.outdoor.GetShortestRoute(ctx, start, dest)
	if err != nil {
		c.log.Warn("no viable outdoor route", "error", err)
		return false
	}
	if !live() {
		return false
	}
	if err := c.outdoor.RenderRoute(segment); err != nil {
		c.log.Warn("rendering outdoor route", "error", err)
		return false
	}
	return true
}

// destinationCoordinatesValid checks the coordinates a destination carries.
// Indoor destinations may legitimately omit them; the resolver can supply
// better ones during enhancement.
func destinationCoordinatesValid(destination models.Location) bool {
	switch d := destination.(type) {
	case models.OutdoorLocation:
		return d.Coordinates.Valid()
	case models.IndoorLocation:
		return d.Coordinates == nil || d.Coordinates.Valid()
	}
	return false
}

// roomCode reconstructs the free-text code used to re-resolve an indoor
// destination.
func roomCode(l models.IndoorLocation) string {
	switch {
	case l.BuildingCode != "" && l.RoomName != "":
		return l.BuildingCode + "-" + l.RoomName
	case l.BuildingCode != "":
		return l.BuildingCode
	default:
		return l.Title
	}
}

// outdoorEquivalent mirrors an indoor destination as an outdoor location so
// the outdoor provider can route to the building itself.
func outdoorEquivalent(l models.IndoorLocation) models.OutdoorLocation {
	o := models.OutdoorLocation{Title: l.Title, Address: l.Address}
	if l.Coordinates != nil {
		o.Coordinates = *l.Coordinates
	}
	return o
}
