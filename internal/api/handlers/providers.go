package handlers

import (
	"context"
	"time"

	"github.com/campusgo/campusnav/internal/mapstate"
	"github.com/campusgo/campusnav/internal/models"
	"github.com/campusgo/campusnav/internal/transit"
)

// RouteCoordinator abstracts the navigation coordinator for testability.
type RouteCoordinator interface {
	GetCompleteRoute(ctx context.Context, start, destination models.Location, mode models.TravelMode) (*models.CompleteRoute, error)
	RouteFromCurrentLocation(ctx context.Context, destination models.Location)
}

// LocationResolver abstracts the room-code resolver and room listing.
type LocationResolver interface {
	FindIndoorLocation(code string) *models.IndoorLocation
	ListRooms(buildingCode string) ([]models.RoomRef, error)
}

// BuildingSource abstracts the building catalog.
type BuildingSource interface {
	All() []models.Building
	ByCampus(campus string) []models.Building
	Count() int
}

// PositionSink receives device position reports.
type PositionSink interface {
	Report(models.Coordinates)
}

// StateSource reads and mutates the map display state.
type StateSource interface {
	State() mapstate.State
	Dispatch(mapstate.Action)
}

// ShuttleSchedule abstracts the shuttle service.
type ShuttleSchedule interface {
	Stops() []transit.Stop
	NextDeparture(fromStopID, toStopID string, after time.Time) (*transit.Departure, error)
}

// AccessibilityToggle flips the indoor accessible-path variant.
type AccessibilityToggle interface {
	SetAccessible(on bool)
	Accessible() bool
}
