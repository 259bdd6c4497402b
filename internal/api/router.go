package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campusgo/campusnav/internal/api/handlers"
)

// Deps bundles the services the router exposes over HTTP. Everything is an
// interface so integration tests can swap in fakes.
type Deps struct {
	Coordinator   handlers.RouteCoordinator
	Resolver      handlers.LocationResolver
	Buildings     handlers.BuildingSource
	Positions     handlers.PositionSink
	State         handlers.StateSource
	Shuttle       handlers.ShuttleSchedule
	Accessibility handlers.AccessibilityToggle
	Log           *slog.Logger
}

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(deps.Buildings)
	rootHandler := handlers.NewRootHandler()
	navHandler := handlers.NewNavHandler(
		deps.Coordinator,
		deps.Resolver,
		deps.Buildings,
		deps.Positions,
		deps.State,
		deps.Shuttle,
		deps.Accessibility,
		deps.Log,
	)

	// Core routes
	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /api", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Catalog and resolution
	mux.HandleFunc("GET /nav/buildings", navHandler.GetBuildings)
	mux.HandleFunc("GET /nav/buildings/{abbr}/rooms", navHandler.GetBuildingRooms)
	mux.HandleFunc("GET /nav/resolve", navHandler.ResolveLocation)

	// Routing
	mux.HandleFunc("POST /nav/route", navHandler.GetRoute)
	mux.HandleFunc("POST /nav/route/current", navHandler.RouteFromCurrent)

	// Device position and display state
	mux.HandleFunc("POST /nav/position", navHandler.ReportPosition)
	mux.HandleFunc("GET /nav/state", navHandler.GetState)
	mux.HandleFunc("POST /nav/campus", navHandler.SelectCampus)
	mux.HandleFunc("POST /nav/accessibility", navHandler.SetAccessibility)

	// Shuttle
	mux.HandleFunc("GET /nav/shuttle/stops", navHandler.GetShuttleStops)
	mux.HandleFunc("GET /nav/shuttle/next", navHandler.GetNextShuttle)

	// Apply middleware stack
	handler := Chain(mux,
		Recovery(deps.Log),
		Logging(deps.Log),
		CORS,
		Timeout(15*time.Second),
	)

	return handler
}
