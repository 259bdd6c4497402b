package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/campusgo/campusnav/internal/mapstate"
	"github.com/campusgo/campusnav/internal/models"
	"github.com/campusgo/campusnav/internal/routing"
)

// NavHandler serves the navigation endpoints.
type NavHandler struct {
	coordinator   RouteCoordinator
	resolver      LocationResolver
	buildings     BuildingSource
	positions     PositionSink
	state         StateSource
	shuttle       ShuttleSchedule
	accessibility AccessibilityToggle
	log           *slog.Logger
}

// NewNavHandler creates a navigation handler.
func NewNavHandler(
	coordinator RouteCoordinator,
	resolver LocationResolver,
	buildings BuildingSource,
	positions PositionSink,
	state StateSource,
	shuttle ShuttleSchedule,
	accessibility AccessibilityToggle,
	log *slog.Logger,
) *NavHandler {
	if log == nil {
		log = slog.Default()
	}
	return &NavHandler{
		coordinator:   coordinator,
		resolver:      resolver,
		buildings:     buildings,
		positions:     positions,
		state:         state,
		shuttle:       shuttle,
		accessibility: accessibility,
		log:           log,
	}
}

// locationPayload is the wire shape for either location kind. The kind field
// discriminates; unknown kinds are rejected at decode time.
type locationPayload struct {
	Kind         string              `json:"kind"`
	Title        string              `json:"title"`
	Address      string              `json:"address"`
	Coordinates  *models.Coordinates `json:"coordinates,omitempty"`
	IndoorMapID  string              `json:"indoor_map_id,omitempty"`
	BuildingCode string              `json:"building_code,omitempty"`
	RoomName     string              `json:"room_name,omitempty"`
}

func (p locationPayload) toLocation() (models.Location, error) {
	switch models.LocationKind(p.Kind) {
	case models.KindOutdoor:
		loc := models.OutdoorLocation{Title: p.Title, Address: p.Address}
		if p.Coordinates != nil {
			loc.Coordinates = *p.Coordinates
		}
		return loc, nil
	case models.KindIndoor:
		return models.IndoorLocation{
			Title:        p.Title,
			Address:      p.Address,
			IndoorMapID:  p.IndoorMapID,
			BuildingCode: p.BuildingCode,
			RoomName:     p.RoomName,
			Coordinates:  p.Coordinates,
		}, nil
	default:
		return nil, fmt.Errorf("unknown location kind %q", p.Kind)
	}
}

// GetBuildings handles GET /nav/buildings with an optional campus filter.
func (h *NavHandler) GetBuildings(w http.ResponseWriter, r *http.Request) {
	campus := r.URL.Query().Get("campus")

	var buildings []models.Building
	if campus != "" {
		buildings = h.buildings.ByCampus(campus)
	} else {
		buildings = h.buildings.All()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(buildings),
		"buildings": buildings,
	})
}

// GetBuildingRooms handles GET /nav/buildings/{abbr}/rooms: the building's
// spaces and points of interest, for room pickers and POI search.
func (h *NavHandler) GetBuildingRooms(w http.ResponseWriter, r *http.Request) {
	abbr := r.PathValue("abbr")

	rooms, err := h.resolver.ListRooms(abbr)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"building": strings.ToUpper(abbr),
		"count":    len(rooms),
		"rooms":    rooms,
	})
}

// ResolveLocation handles GET /nav/resolve?code=H-531.
func (h *NavHandler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing parameter", "code query parameter is required")
		return
	}

	location := h.resolver.FindIndoorLocation(code)
	if location == nil {
		writeError(w, http.StatusNotFound, "not found", fmt.Sprintf("no indoor location matches %q", code))
		return
	}

	writeJSON(w, http.StatusOK, location)
}

// GetRoute handles POST /nav/route with explicit start and destination.
func (h *NavHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start       locationPayload `json:"start"`
		Destination locationPayload `json:"destination"`
		Mode        string          `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	start, err := req.Start.toLocation()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start", err.Error())
		return
	}
	destination, err := req.Destination.toLocation()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid destination", err.Error())
		return
	}

	mode := models.TravelMode(req.Mode)
	if req.Mode == "" {
		mode = models.ModeWalking
	}
	if !mode.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid mode", fmt.Sprintf("unsupported travel mode %q", req.Mode))
		return
	}

	route, err := h.coordinator.GetCompleteRoute(r.Context(), start, destination, mode)
	if err != nil {
		h.writeRouteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, route)
}

// RouteFromCurrent handles POST /nav/route/current. The routing flow is
// best-effort and surfaces its outcome through the map state, so the handler
// always answers 202 once the destination decodes.
func (h *NavHandler) RouteFromCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Destination locationPayload `json:"destination"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	destination, err := req.Destination.toLocation()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid destination", err.Error())
		return
	}

	h.coordinator.RouteFromCurrentLocation(r.Context(), destination)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "routing",
		"state":  h.state.State(),
	})
}

// ReportPosition handles POST /nav/position: a device position report that
// feeds the locator.
func (h *NavHandler) ReportPosition(w http.ResponseWriter, r *http.Request) {
	var coords models.Coordinates
	if err := json.NewDecoder(r.Body).Decode(&coords); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !coords.Valid() {
		writeError(w, http.StatusBadRequest, "invalid coordinates", coords.String())
		return
	}

	h.positions.Report(coords)
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// GetState handles GET /nav/state.
func (h *NavHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":      h.state.State(),
		"accessible": h.accessibility.Accessible(),
	})
}

// SetAccessibility handles POST /nav/accessibility.
func (h *NavHandler) SetAccessibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accessible bool `json:"accessible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.accessibility.SetAccessible(req.Accessible)
	writeJSON(w, http.StatusOK, map[string]bool{"accessible": req.Accessible})
}

// SelectCampus handles POST /nav/campus.
func (h *NavHandler) SelectCampus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Campus string `json:"campus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Campus == "" {
		writeError(w, http.StatusBadRequest, "missing campus", "campus is required")
		return
	}

	h.state.Dispatch(mapstate.SetSelectedCampus(req.Campus))
	writeJSON(w, http.StatusOK, h.state.State())
}

// GetNextShuttle handles GET /nav/shuttle/next?from=STOP&to=STOP.
func (h *NavHandler) GetNextShuttle(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "missing parameters", "from and to stop IDs are required")
		return
	}

	departure, err := h.shuttle.NextDeparture(from, to, time.Now())
	if err != nil {
		writeError(w, http.StatusNotFound, "no departure", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, departure)
}

// GetShuttleStops handles GET /nav/shuttle/stops.
func (h *NavHandler) GetShuttleStops(w http.ResponseWriter, r *http.Request) {
	stops := h.shuttle.Stops()
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(stops),
		"stops": stops,
	})
}

// writeRouteError maps routing errors onto HTTP statuses.
func (h *NavHandler) writeRouteError(w http.ResponseWriter, err error) {
	var statusErr *routing.StatusError

	switch {
	case errors.Is(err, models.ErrMixedRouting):
		writeError(w, http.StatusUnprocessableEntity, "mixed routing", err.Error())
	case errors.Is(err, models.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, "invalid address", err.Error())
	case errors.Is(err, models.ErrNoRoute):
		writeError(w, http.StatusNotFound, "no route", err.Error())
	case errors.As(err, &statusErr):
		writeError(w, http.StatusBadGateway, "directions upstream error", err.Error())
	default:
		h.log.Error("computing route", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to compute route")
	}
}
