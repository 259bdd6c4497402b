// Package models defines the shared value types for campus navigation.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel errors for the routing taxonomy.
var (
	// ErrMixedRouting is returned for a start/destination pair that spans
	// the indoor and outdoor maps. Mixed routing is a deliberate
	// limitation, not a missing fallback.
	ErrMixedRouting = errors.New("mixed indoor/outdoor routing is not supported")

	// ErrInvalidAddress is returned when an outdoor endpoint has no address.
	ErrInvalidAddress = errors.New("outdoor routing requires a non-empty address")

	// ErrNoRoute is returned when no travel mode produced a viable route.
	ErrNoRoute = errors.New("no viable route found")
)

// LocationKind discriminates the two Location variants.
type LocationKind string

const (
	KindOutdoor LocationKind = "outdoor"
	KindIndoor  LocationKind = "indoor"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UnmarshalJSON accepts numeric or stringified lat/lng values. Some upstream
// payloads serialize coordinates as strings; they are repaired here at the
// boundary so nothing above it has to deal with the malformed shape.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lat any `json:"lat"`
		Lng any `json:"lng"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	lat, err := coerceCoordinate(raw.Lat)
	if err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	lng, err := coerceCoordinate(raw.Lng)
	if err != nil {
		return fmt.Errorf("lng: %w", err)
	}

	c.Lat, c.Lng = lat, lng
	return nil
}

func coerceCoordinate(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to a coordinate", val)
		}
		return f, nil
	case nil:
		return 0, errors.New("missing coordinate")
	default:
		return 0, fmt.Errorf("unsupported coordinate type %T", v)
	}
}

// Valid reports whether the pair is a finite, in-range coordinate. The zero
// pair is treated as unset rather than a real position.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	if c.Lat == 0 && c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String formats the pair as "lat,lng", the shape directions APIs accept.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Location is the closed union of outdoor and indoor location descriptors.
// The kind is fixed at construction; a value is never reinterpreted across
// kinds without re-resolution.
type Location interface {
	Kind() LocationKind
	DisplayTitle() string
}

// OutdoorLocation describes a street-addressable place.
type OutdoorLocation struct {
	Title       string      `json:"title"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
	ImageURL    string      `json:"image,omitempty"`
}

func (OutdoorLocation) Kind() LocationKind { return KindOutdoor }

func (l OutdoorLocation) DisplayTitle() string { return l.Title }

// EntityKind classifies an indoor map entity.
type EntityKind string

const (
	EntitySpace    EntityKind = "space"
	EntityPOI      EntityKind = "poi"
	EntityEntrance EntityKind = "entrance"
)

// RoomRef is a reference into a building's map-data graph. The graph owns
// the underlying entity; holders must not mutate it.
type RoomRef struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	FloorID string     `json:"floor_id,omitempty"`
	Kind    EntityKind `json:"kind"`
}

// IndoorLocation describes a room or point of interest inside a building.
// Coordinates may be nil until the location has been resolved against the
// building catalog.
type IndoorLocation struct {
	Title        string       `json:"title"`
	Address      string       `json:"address"`
	IndoorMapID  string       `json:"indoor_map_id"`
	BuildingCode string       `json:"building_code,omitempty"`
	RoomName     string       `json:"room_name,omitempty"`
	Room         *RoomRef     `json:"room,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

func (IndoorLocation) Kind() LocationKind { return KindIndoor }

func (l IndoorLocation) DisplayTitle() string { return l.Title }

// Building is one catalog entry, loaded once per campus at startup and
// immutable for the session.
type Building struct {
	Campus       string      `json:"campus,omitempty"`
	Name         string      `json:"name"`
	Abbreviation string      `json:"abbreviation"`
	Address      string      `json:"address"`
	Coordinates  Coordinates `json:"coordinates"`
	IndoorMapID  string      `json:"indoor_map_id,omitempty"`
}

// TravelMode is an outdoor routing strategy.
type TravelMode string

const (
	ModeWalking TravelMode = "walking"
	ModeDriving TravelMode = "driving"
	ModeTransit TravelMode = "transit"
	ModeShuttle TravelMode = "shuttle"
)

// OutdoorModes enumerates the strategies raced by shortest-route selection.
// The order is the tie-break: equal durations go to the earlier mode.
var OutdoorModes = []TravelMode{ModeWalking, ModeDriving, ModeTransit, ModeShuttle}

// IsValid reports whether the travel mode is one of the supported strategies.
func (m TravelMode) IsValid() bool {
	switch m {
	case ModeWalking, ModeDriving, ModeTransit, ModeShuttle:
		return true
	default:
		return false
	}
}

// SegmentKind tags a route segment as indoor or outdoor.
type SegmentKind string

const (
	SegmentOutdoor SegmentKind = "outdoor"
	SegmentIndoor  SegmentKind = "indoor"
)

// Step is one turn-by-turn instruction.
type Step struct {
	Instruction     string  `json:"instruction"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RouteSummary aggregates a segment's legs.
type RouteSummary struct {
	DurationSeconds float64    `json:"duration_seconds"`
	DistanceMeters  float64    `json:"distance_meters"`
	Mode            TravelMode `json:"mode,omitempty"`
}

// RouteSegment is one leg of a composed route.
type RouteSegment struct {
	Kind    SegmentKind  `json:"kind"`
	Summary RouteSummary `json:"summary"`
	Steps   []Step       `json:"steps"`
}

// CompleteRoute is the composed result handed back to the UI. It currently
// always holds a single segment; multi-segment mixed routing is out of scope.
type CompleteRoute struct {
	Segments []RouteSegment `json:"segments"`
}
