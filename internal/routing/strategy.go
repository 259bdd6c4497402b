// Package routing provides the outdoor and indoor route providers behind a
// common strategy contract. Upstream payloads are translated into local
// route types at the provider boundary; nothing above this package depends
// on a third-party wire shape.
package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusgo/campusnav/internal/models"
)

// Strategy is the capability shared by both route providers.
type Strategy interface {
	GetRoute(ctx context.Context, start, destination models.Location, mode models.TravelMode) (models.RouteSegment, error)
}

// Renderer draws computed navigation onto a map canvas.
type Renderer interface {
	DrawRoute(segment models.RouteSegment) error
	Clear() error
}

// MarkerRenderer manages start and destination markers on the outdoor map.
type MarkerRenderer interface {
	PlaceMarker(label string, at models.Coordinates) error
	ClearMarkers() error
}

// ShuttleRide is the planned shuttle portion of a composite route.
type ShuttleRide struct {
	FromStop        string
	ToStop          string
	FromCoordinates models.Coordinates
	ToCoordinates   models.Coordinates
	Departs         time.Time
	WaitSeconds     float64
	RideSeconds     float64
	DistanceMeters  float64
}

// ShuttlePlanner supplies the shuttle ride between campus stops.
type ShuttlePlanner interface {
	PlanRide(ctx context.Context, origin, destination models.Coordinates, departAfter time.Time) (*ShuttleRide, error)
}

// LogRenderer stands in for a map canvas on the server: draw and marker
// calls are logged rather than drawn.
type LogRenderer struct {
	log    *slog.Logger
	canvas string
}

// NewLogRenderer creates a renderer logging against the named canvas.
func NewLogRenderer(log *slog.Logger, canvas string) *LogRenderer {
	if log == nil {
		log = slog.Default()
	}
	return &LogRenderer{log: log, canvas: canvas}
}

func (r *LogRenderer) DrawRoute(segment models.RouteSegment) error {
	r.log.Info("route drawn",
		"canvas", r.canvas,
		"kind", segment.Kind,
		"steps", len(segment.Steps),
		"duration_seconds", segment.Summary.DurationSeconds,
	)
	return nil
}

func (r *LogRenderer) Clear() error {
	r.log.Info("navigation cleared", "canvas", r.canvas)
	return nil
}

func (r *LogRenderer) PlaceMarker(label string, at models.Coordinates) error {
	r.log.Info("marker placed", "canvas", r.canvas, "label", label, "at", at.String())
	return nil
}

func (r *LogRenderer) ClearMarkers() error {
	r.log.Info("markers cleared", "canvas", r.canvas)
	return nil
}
