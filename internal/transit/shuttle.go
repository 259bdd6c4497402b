// Package transit provides the inter-campus shuttle schedule, combining a
// GTFS-realtime trip-updates feed with a static timetable fallback.
package transit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/campusgo/campusnav/internal/cache"
	"github.com/campusgo/campusnav/internal/geo"
	"github.com/campusgo/campusnav/internal/models"
	"github.com/campusgo/campusnav/internal/routing"
)

const feedCacheKey = "trip-updates"

// Stop is a campus shuttle stop.
type Stop struct {
	ID          string             `json:"id"`
	Campus      string             `json:"campus"`
	Name        string             `json:"name"`
	Coordinates models.Coordinates `json:"coordinates"`
}

// Departure is one scheduled or predicted shuttle departure.
type Departure struct {
	FromStopID string    `json:"from_stop_id"`
	ToStopID   string    `json:"to_stop_id,omitempty"`
	Departs    time.Time `json:"departs"`
	Realtime   bool      `json:"realtime"`
}

// ShuttleService answers next-departure queries for the campus shuttle.
// Realtime predictions win over the static timetable; feed failures fall
// back silently to the timetable.
type ShuttleService struct {
	feedURL   string
	client    *http.Client
	cache     *cache.Cache[[]Departure]
	timetable *Timetable
	stops     []Stop
}

// NewShuttleService creates a shuttle service. feedURL may be empty, in
// which case only the timetable is consulted.
func NewShuttleService(feedURL string, stops []Stop, timetable *Timetable, timeout, cacheTTL time.Duration) *ShuttleService {
	return &ShuttleService{
		feedURL:   feedURL,
		client:    &http.Client{Timeout: timeout},
		cache:     cache.New[[]Departure](cacheTTL),
		timetable: timetable,
		stops:     stops,
	}
}

// Stops returns the configured shuttle stops.
func (s *ShuttleService) Stops() []Stop {
	out := make([]Stop, len(s.stops))
	copy(out, s.stops)
	return out
}

// NearestStop returns the stop closest to the given position.
func (s *ShuttleService) NearestStop(c models.Coordinates) (Stop, bool) {
	var best Stop
	bestDist := -1.0
	for _, stop := range s.stops {
		d := geo.Distance(c, stop.Coordinates)
		if bestDist < 0 || d < bestDist {
			best = stop
			bestDist = d
		}
	}
	return best, bestDist >= 0
}

// StopByID returns the stop with the given ID.
func (s *ShuttleService) StopByID(id string) (Stop, bool) {
	for _, stop := range s.stops {
		if stop.ID == id {
			return stop, true
		}
	}
	return Stop{}, false
}

// NextDeparture returns the first departure from one stop to another at or
// after the given time.
func (s *ShuttleService) NextDeparture(fromStopID, toStopID string, after time.Time) (*Departure, error) {
	if departures, err := s.realtimeDepartures(); err == nil {
		for _, d := range departures {
			if d.FromStopID != fromStopID {
				continue
			}
			if d.ToStopID != "" && toStopID != "" && d.ToStopID != toStopID {
				continue
			}
			if d.Departs.Before(after) {
				continue
			}
			dep := d
			return &dep, nil
		}
	}

	if s.timetable == nil {
		return nil, fmt.Errorf("no shuttle schedule available")
	}
	departs, ok := s.timetable.Next(fromStopID, after)
	if !ok {
		return nil, fmt.Errorf("no shuttle departure from %s after %s", fromStopID, after.Format("15:04"))
	}
	return &Departure{FromStopID: fromStopID, ToStopID: toStopID, Departs: departs}, nil
}

// PlanRide implements routing.ShuttlePlanner: pick the nearest stop to each
// end and the next departure between them.
func (s *ShuttleService) PlanRide(ctx context.Context, origin, destination models.Coordinates, departAfter time.Time) (*routing.ShuttleRide, error) {
	from, ok := s.NearestStop(origin)
	if !ok {
		return nil, fmt.Errorf("no shuttle stops configured")
	}
	to, ok := s.NearestStop(destination)
	if !ok {
		return nil, fmt.Errorf("no shuttle stops configured")
	}
	if from.ID == to.ID {
		return nil, fmt.Errorf("shuttle does not serve a trip within %s", from.Campus)
	}

	departure, err := s.NextDeparture(from.ID, to.ID, departAfter)
	if err != nil {
		return nil, err
	}

	wait := departure.Departs.Sub(departAfter).Seconds()
	if wait < 0 {
		wait = 0
	}

	return &routing.ShuttleRide{
		FromStop:        from.Name,
		ToStop:          to.Name,
		FromCoordinates: from.Coordinates,
		ToCoordinates:   to.Coordinates,
		Departs:         departure.Departs,
		WaitSeconds:     wait,
		RideSeconds:     s.timetable.RideSeconds(),
		DistanceMeters:  geo.Distance(from.Coordinates, to.Coordinates),
	}, nil
}

// realtimeDepartures fetches and caches the GTFS-realtime trip updates.
func (s *ShuttleService) realtimeDepartures() ([]Departure, error) {
	if s.feedURL == "" {
		return nil, fmt.Errorf("shuttle feed not configured")
	}
	if cached, ok := s.cache.Get(feedCacheKey); ok {
		return cached, nil
	}

	resp, err := s.client.Get(s.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetching shuttle feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shuttle feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading shuttle feed: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("parsing shuttle feed: %w", err)
	}

	departures := parseDepartures(feed)
	s.cache.Set(feedCacheKey, departures)
	return departures, nil
}

func parseDepartures(feed *gtfs.FeedMessage) []Departure {
	var departures []Departure
	for _, entity := range feed.GetEntity() {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}
		for _, update := range tripUpdate.GetStopTimeUpdate() {
			departTime := update.GetDeparture().GetTime()
			if departTime == 0 {
				departTime = update.GetArrival().GetTime()
			}
			if departTime == 0 {
				continue
			}
			departures = append(departures, Departure{
				FromStopID: update.GetStopId(),
				Departs:    time.Unix(departTime, 0),
				Realtime:   true,
			})
		}
	}

	sort.Slice(departures, func(i, j int) bool {
		return departures[i].Departs.Before(departures[j].Departs)
	})
	return departures
}
