package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campusgo/campusnav/internal/cache"
	"github.com/campusgo/campusnav/internal/models"
)

// DirectionsClient computes one outdoor leg between two addresses or
// "lat,lng" strings.
type DirectionsClient interface {
	Directions(ctx context.Context, origin, destination string, mode models.TravelMode) (models.RouteSegment, error)
}

// StatusError carries a non-OK directions API status such as NOT_FOUND or
// ZERO_RESULTS.
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return "directions request failed: " + e.Status
}

// Wire shapes of the outdoor directions API. They exist only inside this
// file; responses are adapted into models.RouteSegment before returning.
type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration durationValue `json:"duration"`
			Distance distanceValue `json:"distance"`
			Steps    []struct {
				Instructions string        `json:"html_instructions"`
				Duration     durationValue `json:"duration"`
				Distance     distanceValue `json:"distance"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type durationValue struct {
	Value float64 `json:"value"` // seconds
	Text  string  `json:"text"`
}

type distanceValue struct {
	Value float64 `json:"value"` // meters
	Text  string  `json:"text"`
}

// HTTPDirectionsClient calls a Google-Directions-shaped endpoint. Responses
// are cached briefly; route geometry for the same pair rarely changes within
// a session.
type HTTPDirectionsClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Cache[models.RouteSegment]
}

// NewHTTPDirectionsClient creates a client for the given endpoint.
func NewHTTPDirectionsClient(baseURL, apiKey string, timeout, cacheTTL time.Duration) *HTTPDirectionsClient {
	return &HTTPDirectionsClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New[models.RouteSegment](cacheTTL),
	}
}

// Directions fetches a route for one travel mode. Any non-OK API status
// surfaces as a *StatusError carrying the upstream status string.
func (c *HTTPDirectionsClient) Directions(ctx context.Context, origin, destination string, mode models.TravelMode) (models.RouteSegment, error) {
	key := origin + "|" + destination + "|" + string(mode)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", travelModeParam(mode))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("building directions request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.RouteSegment{}, fmt.Errorf("fetching directions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RouteSegment{}, fmt.Errorf("directions API returned status %d", resp.StatusCode)
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return models.RouteSegment{}, fmt.Errorf("parsing directions response: %w", err)
	}

	if decoded.Status != "OK" {
		return models.RouteSegment{}, &StatusError{Status: decoded.Status}
	}
	if len(decoded.Routes) == 0 {
		return models.RouteSegment{}, &StatusError{Status: "ZERO_RESULTS"}
	}

	segment := adaptDirections(decoded, mode)
	c.cache.Set(key, segment)
	return segment, nil
}

// adaptDirections flattens the first route's legs into a single segment.
// Total duration is the sum over all legs, matching how composite strategies
// are compared.
func adaptDirections(resp directionsResponse, mode models.TravelMode) models.RouteSegment {
	segment := models.RouteSegment{
		Kind:    models.SegmentOutdoor,
		Summary: models.RouteSummary{Mode: mode},
	}
	for _, leg := range resp.Routes[0].Legs {
		segment.Summary.DurationSeconds += leg.Duration.Value
		segment.Summary.DistanceMeters += leg.Distance.Value
		for _, s := range leg.Steps {
			segment.Steps = append(segment.Steps, models.Step{
				Instruction:     stripTags(s.Instructions),
				DistanceMeters:  s.Distance.Value,
				DurationSeconds: s.Duration.Value,
			})
		}
	}
	return segment
}

func travelModeParam(mode models.TravelMode) string {
	// The shuttle strategy is composed locally; its walking legs are the
	// only parts that reach this client.
	if mode == models.ModeShuttle {
		return "transit"
	}
	return string(mode)
}

// stripTags removes the markup the directions API embeds in instructions.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
