package transit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Ride time between campuses when the timetable does not specify one.
const defaultRideMinutes = 25

// Timetable is the static shuttle schedule: local "HH:MM" departure times
// per stop, split by weekday and weekend service.
type Timetable struct {
	RideMinutes int                 `json:"ride_minutes"`
	Weekday     map[string][]string `json:"weekday"`
	Weekend     map[string][]string `json:"weekend"`
}

// LoadTimetable reads the schedule from a JSON file.
func LoadTimetable(path string) (*Timetable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shuttle timetable: %w", err)
	}
	var t Timetable
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing shuttle timetable: %w", err)
	}
	return &t, nil
}

// RideSeconds returns the scheduled ride time between campuses.
func (t *Timetable) RideSeconds() float64 {
	if t == nil || t.RideMinutes <= 0 {
		return defaultRideMinutes * 60
	}
	return float64(t.RideMinutes) * 60
}

// Next returns the first departure from the stop at or after the given
// time. There is no next-day rollover: after the last run of the day the
// answer is no departure.
func (t *Timetable) Next(stopID string, after time.Time) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}

	times := t.Weekday[stopID]
	if wd := after.Weekday(); wd == time.Saturday || wd == time.Sunday {
		times = t.Weekend[stopID]
	}

	for _, hm := range times {
		parsed, err := time.Parse("15:04", hm)
		if err != nil {
			continue
		}
		departs := time.Date(after.Year(), after.Month(), after.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, after.Location())
		if !departs.Before(after) {
			return departs, true
		}
	}
	return time.Time{}, false
}
