// Package config handles application configuration: environment variables
// for runtime settings and a TOML file for the campus definitions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	Port             string
	Env              string
	CampusFile       string
	DirectionsURL    string
	DirectionsAPIKey string
	CacheTTL         time.Duration
	HTTPTimeout      time.Duration
	LocationWait     time.Duration
	LocationMaxAge   time.Duration
}

// Load reads configuration from the environment with sensible defaults. A
// .env file is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "3000"),
		Env:              getEnv("ENV", "development"),
		CampusFile:       getEnv("CAMPUS_FILE", "data/campuses.toml"),
		DirectionsURL:    getEnv("DIRECTIONS_URL", "https://maps.googleapis.com/maps/api/directions/json"),
		DirectionsAPIKey: getEnv("DIRECTIONS_API_KEY", ""),
		CacheTTL:         getDurationEnv("CACHE_TTL_SECONDS", 120) * time.Second,
		HTTPTimeout:      getDurationEnv("HTTP_TIMEOUT_SECONDS", 10) * time.Second,
		LocationWait:     getDurationEnv("LOCATION_WAIT_SECONDS", 4) * time.Second,
		LocationMaxAge:   getDurationEnv("LOCATION_MAX_AGE_SECONDS", 60) * time.Second,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.CampusFile == "" {
		return fmt.Errorf("CAMPUS_FILE is required")
	}
	if c.DirectionsURL == "" {
		return fmt.Errorf("DIRECTIONS_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds)
		}
	}
	return time.Duration(defaultSeconds)
}

// Campuses is the parsed campus definition file.
type Campuses struct {
	DefaultCampus string            `toml:"default_campus"`
	MapDataDir    string            `toml:"mapdata_dir"`
	Shuttle       ShuttleConfig     `toml:"shuttle"`
	Campus        map[string]Campus `toml:"campus"`
}

// Campus describes one campus and its data sources.
type Campus struct {
	Name          string  `toml:"name"`
	BuildingsFile string  `toml:"buildings_file"`
	DefaultLat    float64 `toml:"default_lat"`
	DefaultLng    float64 `toml:"default_lng"`
}

// ShuttleConfig describes the inter-campus shuttle.
type ShuttleConfig struct {
	FeedURL       string        `toml:"feed_url"`
	TimetableFile string        `toml:"timetable_file"`
	Stops         []ShuttleStop `toml:"stops"`
}

// ShuttleStop is one configured shuttle stop.
type ShuttleStop struct {
	ID     string  `toml:"id"`
	Campus string  `toml:"campus"`
	Name   string  `toml:"name"`
	Lat    float64 `toml:"lat"`
	Lng    float64 `toml:"lng"`
}

// LoadCampuses decodes and validates the campus definition file.
func LoadCampuses(path string) (*Campuses, error) {
	var campuses Campuses
	if _, err := toml.DecodeFile(path, &campuses); err != nil {
		return nil, fmt.Errorf("decoding campus file: %w", err)
	}

	if len(campuses.Campus) == 0 {
		return nil, fmt.Errorf("campus file %s defines no campuses", path)
	}
	if campuses.DefaultCampus == "" {
		return nil, fmt.Errorf("default_campus is required")
	}
	if _, ok := campuses.Campus[campuses.DefaultCampus]; !ok {
		return nil, fmt.Errorf("default_campus %q is not defined", campuses.DefaultCampus)
	}
	for id, c := range campuses.Campus {
		if c.BuildingsFile == "" {
			return nil, fmt.Errorf("campus %q: buildings_file is required", id)
		}
	}
	return &campuses, nil
}
