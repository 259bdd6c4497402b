// Package main is the entry point for the campusnav server.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/campusgo/campusnav/internal/api"
	"github.com/campusgo/campusnav/internal/campus"
	"github.com/campusgo/campusnav/internal/config"
	"github.com/campusgo/campusnav/internal/geolocation"
	"github.com/campusgo/campusnav/internal/mapdata"
	"github.com/campusgo/campusnav/internal/mapstate"
	"github.com/campusgo/campusnav/internal/models"
	"github.com/campusgo/campusnav/internal/navigation"
	"github.com/campusgo/campusnav/internal/routing"
	"github.com/campusgo/campusnav/internal/transit"
)

func main() {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration error: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	campuses, err := config.LoadCampuses(cfg.CampusFile)
	if err != nil {
		log.Fatal("Campus configuration error: ", err)
	}

	catalog := campus.NewCatalog()
	if err := loadBuildings(catalog, campuses); err != nil {
		log.Fatal("Building catalog error: ", err)
	}
	logger.Info("building catalog loaded", "buildings", catalog.Count())

	maps := mapdata.NewService(campuses.MapDataDir)
	resolver := campus.NewResolver(catalog, maps, logger)

	shuttle := buildShuttle(campuses.Shuttle, cfg, logger)

	directions := routing.NewHTTPDirectionsClient(cfg.DirectionsURL, cfg.DirectionsAPIKey, cfg.HTTPTimeout, cfg.CacheTTL)

	outdoorCanvas := routing.NewLogRenderer(logger, "outdoor")
	indoorCanvas := routing.NewLogRenderer(logger, "indoor")

	outdoor := routing.NewOutdoorProvider(directions, shuttle, outdoorCanvas, outdoorCanvas, logger)
	indoor := routing.NewIndoorProvider(maps, indoorCanvas, logger)

	store := mapstate.New(mapstate.State{
		SelectedCampus: campuses.DefaultCampus,
		CurrentMap:     mapstate.MapOutdoor,
	})

	defaultCampus := campuses.Campus[campuses.DefaultCampus]
	locator := geolocation.NewDeviceLocator(
		models.Coordinates{Lat: defaultCampus.DefaultLat, Lng: defaultCampus.DefaultLng},
		cfg.LocationWait,
		cfg.LocationMaxAge,
	)

	coordinator := navigation.New(outdoor, indoor, resolver, locator, store, logger)

	handler := api.NewRouter(api.Deps{
		Coordinator:   coordinator,
		Resolver:      resolver,
		Buildings:     catalog,
		Positions:     locator,
		State:         store,
		Shuttle:       shuttle,
		Accessibility: indoor,
		Log:           logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("🧭 campusnav server starting on port %s\n", cfg.Port)
	fmt.Printf("🏫 Default campus: %s\n", campuses.DefaultCampus)
	fmt.Printf("🔗 http://localhost:%s\n", cfg.Port)

	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Server failed to start: ", err)
	}
}

// loadBuildings merges every campus's buildings into one catalog. The default
// campus loads first so its first building is the catalog-wide default; the
// rest load in name order to keep startup deterministic.
func loadBuildings(catalog *campus.Catalog, campuses *config.Campuses) error {
	if err := catalog.Load(campuses.Campus[campuses.DefaultCampus].BuildingsFile); err != nil {
		return fmt.Errorf("campus %s: %w", campuses.DefaultCampus, err)
	}

	rest := make([]string, 0, len(campuses.Campus))
	for id := range campuses.Campus {
		if id != campuses.DefaultCampus {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)

	for _, id := range rest {
		if err := catalog.Load(campuses.Campus[id].BuildingsFile); err != nil {
			return fmt.Errorf("campus %s: %w", id, err)
		}
	}
	return nil
}

// buildShuttle wires the shuttle service from its config block. A missing
// timetable file is tolerated; the service then serves realtime data only.
func buildShuttle(sc config.ShuttleConfig, cfg *config.Config, logger *slog.Logger) *transit.ShuttleService {
	var timetable *transit.Timetable
	if sc.TimetableFile != "" {
		t, err := transit.LoadTimetable(sc.TimetableFile)
		if err != nil {
			logger.Warn("shuttle timetable unavailable", "file", sc.TimetableFile, "error", err)
		} else {
			timetable = t
		}
	}

	stops := make([]transit.Stop, 0, len(sc.Stops))
	for _, s := range sc.Stops {
		stops = append(stops, transit.Stop{
			ID:          s.ID,
			Campus:      s.Campus,
			Name:        s.Name,
			Coordinates: models.Coordinates{Lat: s.Lat, Lng: s.Lng},
		})
	}

	return transit.NewShuttleService(sc.FeedURL, stops, timetable, cfg.HTTPTimeout, cfg.CacheTTL)
}
