package campus

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/campusgo/campusnav/internal/mapdata"
	"github.com/campusgo/campusnav/internal/models"
)

// MapSource provides lazy access to a building's indoor map-data graph.
type MapSource interface {
	Load(indoorMapID string) (*mapdata.Map, error)
}

// Resolver fuzzy-matches free-text room codes like "H-531" against the
// building catalog and each building's indoor entities.
type Resolver struct {
	catalog *Catalog
	maps    MapSource
	log     *slog.Logger
}

// NewResolver wires the resolver to its catalog and map source.
func NewResolver(catalog *Catalog, maps MapSource, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{catalog: catalog, maps: maps, log: log}
}

// FindIndoorLocation resolves a room code to the best indoor candidate, or
// nil when nothing matches. Matching is best-effort and asymmetric: an
// unknown building code degrades to the first catalog entry, but an unknown
// room returns nil with no further fallback.
func (r *Resolver) FindIndoorLocation(roomCode string) *models.IndoorLocation {
	roomCode = strings.TrimSpace(roomCode)
	if roomCode == "" || r.catalog.Count() == 0 {
		return nil
	}

	tokens := splitCode(roomCode)
	if len(tokens) == 0 {
		return nil
	}
	buildingToken := strings.ToUpper(tokens[0])

	building, ok := r.catalog.ByAbbreviation(buildingToken)
	if !ok {
		building, ok = r.fuzzyBuilding(buildingToken)
	}
	if !ok {
		// Nothing matched the building half of the code: degrade to the
		// first catalog entry rather than giving up outright.
		building, ok = r.catalog.First()
		if !ok {
			return nil
		}
	}

	roomToken := ""
	if len(tokens) > 1 {
		roomToken = tokens[1]
	}

	room := r.findRoom(building, roomToken)
	if room == nil {
		return nil
	}

	coords := building.Coordinates
	return &models.IndoorLocation{
		Title:        strings.TrimSpace(building.Abbreviation + " " + room.Name),
		Address:      building.Address,
		IndoorMapID:  building.IndoorMapID,
		BuildingCode: building.Abbreviation,
		RoomName:     room.Name,
		Room:         room,
		Coordinates:  &coords,
	}
}

// ListRooms returns a building's spaces followed by its points of interest,
// each group sorted by name. The building must have an indoor map.
func (r *Resolver) ListRooms(abbr string) ([]models.RoomRef, error) {
	building, ok := r.catalog.ByAbbreviation(abbr)
	if !ok {
		return nil, fmt.Errorf("unknown building %q", abbr)
	}
	if building.IndoorMapID == "" {
		return nil, fmt.Errorf("building %s has no indoor map", building.Abbreviation)
	}
	m, err := r.maps.Load(building.IndoorMapID)
	if err != nil {
		return nil, fmt.Errorf("loading indoor map %s: %w", building.IndoorMapID, err)
	}

	rooms := m.EntitiesOfKind(models.EntitySpace)
	return append(rooms, m.EntitiesOfKind(models.EntityPOI)...), nil
}

func (r *Resolver) fuzzyBuilding(token string) (models.Building, bool) {
	norm := normalize(token)
	if norm == "" {
		return models.Building{}, false
	}
	for _, b := range r.catalog.All() {
		abbr := normalize(b.Abbreviation)
		if abbr != "" && (strings.Contains(abbr, norm) || strings.Contains(norm, abbr)) {
			return b, true
		}
		if strings.Contains(normalize(b.Name), norm) {
			return b, true
		}
	}
	return models.Building{}, false
}

// findRoom searches the building's map graph: exact space name, then
// substring space name, then exact/substring POI name. Candidates arrive
// sorted by name, so ties resolve lexicographically.
func (r *Resolver) findRoom(b models.Building, token string) *models.RoomRef {
	if token == "" || b.IndoorMapID == "" {
		return nil
	}
	m, err := r.maps.Load(b.IndoorMapID)
	if err != nil {
		r.log.Warn("indoor map unavailable", "map", b.IndoorMapID, "error", err)
		return nil
	}

	spaces := m.EntitiesOfKind(models.EntitySpace)
	pois := m.EntitiesOfKind(models.EntityPOI)

	if ref := matchExact(spaces, token); ref != nil {
		return ref
	}
	if ref := matchSubstring(spaces, token); ref != nil {
		return ref
	}
	if ref := matchExact(pois, token); ref != nil {
		return ref
	}
	return matchSubstring(pois, token)
}

func matchExact(refs []models.RoomRef, token string) *models.RoomRef {
	for i := range refs {
		if strings.EqualFold(refs[i].Name, token) {
			return &refs[i]
		}
	}
	return nil
}

func matchSubstring(refs []models.RoomRef, token string) *models.RoomRef {
	norm := normalize(token)
	if norm == "" {
		return nil
	}
	for i := range refs {
		if strings.Contains(normalize(refs[i].Name), norm) {
			return &refs[i]
		}
	}
	return nil
}

// splitCode breaks "H-531" or "H 531" into its building and room tokens.
func splitCode(code string) []string {
	return strings.FieldsFunc(code, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
}

// normalize strips non-alphanumerics and lower-cases for fuzzy comparison.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
