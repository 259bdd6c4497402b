// Package mapdata models a building's indoor map: floors, spaces, points of
// interest, entrances, and the connection graph between them. Graphs are
// loaded once per building and shared read-only afterwards.
package mapdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/campusgo/campusnav/internal/models"
)

// ConnectionKind classifies an edge in the map graph.
type ConnectionKind string

const (
	ConnCorridor ConnectionKind = "corridor"
	ConnStairs   ConnectionKind = "stairs"
	ConnElevator ConnectionKind = "elevator"
)

// Entity is a node in the map graph.
type Entity struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	FloorID string            `json:"floor_id"`
	Kind    models.EntityKind `json:"kind"`
}

// Connection is an undirected edge between two entities.
type Connection struct {
	From           string         `json:"from"`
	To             string         `json:"to"`
	Kind           ConnectionKind `json:"kind"`
	DistanceMeters float64        `json:"distance_meters"`
}

// Floor is one level of the building.
type Floor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Map is one building's loaded graph. Read-only after load.
type Map struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Floors      []Floor      `json:"floors"`
	Entities    []Entity     `json:"entities"`
	Connections []Connection `json:"connections"`

	byID map[string]*Entity
	adj  map[string][]edge
}

type edge struct {
	to   string
	kind ConnectionKind
	dist float64
}

func (m *Map) index() {
	m.byID = make(map[string]*Entity, len(m.Entities))
	for i := range m.Entities {
		m.byID[m.Entities[i].ID] = &m.Entities[i]
	}
	m.adj = make(map[string][]edge)
	for _, c := range m.Connections {
		m.adj[c.From] = append(m.adj[c.From], edge{to: c.To, kind: c.Kind, dist: c.DistanceMeters})
		m.adj[c.To] = append(m.adj[c.To], edge{to: c.From, kind: c.Kind, dist: c.DistanceMeters})
	}
}

// Entity returns the entity with the given ID.
func (m *Map) Entity(id string) (Entity, bool) {
	e, ok := m.byID[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// EntitiesOfKind returns the entities of one kind sorted lexicographically
// by name, so lookups that scan in order have a stable tie-break.
func (m *Map) EntitiesOfKind(kind models.EntityKind) []models.RoomRef {
	var refs []models.RoomRef
	for _, e := range m.Entities {
		if e.Kind == kind {
			refs = append(refs, roomRef(e))
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

// Entrances returns the building's entrance entities sorted by name.
func (m *Map) Entrances() []models.RoomRef {
	return m.EntitiesOfKind(models.EntityEntrance)
}

func roomRef(e Entity) models.RoomRef {
	return models.RoomRef{ID: e.ID, Name: e.Name, FloorID: e.FloorID, Kind: e.Kind}
}

// ReadFile parses a map-data JSON file and builds its indexes.
func ReadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map data: %w", err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing map data: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("map data %s: missing id", path)
	}
	m.index()
	return &m, nil
}

// FromEntities builds an in-memory map, mainly for tests.
func FromEntities(id string, entities []Entity, connections []Connection) *Map {
	m := &Map{ID: id, Entities: entities, Connections: connections}
	m.index()
	return m
}

// Service lazily loads and caches map-data graphs by indoor map ID. Loads
// can be slow (full graph parse); once loaded a graph stays resident for the
// process lifetime.
type Service struct {
	dir  string
	mu   sync.Mutex
	maps map[string]*Map
}

// NewService creates a service reading map files from the given directory.
func NewService(dir string) *Service {
	return &Service{dir: dir, maps: make(map[string]*Map)}
}

// Load returns the graph for the given map ID, reading <dir>/<id>.json on
// first use.
func (s *Service) Load(id string) (*Map, error) {
	if id == "" {
		return nil, fmt.Errorf("empty indoor map id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.maps[id]; ok {
		return m, nil
	}
	m, err := ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		return nil, err
	}
	s.maps[id] = m
	return m, nil
}

// Loaded reports whether the map is already resident.
func (s *Service) Loaded(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.maps[id]
	return ok
}
