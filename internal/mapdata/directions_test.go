package mapdata

import (
	"strings"
	"testing"

	"github.com/campusgo/campusnav/internal/models"
)

// testMap builds a two-floor graph with both a stairs and an elevator link:
//
//	entrance -- lobby -- stairs1 ==(stairs)== stairs2 -- room
//	               \---- elev1 ==(elevator)== elev2 ----/
func testMap() *Map {
	m := FromEntities("test",
		[]Entity{
			{ID: "entrance", Name: "Main Entrance", FloorID: "f1", Kind: models.EntityEntrance},
			{ID: "lobby", Name: "Lobby", FloorID: "f1", Kind: models.EntitySpace},
			{ID: "stairs1", Name: "Stairs 1", FloorID: "f1", Kind: models.EntitySpace},
			{ID: "elev1", Name: "Elevator 1", FloorID: "f1", Kind: models.EntitySpace},
			{ID: "stairs2", Name: "Stairs 2", FloorID: "f2", Kind: models.EntitySpace},
			{ID: "elev2", Name: "Elevator 2", FloorID: "f2", Kind: models.EntitySpace},
			{ID: "room", Name: "201", FloorID: "f2", Kind: models.EntitySpace},
			{ID: "island", Name: "Unreachable", FloorID: "f2", Kind: models.EntitySpace},
		},
		[]Connection{
			{From: "entrance", To: "lobby", Kind: ConnCorridor, DistanceMeters: 5},
			{From: "lobby", To: "stairs1", Kind: ConnCorridor, DistanceMeters: 10},
			{From: "lobby", To: "elev1", Kind: ConnCorridor, DistanceMeters: 12},
			{From: "stairs1", To: "stairs2", Kind: ConnStairs, DistanceMeters: 8},
			{From: "elev1", To: "elev2", Kind: ConnElevator, DistanceMeters: 8},
			{From: "stairs2", To: "room", Kind: ConnCorridor, DistanceMeters: 6},
			{From: "elev2", To: "room", Kind: ConnCorridor, DistanceMeters: 6},
		})
	m.Floors = []Floor{{ID: "f1", Name: "Floor 1"}, {ID: "f2", Name: "Floor 2"}}
	return m
}

func ref(m *Map, id string) models.RoomRef {
	e, _ := m.Entity(id)
	return models.RoomRef{ID: e.ID, Name: e.Name, FloorID: e.FloorID, Kind: e.Kind}
}

func TestGetDirectionsShortestPath(t *testing.T) {
	m := testMap()

	d := m.GetDirections(ref(m, "entrance"), ref(m, "room"), false)
	if d == nil {
		t.Fatal("expected directions, got nil")
	}

	// The stairs path is shorter (5+10+8+6=29) than the elevator path
	// (5+12+8+6=31).
	want := []string{"entrance", "lobby", "stairs1", "stairs2", "room"}
	if len(d.Path) != len(want) {
		t.Fatalf("path = %v, want %v", d.Path, want)
	}
	for i := range want {
		if d.Path[i] != want[i] {
			t.Fatalf("path = %v, want %v", d.Path, want)
		}
	}
	if d.DistanceMeters != 29 {
		t.Errorf("distance = %v, want 29", d.DistanceMeters)
	}
	if d.Accessible {
		t.Error("standard directions should not be flagged accessible")
	}
}

func TestGetDirectionsAccessibleAvoidsStairs(t *testing.T) {
	m := testMap()

	d := m.GetDirections(ref(m, "entrance"), ref(m, "room"), true)
	if d == nil {
		t.Fatal("expected accessible directions, got nil")
	}
	for _, id := range d.Path {
		if id == "stairs1" || id == "stairs2" {
			t.Fatalf("accessible path %v uses stairs", d.Path)
		}
	}
	if d.DistanceMeters != 31 {
		t.Errorf("distance = %v, want 31", d.DistanceMeters)
	}
	if !d.Accessible {
		t.Error("accessible directions should be flagged accessible")
	}
}

func TestGetDirectionsStepInstructions(t *testing.T) {
	m := testMap()

	d := m.GetDirections(ref(m, "entrance"), ref(m, "room"), true)
	if d == nil {
		t.Fatal("expected directions, got nil")
	}

	var sawElevator, sawArrive bool
	for _, step := range d.Steps {
		if strings.Contains(step.Instruction, "elevator to Floor 2") {
			sawElevator = true
			// The elevator step carries the wait penalty on top of walking.
			if step.DurationSeconds <= 8/indoorWalkingSpeedMps {
				t.Errorf("elevator step duration %v missing penalty", step.DurationSeconds)
			}
		}
		if strings.Contains(step.Instruction, "Arrive at 201") {
			sawArrive = true
		}
	}
	if !sawElevator {
		t.Error("expected an elevator instruction")
	}
	if !sawArrive {
		t.Error("expected an arrival instruction")
	}
}

func TestGetDirectionsEdgeCases(t *testing.T) {
	m := testMap()

	tests := []struct {
		name     string
		from, to string
		wantNil  bool
	}{
		{"unknown origin", "nope", "room", true},
		{"unknown destination", "entrance", "nope", true},
		{"no path", "entrance", "island", true},
		{"reachable", "entrance", "room", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := m.GetDirections(models.RoomRef{ID: tc.from}, models.RoomRef{ID: tc.to}, false)
			if (d == nil) != tc.wantNil {
				t.Errorf("GetDirections(%s, %s) nil=%v, want %v", tc.from, tc.to, d == nil, tc.wantNil)
			}
		})
	}
}

func TestGetDirectionsSameRoom(t *testing.T) {
	m := testMap()

	d := m.GetDirections(ref(m, "room"), ref(m, "room"), false)
	if d == nil {
		t.Fatal("expected directions, got nil")
	}
	if len(d.Path) != 1 || d.Path[0] != "room" {
		t.Errorf("path = %v, want [room]", d.Path)
	}
	if d.DistanceMeters != 0 {
		t.Errorf("distance = %v, want 0", d.DistanceMeters)
	}
}

func TestEntitiesOfKindSorted(t *testing.T) {
	m := testMap()

	spaces := m.EntitiesOfKind(models.EntitySpace)
	for i := 1; i < len(spaces); i++ {
		if spaces[i-1].Name > spaces[i].Name {
			t.Fatalf("spaces not sorted by name: %q > %q", spaces[i-1].Name, spaces[i].Name)
		}
	}

	entrances := m.Entrances()
	if len(entrances) != 1 || entrances[0].ID != "entrance" {
		t.Errorf("entrances = %v, want the single main entrance", entrances)
	}
}
