package mapstate

import "testing"

func TestDispatch(t *testing.T) {
	s := New(State{SelectedCampus: "downtown", CurrentMap: MapOutdoor})

	tests := []struct {
		name   string
		action Action
		want   State
	}{
		{
			"switch to indoor",
			SetMapKind(MapIndoor),
			State{SelectedCampus: "downtown", CurrentMap: MapIndoor},
		},
		{
			"show route",
			SetShowRoute(true),
			State{SelectedCampus: "downtown", CurrentMap: MapIndoor, ShowRoute: true},
		},
		{
			"switch campus",
			SetSelectedCampus("lakeside"),
			State{SelectedCampus: "lakeside", CurrentMap: MapIndoor, ShowRoute: true},
		},
		{
			"back to outdoor",
			SetMapKind(MapOutdoor),
			State{SelectedCampus: "lakeside", CurrentMap: MapOutdoor, ShowRoute: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s.Dispatch(tc.action)
			if got := s.State(); got != tc.want {
				t.Errorf("state = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSubscribe(t *testing.T) {
	s := New(State{CurrentMap: MapOutdoor})

	var seen []State
	s.Subscribe(func(st State) { seen = append(seen, st) })

	s.Dispatch(SetMapKind(MapIndoor))
	s.Dispatch(SetShowRoute(true))

	if len(seen) != 2 {
		t.Fatalf("subscriber saw %d states, want 2", len(seen))
	}
	if seen[0].CurrentMap != MapIndoor {
		t.Errorf("first notification = %+v, want indoor map", seen[0])
	}
	if !seen[1].ShowRoute {
		t.Errorf("second notification = %+v, want route shown", seen[1])
	}
}

func TestDispatchDoesNotMutateSnapshots(t *testing.T) {
	s := New(State{CurrentMap: MapOutdoor})

	before := s.State()
	s.Dispatch(SetMapKind(MapIndoor))

	if before.CurrentMap != MapOutdoor {
		t.Error("earlier snapshot mutated by dispatch")
	}
}
