// Package mapstate holds the observable map display state: which campus is
// selected, which map canvas (indoor or outdoor) is active, and whether a
// route is being shown.
package mapstate

import "sync"

// MapKind identifies the active map canvas.
type MapKind string

const (
	MapOutdoor MapKind = "outdoor"
	MapIndoor  MapKind = "indoor"
)

// State is an immutable snapshot of the map display state.
type State struct {
	SelectedCampus string  `json:"selected_campus"`
	CurrentMap     MapKind `json:"current_map"`
	ShowRoute      bool    `json:"show_route"`
}

// Action describes one state transition. Reducers are pure: no side effects,
// each dispatch yields a new State value.
type Action interface {
	reduce(State) State
}

type setMapKind struct{ kind MapKind }

func (a setMapKind) reduce(s State) State {
	s.CurrentMap = a.kind
	return s
}

// SetMapKind switches the active map canvas.
func SetMapKind(kind MapKind) Action { return setMapKind{kind} }

type setShowRoute struct{ show bool }

func (a setShowRoute) reduce(s State) State {
	s.ShowRoute = a.show
	return s
}

// SetShowRoute toggles route display.
func SetShowRoute(show bool) Action { return setShowRoute{show} }

type setSelectedCampus struct{ campus string }

func (a setSelectedCampus) reduce(s State) State {
	s.SelectedCampus = a.campus
	return s
}

// SetSelectedCampus switches the selected campus.
func SetSelectedCampus(campus string) Action { return setSelectedCampus{campus} }

// Store is the single mutable shared resource of the navigation core. It is
// only ever mutated through Dispatch.
type Store struct {
	mu    sync.RWMutex
	state State
	subs  []func(State)
}

// New creates a store with the given initial state.
func New(initial State) *Store {
	return &Store{state: initial}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies the action and notifies subscribers with the new state.
// Subscribers run synchronously on the dispatching goroutine.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = a.reduce(s.state)
	next := s.state
	subs := make([]func(State), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers a listener for every dispatched state change.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
