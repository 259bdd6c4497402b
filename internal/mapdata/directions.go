package mapdata

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/campusgo/campusnav/internal/models"
)

// Indoor walking pace; corridors are slower than open sidewalks.
const indoorWalkingSpeedMps = 1.2

// Waiting for the car dominates short elevator hops.
const elevatorPenaltySeconds = 30

// Directions is a computed indoor path with turn-by-turn steps.
type Directions struct {
	Steps           []models.Step `json:"steps"`
	Path            []string      `json:"path"`
	DistanceMeters  float64       `json:"distance_meters"`
	DurationSeconds float64       `json:"duration_seconds"`
	Accessible      bool          `json:"accessible"`
}

type pqItem struct {
	entityID string
	cost     float64
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// GetDirections computes the shortest path between two entities using
// Dijkstra over the connection graph. With accessible set, stair edges are
// excluded. Returns nil when either endpoint is unknown or no path exists;
// an absent path is a normal outcome, not an error.
func (m *Map) GetDirections(from, to models.RoomRef, accessible bool) *Directions {
	if m.byID[from.ID] == nil || m.byID[to.ID] == nil {
		return nil
	}
	if from.ID == to.ID {
		return &Directions{
			Path:       []string{from.ID},
			Steps:      []models.Step{{Instruction: fmt.Sprintf("You are at %s", m.byID[to.ID].Name)}},
			Accessible: accessible,
		}
	}

	dist := make(map[string]float64, len(m.Entities))
	prev := make(map[string]string)
	prevEdge := make(map[string]edge)
	visited := make(map[string]bool)
	for id := range m.byID {
		dist[id] = math.Inf(1)
	}
	dist[from.ID] = 0

	pq := make(priorityQueue, 0, len(m.Entities))
	heap.Init(&pq)
	heap.Push(&pq, &pqItem{entityID: from.ID})

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*pqItem)
		if visited[current.entityID] {
			continue
		}
		visited[current.entityID] = true
		if current.entityID == to.ID {
			break
		}

		for _, e := range m.adj[current.entityID] {
			if accessible && e.kind == ConnStairs {
				continue
			}
			next := dist[current.entityID] + e.dist
			if next < dist[e.to] {
				dist[e.to] = next
				prev[e.to] = current.entityID
				prevEdge[e.to] = e
				heap.Push(&pq, &pqItem{entityID: e.to, cost: next})
			}
		}
	}

	if math.IsInf(dist[to.ID], 1) {
		return nil
	}

	var path []string
	for id := to.ID; ; id = prev[id] {
		path = append(path, id)
		if id == from.ID {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return m.buildDirections(path, prevEdge, dist[to.ID], accessible)
}

func (m *Map) buildDirections(path []string, prevEdge map[string]edge, total float64, accessible bool) *Directions {
	d := &Directions{
		Path:           path,
		DistanceMeters: total,
		Accessible:     accessible,
	}

	for i := 1; i < len(path); i++ {
		e := prevEdge[path[i]]
		target := m.byID[path[i]]
		step := models.Step{
			DistanceMeters:  e.dist,
			DurationSeconds: e.dist / indoorWalkingSpeedMps,
		}
		switch e.kind {
		case ConnStairs:
			step.Instruction = fmt.Sprintf("Take the stairs to %s", m.floorName(target.FloorID))
		case ConnElevator:
			step.Instruction = fmt.Sprintf("Take the elevator to %s", m.floorName(target.FloorID))
			step.DurationSeconds += elevatorPenaltySeconds
		default:
			step.Instruction = fmt.Sprintf("Walk to %s", target.Name)
		}
		d.Steps = append(d.Steps, step)
		d.DurationSeconds += step.DurationSeconds
	}

	if last := m.byID[path[len(path)-1]]; last != nil {
		d.Steps = append(d.Steps, models.Step{
			Instruction: fmt.Sprintf("Arrive at %s", last.Name),
		})
	}
	return d
}

func (m *Map) floorName(id string) string {
	for _, f := range m.Floors {
		if f.ID == id {
			return f.Name
		}
	}
	if id == "" {
		return "the main floor"
	}
	return "floor " + id
}
