package realtime

import (
	"sort"
	"sync"
	"time"

	"madmetro/internal/webwatch"
)

// Snapshot is the latest data polled for one route.
type Snapshot struct {
	RouteID  string
	PolledAt time.Time
	Data     *webwatch.RouteCurrentData
}

// Store holds the latest snapshot per route in a thread-safe manner.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewStore creates an empty realtime store.
func NewStore() *Store {
	return &Store{snapshots: make(map[string]Snapshot)}
}

// Set replaces the snapshot of a route.
func (s *Store) Set(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.RouteID] = snap
}

// Get returns the snapshot of a route.
func (s *Store) Get(routeID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[routeID]
	return snap, ok
}

// All returns every snapshot ordered by route ID.
func (s *Store) All() []Snapshot {
	s.mu.RLock()
	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RouteID < out[j].RouteID })
	return out
}

// VehicleCount returns the number of vehicles across all routes.
func (s *Store) VehicleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, snap := range s.snapshots {
		if snap.Data != nil {
			n += len(snap.Data.Vehicles)
		}
	}
	return n
}
