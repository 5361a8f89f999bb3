// internal/store/memory.go
//
// In-memory stores.
//
// Characteristics:
//   - Runs: active mission runs keyed by ID; swept once idle too long.
//   - Players: PlayerData keyed by name, for tests and ephemeral servers.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/typehack/internal/mission"
	"github.com/robalobadob/typehack/internal/progress"
)

// RunStore defines the persistence interface for mission runs.
type RunStore interface {
	// Save persists or updates a run.
	Save(ctx context.Context, r *mission.Run) error

	// Get retrieves a run by ID.
	// Returns ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*mission.Run, error)

	// Sweep drops runs not updated since before cutoff and reports how many.
	Sweep(ctx context.Context, cutoff time.Time) int
}

// memoryRuns is an in-memory map-based RunStore implementation.
type memoryRuns struct {
	mu   sync.RWMutex            // guards runs map
	runs map[string]*mission.Run // keyed by Run.ID
}

// NewMemoryRuns constructs a new in-memory RunStore.
func NewMemoryRuns() RunStore {
	return &memoryRuns{runs: make(map[string]*mission.Run)}
}

// Save adds or updates the run in the map.
func (m *memoryRuns) Save(_ context.Context, r *mission.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[r.ID] = r
	return nil
}

// Get looks up a run by ID.
func (m *memoryRuns) Get(_ context.Context, id string) (*mission.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.runs[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *memoryRuns) Sweep(_ context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.runs {
		if r.UpdatedAt.Before(cutoff) {
			delete(m.runs, id)
			n++
		}
	}
	return n
}

// memoryPlayers keeps copies of PlayerData keyed by name.
type memoryPlayers struct {
	mu      sync.RWMutex
	players map[string]progress.PlayerData
}

// NewMemoryPlayers constructs an in-memory PlayerStore.
func NewMemoryPlayers() PlayerStore {
	return &memoryPlayers{players: make(map[string]progress.PlayerData)}
}

func (m *memoryPlayers) Load(_ context.Context, name string) (*progress.PlayerData, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.players[name]; ok {
		return &p, nil
	}
	return progress.Named(name), nil
}

func (m *memoryPlayers) Save(_ context.Context, p *progress.PlayerData) error {
	if err := ValidName(p.PlayerName); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.PlayerName] = *p
	return nil
}
