// Package store provides RunStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

var _ settlement.RunStore = (*Memory)(nil)

type Memory struct {
	mu   sync.RWMutex
	runs map[settlement.RunID]settlement.Run

	// order holds IDs by CreatedAt ascending.
	order []settlement.RunID
}

func NewMemory() *Memory {
	return &Memory{
		runs: make(map[settlement.RunID]settlement.Run),
	}
}

// Save archives a run.
func (m *Memory) Save(_ context.Context, run settlement.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return settlement.ErrDuplicateRun
	}
	run.Forecast = run.Forecast.Clone()
	m.runs[run.ID] = run

	// Binary search for insertion point, keeps order sorted by CreatedAt
	i := sort.Search(len(m.order), func(i int) bool {
		return m.runs[m.order[i]].CreatedAt.After(run.CreatedAt)
	})
	m.order = append(m.order, "")
	copy(m.order[i+1:], m.order[i:])
	m.order[i] = run.ID
	return nil
}

func (m *Memory) Get(_ context.Context, id settlement.RunID) (settlement.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return settlement.Run{}, settlement.ErrRunNotFound
	}
	run.Forecast = run.Forecast.Clone()
	return run, nil
}

func (m *Memory) List(_ context.Context, filter settlement.RunFilter) ([]settlement.RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []settlement.RunSummary
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.runs[m.order[i]].Summary()
		if !filter.Matches(s) {
			continue
		}
		result = append(result, s)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (m *Memory) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	removed := 0
	for _, id := range m.order {
		if m.runs[id].CreatedAt.Before(cutoff) {
			delete(m.runs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed, nil
}
