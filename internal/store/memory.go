package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// Memory is a mutex-guarded in-process store. It is the reference
// implementation of the TryInsert contract and the default backend for tests
// and local development.
type Memory struct {
	mu   sync.Mutex
	rows map[model.SlotKey]model.Reservation
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[model.SlotKey]model.Reservation)}
}

func (m *Memory) TryInsert(_ context.Context, r *model.Reservation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := r.Key()
	if _, exists := m.rows[key]; exists {
		return false, nil
	}
	m.rows[key] = *r
	return true, nil
}

func (m *Memory) Get(_ context.Context, key model.SlotKey) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) ListByHorizon(_ context.Context, horizon time.Time) ([]model.Reservation, error) {
	date := horizon.Format("2006-01-02")
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for key, r := range m.rows {
		if key.HorizonDate == date {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// Len reports the number of committed reservations. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
