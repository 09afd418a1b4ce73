package session

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}, now: time.Now}
}

func (m *MemoryStore) Put(_ context.Context, browserID string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[browserID] = prepare(rec)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, browserID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[browserID]
	if !ok {
		return Record{}, ErrNotFound
	}
	if rec.Expired(m.now()) {
		delete(m.records, browserID)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Delete(_ context.Context, browserID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, browserID)
	return nil
}

func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, rec := range m.records {
		if rec.Expired(now) {
			delete(m.records, id)
			removed++
		}
	}
	return removed, nil
}
