package store

import (
	"context"
	"sync"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Memory is a volatile ledger backend. Used by the scenario harness and by
// tests that do not care about the on-disk format.
type Memory struct {
	mu      sync.Mutex
	records []ledger.Record
	saves   int
}

// NewMemory returns a Memory store preloaded with records.
func NewMemory(records ...ledger.Record) *Memory {
	return &Memory{records: copyRecords(records)}
}

// Load returns a copy of the stored records.
func (m *Memory) Load(ctx context.Context) ([]ledger.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRecords(m.records), nil
}

// Save replaces the stored records.
func (m *Memory) Save(ctx context.Context, records []ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = copyRecords(records)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Path identifies the store in logs and errors.
func (m *Memory) Path() string {
	return "memory"
}

func copyRecords(in []ledger.Record) []ledger.Record {
	out := make([]ledger.Record, len(in))
	for i, r := range in {
		if r.UnloadTime != nil {
			t := *r.UnloadTime
			r.UnloadTime = &t
		}
		out[i] = r
	}
	return out
}
