package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/ovenledger/internal/ledger"
)

// createTestStore creates a new SQLite store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testLoadTime = time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)

// createTestRecord creates a record with every column populated.
// unloadAfter < 0 leaves the record in the oven.
func createTestRecord(id, oven string, unloadAfter time.Duration) ledger.Record {
	rec := ledger.Record{
		ID:                id,
		OrderNumber:       "O-" + id,
		CurrentID:         "C-" + id,
		NeededID:          "N-" + id,
		OvenNumber:        oven,
		EstimatedDuration: 60,
		Operator:          "Alice",
		Material:          "Steel",
		Thickness:         2.5,
		LoadTime:          testLoadTime,
	}
	if unloadAfter >= 0 {
		u := testLoadTime.Add(unloadAfter)
		rec.UnloadTime = &u
	}
	return rec
}

// mixedRecords is a set with both in-oven and unloaded records, including
// sub-second timestamps.
func mixedRecords() []ledger.Record {
	recs := []ledger.Record{
		createTestRecord("a", "Oven 1", -1),
		createTestRecord("b", "Oven 2", 90*time.Minute),
		createTestRecord("c", "Oven 3", -1),
		createTestRecord("d", "Oven 2", 61*time.Minute+123456789*time.Nanosecond),
	}
	recs[2].Thickness = 0
	recs[2].Operator = "Zoé, \"night shift\""
	return recs
}
