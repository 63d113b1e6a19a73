package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ovenledger/internal/testutil"
)

// memStore is an in-memory Store that counts saves.
type memStore struct {
	records []Record
	saves   int
	loadErr error
	saveErr error
}

func (s *memStore) Load(ctx context.Context) ([]Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.clone()
	}
	return out, nil
}

func (s *memStore) Save(ctx context.Context, records []Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.records = make([]Record, len(records))
	for i, r := range records {
		s.records[i] = r.clone()
	}
	return nil
}

func (s *memStore) Path() string { return "mem" }

// memExporter records the last projection it was asked to write.
type memExporter struct {
	last  []Record
	calls int
	err   error
}

func (e *memExporter) Export(ctx context.Context, unloaded []Record) error {
	e.calls++
	if e.err != nil {
		return e.err
	}
	e.last = unloaded
	return nil
}

func (e *memExporter) Path() string { return "mem.xlsx" }

var errDiskFull = errors.New("disk full")

type fixture struct {
	ledger   *Ledger
	store    *memStore
	exporter *memExporter
	clock    *testutil.FakeClock
}

// newFixture loads an empty ledger over in-memory collaborators.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    &memStore{},
		exporter: &memExporter{},
		clock:    testutil.NewFakeClock(time.Time{}),
	}
	l, err := Load(context.Background(), f.store,
		WithClock(f.clock),
		WithIDGenerator(testutil.NewSequentialIDs("")),
		WithExporter(f.exporter),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	f.ledger = l
	return f
}

// validCylinder returns the reference cylinder used across tests.
func validCylinder() NewCylinder {
	return NewCylinder{
		OrderNumber:       "O1",
		CurrentID:         "C1",
		NeededID:          "C2",
		OvenNumber:        "Oven 2",
		EstimatedDuration: 60,
		Operator:          "Alice",
		Material:          "Steel",
		Thickness:         2.0,
	}
}

func collect(l *Ledger) []InOvenItem {
	var items []InOvenItem
	for item := range l.InOvenDetail() {
		items = append(items, item)
	}
	return items
}

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }
