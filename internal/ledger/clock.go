package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies wall-clock time. Elapsed minutes and load/unload stamps are
// always computed from it, so tests can drive time explicitly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// IDGenerator produces record identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 record IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// stamp normalizes a clock reading for storage: UTC, monotonic reading
// stripped, so a value survives a save/load round trip unchanged.
func stamp(t time.Time) time.Time {
	return t.UTC().Round(0)
}
