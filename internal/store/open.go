package store

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Backend is a ledger.Store that may hold resources until closed.
type Backend interface {
	ledger.Store
	io.Closer
}

// ForPath opens the backend matching path's extension:
//   - .csv: CSV file
//   - .db, .sqlite, .sqlite3, ":memory:": SQLite
//
// Any other extension is rejected so a typo never creates a stray database.
func ForPath(path string) (Backend, error) {
	if path == ":memory:" {
		return Open(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvBackend{NewCSV(path)}, nil
	case ".db", ".sqlite", ".sqlite3":
		return Open(path)
	default:
		return nil, fmt.Errorf("unsupported ledger file %q: use .db, .sqlite or .csv", path)
	}
}

// csvBackend adapts CSV (which holds no resources) to Backend.
type csvBackend struct {
	*CSV
}

func (csvBackend) Close() error { return nil }
