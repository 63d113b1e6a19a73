// Package export writes the unloaded-cylinder projection as a standalone
// spreadsheet artifact.
//
// The artifact is regenerated in full on every write, never appended to, and
// always replaces the previous file atomically.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Project returns the unloaded subset of records in their original order.
func Project(records []ledger.Record) []ledger.Record {
	out := []ledger.Record{}
	for _, r := range records {
		if !r.InOven() {
			out = append(out, r)
		}
	}
	return out
}

// Writer is a ledger.Exporter that also reports its MIME type, so the
// dashboard can serve the artifact for download.
type Writer interface {
	ledger.Exporter
	ContentType() string
}

// New returns the writer matching path's extension: .xlsx or .csv.
func New(path string) (Writer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return NewXLSX(path), nil
	case ".csv":
		return NewCSV(path), nil
	default:
		return nil, fmt.Errorf("unsupported export file %q: use .xlsx or .csv", path)
	}
}

// Write projects records and writes the result through w. Used when the
// caller holds the full ledger rather than the projection.
func Write(ctx context.Context, w ledger.Exporter, records []ledger.Record) error {
	return w.Export(ctx, Project(records))
}
