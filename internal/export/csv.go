package export

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/roach88/ovenledger/internal/ledger"
	"github.com/roach88/ovenledger/internal/store"
)

// CSV writes the projection as a comma-separated file with the ledger
// columns and RFC 3339 timestamps.
type CSV struct {
	path string
}

// NewCSV returns a CSV writer targeting path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Path returns the artifact location.
func (c *CSV) Path() string {
	return c.path
}

// ContentType returns the CSV MIME type.
func (c *CSV) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Export replaces the file with one row per unloaded record.
func (c *CSV) Export(ctx context.Context, unloaded []ledger.Record) error {
	return store.WriteAtomic(c.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(ledger.Columns); err != nil {
			return err
		}
		for _, rec := range unloaded {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := cw.Write(store.FormatRow(rec)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
