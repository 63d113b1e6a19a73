package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/ovenledger/internal/ledger"
)

// idColumn is appended after ledger.Columns. Files without it are read as
// legacy ledgers whose rows get IDs assigned by the ledger.
const idColumn = "ID"

// CSV is a ledger backend over a single comma-separated file.
type CSV struct {
	path string
}

// NewCSV returns a CSV backend for path. The file is not touched until the
// first Load or Save.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Path returns the file location.
func (c *CSV) Path() string {
	return c.path
}

// Load reads every row of the file. A missing or empty file loads as an
// empty set.
func (c *CSV) Load(ctx context.Context) ([]ledger.Record, error) {
	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []ledger.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []ledger.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	records := []ledger.Record{}
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("csv line %d: %d fields, header has %d", line, len(row), len(header))
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Save rewrites the file with records. The new content is written to a
// temporary file and renamed over the old one.
func (c *CSV) Save(ctx context.Context, records []ledger.Record) error {
	return WriteAtomic(c.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(append(append([]string{}, ledger.Columns...), idColumn)); err != nil {
			return err
		}
		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := cw.Write(append(FormatRow(rec), rec.ID)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// FormatRow renders a record as the ten ledger.Columns values, with an
// empty UnloadTime for in-oven records.
func FormatRow(rec ledger.Record) []string {
	unload := marshalOptionalTime(rec.UnloadTime)
	return []string{
		rec.OrderNumber,
		rec.CurrentID,
		rec.NeededID,
		rec.OvenNumber,
		strconv.Itoa(rec.EstimatedDuration),
		rec.Operator,
		rec.Material,
		strconv.FormatFloat(rec.Thickness, 'f', -1, 64),
		marshalTime(rec.LoadTime),
		unload.String,
	}
}

// columnIndex maps each known column to its position in header. Every
// ledger column is required; the ID column is optional.
func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, name := range ledger.Columns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (ledger.Record, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		return row[i]
	}

	rec := ledger.Record{
		ID:          strings.TrimSpace(get(idColumn)),
		OrderNumber: get("OrderNumber"),
		CurrentID:   get("CurrentID"),
		NeededID:    get("NeededID"),
		OvenNumber:  get("OvenNumber"),
		Operator:    get("Operator"),
		Material:    get("Material"),
	}

	duration, err := parseDuration(get("EstimatedDuration"))
	if err != nil {
		return ledger.Record{}, err
	}
	rec.EstimatedDuration = duration

	rec.Thickness, err = strconv.ParseFloat(strings.TrimSpace(get("Thickness")), 64)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("Thickness: %w", err)
	}

	rec.LoadTime, err = unmarshalTime(get("LoadTime"))
	if err != nil {
		return ledger.Record{}, fmt.Errorf("LoadTime: %w", err)
	}

	rec.UnloadTime, err = unmarshalOptionalTime(sql.NullString{String: get("UnloadTime"), Valid: true})
	if err != nil {
		return ledger.Record{}, fmt.Errorf("UnloadTime: %w", err)
	}

	return rec, nil
}

// parseDuration accepts whole minutes, including the "60.0" form numeric
// columns take after a round trip through a dataframe.
func parseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("EstimatedDuration: invalid minutes %q", s)
	}
	return int(f), nil
}

// WriteAtomic writes through fn into a temp file beside path, then renames
// it over path. Readers never observe a partially written file.
func WriteAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
