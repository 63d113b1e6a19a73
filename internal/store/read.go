package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Load returns every persisted record in append order.
// Returns an empty slice (not nil) for an empty ledger.
func (s *Store) Load(ctx context.Context) ([]ledger.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_number, current_id, needed_id, oven_number,
		       estimated_duration, operator, material, thickness,
		       load_time, unload_time
		FROM cylinders
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query cylinders: %w", err)
	}
	defer rows.Close()

	records := []ledger.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cylinders: %w", err)
	}

	return records, nil
}

// scanner is satisfied by *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a row into a Record.
func scanRecord(sc scanner) (ledger.Record, error) {
	var rec ledger.Record
	var loadTime string
	var unloadTime sql.NullString

	if err := sc.Scan(
		&rec.ID, &rec.OrderNumber, &rec.CurrentID, &rec.NeededID, &rec.OvenNumber,
		&rec.EstimatedDuration, &rec.Operator, &rec.Material, &rec.Thickness,
		&loadTime, &unloadTime,
	); err != nil {
		return ledger.Record{}, fmt.Errorf("scan cylinder: %w", err)
	}

	var err error
	rec.LoadTime, err = unmarshalTime(loadTime)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("cylinder %s: load_time: %w", rec.ID, err)
	}
	rec.UnloadTime, err = unmarshalOptionalTime(unloadTime)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("cylinder %s: unload_time: %w", rec.ID, err)
	}

	return rec, nil
}
