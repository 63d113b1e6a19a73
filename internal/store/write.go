package store

import (
	"context"
	"fmt"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Save replaces the persisted record set with records, in one transaction.
// Row order is preserved through the seq column.
//
// A failed save leaves the previous set intact.
func (s *Store) Save(ctx context.Context, records []ledger.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save cylinders: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM cylinders`); err != nil {
		return fmt.Errorf("save cylinders: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cylinders
		(id, seq, order_number, current_id, needed_id, oven_number,
		 estimated_duration, operator, material, thickness, load_time, unload_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save cylinders: prepare: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ID,
			i,
			rec.OrderNumber,
			rec.CurrentID,
			rec.NeededID,
			rec.OvenNumber,
			rec.EstimatedDuration,
			rec.Operator,
			rec.Material,
			rec.Thickness,
			marshalTime(rec.LoadTime),
			marshalOptionalTime(rec.UnloadTime),
		)
		if err != nil {
			return fmt.Errorf("save cylinders: insert %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save cylinders: commit: %w", err)
	}

	return nil
}
