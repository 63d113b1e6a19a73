package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/ovenledger/internal/ledger"
	"github.com/roach88/ovenledger/internal/store"
)

// SheetName is the worksheet holding the unloaded cylinders.
const SheetName = "Unloaded"

// SpreadsheetTimeLayout is how timestamps appear in the workbook.
const SpreadsheetTimeLayout = "2006-01-02 15:04:05"

// XLSX writes the projection as an Excel workbook.
type XLSX struct {
	path string
}

// NewXLSX returns an XLSX writer targeting path.
func NewXLSX(path string) *XLSX {
	return &XLSX{path: path}
}

// Path returns the artifact location.
func (x *XLSX) Path() string {
	return x.path
}

// ContentType returns the workbook MIME type.
func (x *XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export replaces the workbook with one row per unloaded record.
func (x *XLSX) Export(ctx context.Context, unloaded []ledger.Record) error {
	f, err := buildWorkbook(ctx, unloaded)
	if err != nil {
		return err
	}
	defer f.Close()

	return store.WriteAtomic(x.path, func(w io.Writer) error {
		return f.Write(w)
	})
}

func buildWorkbook(ctx context.Context, unloaded []ledger.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(ledger.Columns))
	for i, c := range ledger.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, rec := range unloaded {
		if err := ctx.Err(); err != nil {
			f.Close()
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := spreadsheetRow(rec)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "J", 18); err != nil {
		f.Close()
		return nil, fmt.Errorf("column width: %w", err)
	}

	return f, nil
}

// spreadsheetRow renders the record's ledger columns with native numeric
// cells for duration and thickness.
func spreadsheetRow(rec ledger.Record) []any {
	unload := ""
	if rec.UnloadTime != nil {
		unload = rec.UnloadTime.UTC().Format(SpreadsheetTimeLayout)
	}
	return []any{
		rec.OrderNumber,
		rec.CurrentID,
		rec.NeededID,
		rec.OvenNumber,
		rec.EstimatedDuration,
		rec.Operator,
		rec.Material,
		rec.Thickness,
		rec.LoadTime.UTC().Format(SpreadsheetTimeLayout),
		unload,
	}
}
