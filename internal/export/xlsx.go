package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/scraper-bots/receipt-data/internal/record"
)

// WriteXLSX returns an XLSX workbook (as bytes) with the same rows and
// column order as the CSV export, for people who review results in a
// spreadsheet rather than a data pipeline.
func WriteXLSX(records []record.Record, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range record.Columns() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx := range records {
		for colIdx, v := range records[rowIdx].Row() {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Widen the name-ish columns; the rest are short numerics.
	_ = f.SetColWidth(sheet, "A", "A", 28) // filename
	_ = f.SetColWidth(sheet, "B", "B", 30) // store name
	_ = f.SetColWidth(sheet, "C", "C", 40) // address
	_ = f.SetColWidth(sheet, "K", "K", 32) // item name

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
