package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/scraper-bots/receipt-data/internal/record"
)

// WriteCSV renders records to w with the fixed 30-column header. Numeric
// fields arrive pre-formatted as decimal strings, so the file renders
// identically regardless of consumer.
func WriteCSV(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Row()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes one output table for the whole run.
func WriteCSVFile(path string, records []record.Record, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return err
	}
	logger.Info("export.csv.ok", "path", path, "rows", len(records))
	return nil
}
