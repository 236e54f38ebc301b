package export

import (
	"log/slog"

	"github.com/scraper-bots/receipt-data/internal/record"
)

// Stats is the quality summary for one run's output table.
type Stats struct {
	Rows          int
	Documents     int
	ItemRows      int
	FallbackRows  int
	WithStoreName int
	WithAddress   int
	WithDateTime  int
	FieldCoverage map[string]int // non-empty cells per column
}

// Summarize computes field-coverage statistics over the final records, the
// numbers quality review starts from.
func Summarize(records []record.Record) Stats {
	st := Stats{
		Rows:          len(records),
		FieldCoverage: make(map[string]int, len(record.Columns())),
	}
	cols := record.Columns()
	seen := make(map[string]struct{})

	for i := range records {
		r := &records[i]
		if _, ok := seen[r.SourceID]; !ok {
			seen[r.SourceID] = struct{}{}
			st.Documents++
		}
		if r.HasItem() {
			st.ItemRows++
		} else {
			st.FallbackRows++
		}
		if r.StoreName != nil {
			st.WithStoreName++
		}
		if r.StoreAddress != nil {
			st.WithAddress++
		}
		if r.Date != nil && r.Time != nil {
			st.WithDateTime++
		}
		for ci, v := range r.Row() {
			if v != "" {
				st.FieldCoverage[cols[ci]]++
			}
		}
	}
	return st
}

// Log emits the summary as one structured event per headline number.
func (st Stats) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("export.summary",
		"rows", st.Rows,
		"documents", st.Documents,
		"item_rows", st.ItemRows,
		"fallback_rows", st.FallbackRows,
		"with_store_name", st.WithStoreName,
		"with_address", st.WithAddress,
		"with_date_time", st.WithDateTime,
	)
}
