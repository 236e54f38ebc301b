package parse

import (
	"log/slog"
	"regexp"
	"strings"
)

// Fields is the raw receipt-level field map. A missing key means the field
// was absent from the text; values are never empty strings.
type Fields map[string]string

// Get returns the value for name and whether it was present.
func (f Fields) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

func (f Fields) set(name, value string) {
	if value == "" {
		return
	}
	if _, exists := f[name]; exists {
		return // first match wins
	}
	f[name] = value
}

// RawItem is one item-row candidate exactly as it appeared in the text.
// No numeric interpretation happens here; the assembler gate owns that.
type RawItem struct {
	Name      string
	Quantity  string
	UnitPrice string
	LineTotal string
}

var (
	reQuotes   = regexp.MustCompile(`["']+`)
	reSpaces   = regexp.MustCompile(`\s+`)
	reDateLike = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	reTaxNoise = regexp.MustCompile(`^\*ƏDV`)
)

// Extract applies the field grammar to raw OCR text and returns the
// receipt-level field map plus the raw item rows, in source order.
// Field absence is not an error, and a missing items block yields an empty
// row list while receipt-level fields are still returned.
func Extract(text, sourceID string, logger *slog.Logger) (Fields, []RawItem) {
	if logger == nil {
		logger = slog.Default()
	}

	fields := make(Fields)
	for _, rule := range Rules() {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch rule.Post {
		case PostSplitDateTime:
			fields.set(rule.Field, strings.TrimSpace(m[1]))
			fields.set(rule.Companion, strings.TrimSpace(m[2]))
		case PostCollapse:
			v := reQuotes.ReplaceAllString(strings.TrimSpace(m[1]), "")
			fields.set(rule.Field, strings.TrimSpace(reSpaces.ReplaceAllString(v, " ")))
		case PostNameGuard:
			v := strings.TrimSpace(m[1])
			if !reDateLike.MatchString(v) {
				fields.set(rule.Field, v)
			}
		default:
			fields.set(rule.Field, strings.TrimSpace(m[1]))
		}
	}

	items := extractItems(text)
	logger.Debug("extract.done",
		"source_id", sourceID,
		"fields", len(fields),
		"items", len(items),
	)
	return fields, items
}

// extractItems slices the span between the item-table header and the
// subtotal trailer and walks it line by line.
func extractItems(text string) []RawItem {
	header := reItemsHeader.FindStringIndex(text)
	if header == nil {
		return nil
	}
	tail := text[header[1]:]
	end := reItemsEnd.FindStringIndex(tail)
	if end == nil {
		return nil
	}
	block := tail[:end[0]]

	var lines []string
	for _, ln := range strings.Split(block, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || reTaxNoise.MatchString(ln) {
			continue
		}
		lines = append(lines, ln)
	}

	var items []RawItem
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := reItemWithUnit.FindStringSubmatch(line); m != nil {
			items = append(items, RawItem{
				Name: strings.TrimSpace(m[1]), Quantity: m[3], UnitPrice: m[4], LineTotal: m[5],
			})
			continue
		}
		if m := reItemBare.FindStringSubmatch(line); m != nil {
			items = append(items, RawItem{
				Name: strings.TrimSpace(m[1]), Quantity: m[2], UnitPrice: m[3], LineTotal: m[4],
			})
			continue
		}
		// A name that wrapped onto the next physical line: join and retry,
		// consuming both lines on success.
		if i+1 < len(lines) {
			joined := line + " " + lines[i+1]
			if m := reItemBare.FindStringSubmatch(joined); m != nil {
				items = append(items, RawItem{
					Name: strings.TrimSpace(m[1]), Quantity: m[2], UnitPrice: m[3], LineTotal: m[4],
				})
				i++
			}
		}
	}
	return items
}
