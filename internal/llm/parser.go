package llm

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/scraper-bots/receipt-data/internal/assemble"
	"github.com/scraper-bots/receipt-data/internal/parse"
)

// Keys an item object may carry besides the line-item fields themselves.
// Everything else the model invents is dropped on the floor.
var receiptLevelKeys = []string{
	parse.FieldStoreName, parse.FieldStoreAddress, parse.FieldStoreCode,
	parse.FieldTaxpayerName, parse.FieldTaxID, parse.FieldReceiptNumber,
	parse.FieldCashierName, parse.FieldDate, parse.FieldTime,
	parse.FieldSubtotal, parse.FieldVAT, parse.FieldTotalTax,
	parse.FieldCashless, parse.FieldCash, parse.FieldBonus,
	parse.FieldAdvance, parse.FieldCredit, parse.FieldQueueNumber,
	parse.FieldRegisterModel, parse.FieldRegisterSerial,
	parse.FieldFiscalID, parse.FieldFiscalReg,
	parse.FieldRefundAmount, parse.FieldRefundDate, parse.FieldRefundTime,
}

var reObjectFragment = regexp.MustCompile(`\{[^{}]*"item_name"[^{}]*\}`)

// ParseItems turns a raw completion into item inputs for the shared
// assembler. The stages run in order: strip code fencing, locate the first
// balanced array span, strict-parse it, and on failure fall back to
// recovering individual object fragments that mention an item name.
// ErrStructuralParse means nothing recoverable came back at all — the one
// outcome the caller may retry.
func ParseItems(completion, sourceID string, logger *slog.Logger) ([]assemble.ItemInput, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := stripFences(strings.TrimSpace(completion))
	span, ok := locateArray(s)
	if !ok {
		if items := recoverFragments(completion, sourceID, logger); len(items) > 0 {
			return items, nil
		}
		return nil, ErrStructuralParse
	}

	var objs []map[string]any
	if err := json.Unmarshal([]byte(span), &objs); err != nil {
		// A bare object instead of an array still counts.
		var single map[string]any
		if err2 := json.Unmarshal([]byte(span), &single); err2 == nil {
			objs = []map[string]any{single}
		} else {
			if items := recoverFragments(completion, sourceID, logger); len(items) > 0 {
				return items, nil
			}
			return nil, ErrStructuralParse
		}
	}

	var items []assemble.ItemInput
	for _, obj := range objs {
		if !validItemShape(obj) {
			continue
		}
		items = append(items, toItemInput(obj))
	}
	return items, nil
}

// stripFences removes markdown code-block delimiters the model likes to
// wrap JSON in.
func stripFences(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}

// locateArray returns the earliest balanced [...] span, tracking string
// literals so brackets inside values don't end the scan early.
func locateArray(s string) (string, bool) {
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		return s, true
	}
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// recoverFragments scans a syntactically broken response for well-formed
// sub-objects and keeps whichever ones parse on their own.
func recoverFragments(s, sourceID string, logger *slog.Logger) []assemble.ItemInput {
	var items []assemble.ItemInput
	for _, frag := range reObjectFragment.FindAllString(s, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(frag), &obj); err != nil {
			continue
		}
		if !validItemShape(obj) {
			continue
		}
		items = append(items, toItemInput(obj))
	}
	if len(items) > 0 {
		logger.Info("llm.parse.fallback_recovered", "source_id", sourceID, "items", len(items))
	}
	return items
}

// toItemInput splits one decoded object into the receipt-level field map
// and the raw item row, stringifying JSON numbers along the way.
func toItemInput(obj map[string]any) assemble.ItemInput {
	fields := make(parse.Fields)
	for _, key := range receiptLevelKeys {
		if v, ok := stringify(obj[key]); ok {
			fields[key] = v
		}
	}
	return assemble.ItemInput{
		Fields: fields,
		Row: parse.RawItem{
			Name:      stringifyOr(obj["item_name"]),
			Quantity:  stringifyOr(obj["quantity"]),
			UnitPrice: stringifyOr(obj["unit_price"]),
			LineTotal: stringifyOr(obj["line_total"]),
		},
	}
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
			return "", false
		}
		return s, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func stringifyOr(v any) string {
	s, _ := stringify(v)
	return s
}
