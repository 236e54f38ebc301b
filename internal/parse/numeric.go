package parse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is the parsed-or-invalid result for a numeric receipt field.
// Malformed input is an expected data-quality condition here, not an error.
type Amount struct {
	Value float64
	Valid bool
	Raw   string
}

// ParseAmount interprets the usual "no value" spellings ("", "null", "N/A")
// as invalid rather than zero.
func ParseAmount(raw string) Amount {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
		return Amount{Raw: raw}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Amount{Raw: raw}
	}
	return Amount{Value: v, Valid: true, Raw: raw}
}

// FormatMoney renders a monetary value with stable 2-decimal precision.
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatQuantity renders a quantity with one decimal place, keeping finer
// precision only when the value genuinely carries it (weighed goods).
func FormatQuantity(q float64) string {
	if math.Abs(q-math.Round(q*10)/10) < 1e-9 {
		return fmt.Sprintf("%.1f", q)
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}
