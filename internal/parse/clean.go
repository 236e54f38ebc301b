package parse

import (
	"regexp"
	"strings"
)

// Junk prefixes stripped from item names, in order. The first two cover the
// VAT annotation with or without a stray leading letter or quote that OCR
// attaches to it; the others are the tax-exempt phrase and the trade-markup
// label with an optional trailing code.
var cleanPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`^v?ƏDV[:\s]*\d+[:\s]*`),
	regexp.MustCompile(`^"?ƏDV[:\s]*\d+[:\s]*`),
	regexp.MustCompile(`^ƏDV-dən\s+azad\s+`),
	regexp.MustCompile(`^Ticarət\s+əlavəsi[:\s]*\d*\s*`),
}

var reEdgeQuotes = regexp.MustCompile(`^["']+|["']+$`)

// CleanItemName normalizes a raw item description: junk prefixes go,
// surrounding quotes go, whitespace runs collapse to a single space.
// Cleaning is idempotent. An empty result means the row had no usable name
// and must be rejected by the assembler gate.
func CleanItemName(raw string) string {
	s := raw
	for _, re := range cleanPrefixes {
		s = re.ReplaceAllString(s, "")
	}
	s = reEdgeQuotes.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
