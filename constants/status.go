package constants

// DocStatus is the canonical outcome for one processed document.
type DocStatus string

// Stable values (these exact strings land in logs and the run summary).
const (
	DocStatusOK       DocStatus = "OK"        // at least one item row extracted
	DocStatusFallback DocStatus = "FALLBACK"  // no valid items; fallback row emitted
	DocStatusFailed   DocStatus = "FAILED"    // external stage failed after retries
)

// Failure markers written into the fallback record. The exact strings are
// part of the output contract for downstream quality analysis.
const (
	FailureItemParse = "Item parsing failed"
	FailureLLM       = "AI extraction failed"
)
