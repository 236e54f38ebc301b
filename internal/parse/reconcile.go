package parse

import "math"

// Thresholds tune the reconciliation heuristics. The defaults were
// calibrated against one scanner/typeface combination, so they are
// configuration, not law.
type Thresholds struct {
	// MagnitudeFloor: a quantity at or above this is assumed to be a
	// three-decimal value whose separator OCR dropped ("1.000" read as
	// "1000") and is divided by 1000.
	MagnitudeFloor float64
	// Tolerance is the absolute slack allowed on quantity*price vs total.
	Tolerance float64
	// MaxQuantityFix caps a quantity derived from total/price; above it the
	// line total is recomputed instead.
	MaxQuantityFix float64
	// SuspectQuantity / SuspectPrice trigger non-blocking flags.
	SuspectQuantity float64
	SuspectPrice    float64
}

// DefaultThresholds returns the tuning observed to work on e-kassa scans.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MagnitudeFloor:  1000,
		Tolerance:       0.01,
		MaxQuantityFix:  100,
		SuspectQuantity: 50,
		SuspectPrice:    500,
	}
}

// Correction rules, recorded on every mutation of the triplet.
const (
	RuleMagnitude       = "magnitude"
	RuleQuantityFromSum = "quantity_from_total"
	RuleTotalFromUnits  = "total_from_product"
)

// Correction is one applied fix: which rule fired, which field changed.
type Correction struct {
	Rule  string
	Field string
	From  float64
	To    float64
}

// Flags raised by the plausibility pass. Observability only; a flagged
// record is still accepted.
const (
	FlagSuspectQuantity = "suspicious_quantity"
	FlagSuspectPrice    = "suspicious_unit_price"
)

// Reconciled is the outcome of reconciling one (quantity, price, total)
// triplet.
type Reconciled struct {
	Quantity    float64
	UnitPrice   float64
	LineTotal   float64
	Corrections []Correction
	Flags       []string
}

// Reconcile resolves OCR-induced corruption in an item triplet. The steps
// run in a fixed order because later fixes depend on earlier ones:
//
//  1. quantity >= MagnitudeFloor: divide by 1000, round to 1 decimal.
//  2. |total - quantity*price| > Tolerance: derive quantity from
//     total/price when the result is a plausible count (totals print
//     larger on receipts and survive OCR better than quantities);
//     otherwise recompute the total from quantity*price.
//  3. flag implausible final values without mutating them.
func (t Thresholds) Reconcile(quantity, unitPrice, lineTotal float64) Reconciled {
	out := Reconciled{Quantity: quantity, UnitPrice: unitPrice, LineTotal: lineTotal}

	if out.Quantity >= t.MagnitudeFloor {
		fixed := round1(out.Quantity / 1000)
		out.Corrections = append(out.Corrections, Correction{
			Rule: RuleMagnitude, Field: "quantity", From: out.Quantity, To: fixed,
		})
		out.Quantity = fixed
	}

	expected := out.Quantity * out.UnitPrice
	if math.Abs(out.LineTotal-expected) > t.Tolerance {
		fixedQty := 0.0
		if out.UnitPrice > 0 {
			fixedQty = round1(out.LineTotal / out.UnitPrice)
		}
		if fixedQty > 0 && fixedQty <= t.MaxQuantityFix {
			out.Corrections = append(out.Corrections, Correction{
				Rule: RuleQuantityFromSum, Field: "quantity", From: out.Quantity, To: fixedQty,
			})
			out.Quantity = fixedQty
		} else {
			fixedTotal := round2(expected)
			out.Corrections = append(out.Corrections, Correction{
				Rule: RuleTotalFromUnits, Field: "line_total", From: out.LineTotal, To: fixedTotal,
			})
			out.LineTotal = fixedTotal
		}
	}

	if out.Quantity > t.SuspectQuantity {
		out.Flags = append(out.Flags, FlagSuspectQuantity)
	}
	if out.UnitPrice > t.SuspectPrice {
		out.Flags = append(out.Flags, FlagSuspectPrice)
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
