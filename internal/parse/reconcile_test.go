package parse

import (
	"math"
	"testing"
)

func TestReconcileConsistentTripletUnchanged(t *testing.T) {
	th := DefaultThresholds()

	cases := []struct {
		name    string
		q, p, s float64
	}{
		{"simple", 2, 0.59, 1.18},
		{"single unit", 1, 2.10, 2.10},
		{"weighed", 0.5, 4.00, 2.00},
		{"within tolerance", 3, 0.33, 0.99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := th.Reconcile(tc.q, tc.p, tc.s)
			if got.Quantity != tc.q || got.UnitPrice != tc.p || got.LineTotal != tc.s {
				t.Fatalf("values changed: got (%v, %v, %v), want (%v, %v, %v)",
					got.Quantity, got.UnitPrice, got.LineTotal, tc.q, tc.p, tc.s)
			}
			if len(got.Corrections) != 0 {
				t.Fatalf("unexpected corrections: %+v", got.Corrections)
			}
		})
	}
}

func TestReconcileMagnitudeThenQuantityFix(t *testing.T) {
	th := DefaultThresholds()

	// "1.000" misread as 1000, and the surviving unit count is actually 2:
	// the magnitude rule fires first, then the quantity gets re-derived from
	// the line total.
	got := th.Reconcile(1000, 0.59, 1.18)

	if got.Quantity != 2.0 || got.UnitPrice != 0.59 || got.LineTotal != 1.18 {
		t.Fatalf("got (%v, %v, %v), want (2, 0.59, 1.18)",
			got.Quantity, got.UnitPrice, got.LineTotal)
	}
	if len(got.Corrections) != 2 {
		t.Fatalf("want 2 corrections, got %d: %+v", len(got.Corrections), got.Corrections)
	}
	if got.Corrections[0].Rule != RuleMagnitude {
		t.Errorf("first correction rule = %s, want %s", got.Corrections[0].Rule, RuleMagnitude)
	}
	if got.Corrections[1].Rule != RuleQuantityFromSum {
		t.Errorf("second correction rule = %s, want %s", got.Corrections[1].Rule, RuleQuantityFromSum)
	}
}

func TestReconcileQuantityPreferredOverTotal(t *testing.T) {
	th := DefaultThresholds()

	// 3 * 0.50 != 2.00 and 2.00/0.50 = 4 is a plausible count, so the
	// quantity moves, not the total.
	got := th.Reconcile(3, 0.50, 2.00)
	if got.Quantity != 4.0 {
		t.Fatalf("quantity = %v, want 4", got.Quantity)
	}
	if got.LineTotal != 2.00 {
		t.Fatalf("line total = %v, want 2.00 untouched", got.LineTotal)
	}
}

func TestReconcileTotalRecomputedWhenQuantityImplausible(t *testing.T) {
	th := DefaultThresholds()

	// 500 units of a 1 AZN item is past MaxQuantityFix, so the total is
	// recomputed from the product instead.
	got := th.Reconcile(2, 1.00, 500.00)
	if got.Quantity != 2 {
		t.Fatalf("quantity = %v, want 2 untouched", got.Quantity)
	}
	if got.LineTotal != 2.00 {
		t.Fatalf("line total = %v, want 2.00", got.LineTotal)
	}
	if len(got.Corrections) != 1 || got.Corrections[0].Rule != RuleTotalFromUnits {
		t.Fatalf("corrections = %+v, want one %s", got.Corrections, RuleTotalFromUnits)
	}
}

func TestReconcileZeroPriceRecomputesTotal(t *testing.T) {
	th := DefaultThresholds()

	got := th.Reconcile(3, 0, 5.00)
	if got.LineTotal != 0 {
		t.Fatalf("line total = %v, want 0", got.LineTotal)
	}
	if len(got.Corrections) != 1 || got.Corrections[0].Rule != RuleTotalFromUnits {
		t.Fatalf("corrections = %+v, want one %s", got.Corrections, RuleTotalFromUnits)
	}
}

func TestReconcileFlagsDoNotMutate(t *testing.T) {
	th := DefaultThresholds()

	got := th.Reconcile(60, 600, 36000)
	if got.Quantity != 60 || got.UnitPrice != 600 || got.LineTotal != 36000 {
		t.Fatalf("flagged values must survive: got (%v, %v, %v)",
			got.Quantity, got.UnitPrice, got.LineTotal)
	}
	want := map[string]bool{FlagSuspectQuantity: false, FlagSuspectPrice: false}
	for _, f := range got.Flags {
		want[f] = true
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("missing flag %s", f)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	th := DefaultThresholds()

	first := th.Reconcile(1000, 0.59, 1.18)
	second := th.Reconcile(first.Quantity, first.UnitPrice, first.LineTotal)
	if len(second.Corrections) != 0 {
		t.Fatalf("second pass corrected again: %+v", second.Corrections)
	}
	if math.Abs(second.Quantity-first.Quantity) > 1e-9 {
		t.Fatalf("quantity drifted: %v -> %v", first.Quantity, second.Quantity)
	}
}
