package parse

import "testing"

const sampleReceipt = `Vergi ödəyicisinin adı: "ARAZ MARKET" MMC
VÖEN: 1234567890
Obyektin ünvanı: Bakı şəh., Nizami küç. 5
Obyektin kodu: 12-345
Satış çeki № 4521
Kassir: Aysel
Tarix: 15.08.2025 Vaxt: 14:32:05
Məhsulun adı Say Qiymət Cəmi
SIRAB QAZSIZ SU PET 2.000 0.59 1.18
BIQ BON QOVYAD QRİL 1.000 2.10 2.10
Cəmi 3.28
Nağdsız: 3.28
ƏDV 18% = 0.50
Fiskal ID: AB12CD34EF
`

func TestExtractReceiptFields(t *testing.T) {
	fields, _ := Extract(sampleReceipt, "sample.jpeg", nil)

	want := map[string]string{
		FieldTaxpayerName:  "ARAZ MARKET MMC",
		FieldStoreName:     "ARAZ MARKET MMC",
		FieldTaxID:         "1234567890",
		FieldStoreAddress:  "Bakı şəh., Nizami küç. 5",
		FieldStoreCode:     "12-345",
		FieldReceiptNumber: "4521",
		FieldCashierName:   "Aysel",
		FieldDate:          "15.08.2025",
		FieldTime:          "14:32:05",
		FieldSubtotal:      "3.28",
		FieldCashless:      "3.28",
		FieldVAT:           "0.50",
		FieldFiscalID:      "AB12CD34EF",
	}
	for name, wantValue := range want {
		got, ok := fields.Get(name)
		if !ok {
			t.Errorf("field %s missing", name)
			continue
		}
		if got != wantValue {
			t.Errorf("field %s = %q, want %q", name, got, wantValue)
		}
	}
	if v, ok := fields.Get(FieldCash); ok {
		t.Errorf("cash_payment should be absent, got %q", v)
	}
}

func TestExtractItemRows(t *testing.T) {
	_, items := Extract(sampleReceipt, "sample.jpeg", nil)

	want := []RawItem{
		{Name: "SIRAB QAZSIZ SU PET", Quantity: "2.000", UnitPrice: "0.59", LineTotal: "1.18"},
		{Name: "BIQ BON QOVYAD QRİL", Quantity: "1.000", UnitPrice: "2.10", LineTotal: "2.10"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(want), items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestExtractItemsWithUnitMarker(t *testing.T) {
	text := "Məhsulun adı Say Qiymət Cəmi\nALMA (kq) 0.500 2.00 1.00\nCəmi 1.00\n"
	_, items := Extract(text, "weighed.jpeg", nil)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	want := RawItem{Name: "ALMA", Quantity: "0.500", UnitPrice: "2.00", LineTotal: "1.00"}
	if items[0] != want {
		t.Fatalf("item = %+v, want %+v", items[0], want)
	}
}

func TestExtractItemsWrappedName(t *testing.T) {
	text := "Məhsulun adı Say Qiymət Cəmi\n" +
		"ƏDV: 189: Paket Araz\n" +
		"1.000 0.05 0.05\n" +
		"Cəmi 0.05\n"
	_, items := Extract(text, "wrapped.jpeg", nil)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}
	if items[0].Name != "ƏDV: 189: Paket Araz" {
		t.Errorf("name = %q, raw extraction must not clean", items[0].Name)
	}
	if items[0].Quantity != "1.000" || items[0].LineTotal != "0.05" {
		t.Errorf("numbers = %+v", items[0])
	}
}

func TestExtractItemsSkipsTaxNoiseLines(t *testing.T) {
	text := "Məhsulun adı Say Qiymət Cəmi\n" +
		"*ƏDV 18%\n" +
		"SU QAZSIZ 1.000 0.59 0.59\n" +
		"Cəmi 0.59\n"
	_, items := Extract(text, "noise.jpeg", nil)
	if len(items) != 1 || items[0].Name != "SU QAZSIZ" {
		t.Fatalf("items = %+v, want the single real row", items)
	}
}

func TestExtractMissingAnchors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"no header", "VÖEN: 555\nSU 1.000 0.59 0.59\nCəmi 0.59\n"},
		{"no trailer", "VÖEN: 555\nMəhsulun adı Say Qiymət Cəmi\nSU 1.000 0.59 0.59\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, items := Extract(tc.text, "broken.jpeg", nil)
			if len(items) != 0 {
				t.Errorf("items = %+v, want none", items)
			}
			if v, _ := fields.Get(FieldTaxID); v != "555" {
				t.Errorf("receipt-level fields must survive, tax_id = %q", v)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in        string
		wantValue float64
		wantValid bool
	}{
		{"1.18", 1.18, true},
		{" 2.000 ", 2.0, true},
		{"0", 0, true},
		{"", 0, false},
		{"null", 0, false},
		{"NULL", 0, false},
		{"N/A", 0, false},
		{"abc", 0, false},
		{"1,18", 0, false},
	}
	for _, tc := range cases {
		got := ParseAmount(tc.in)
		if got.Valid != tc.wantValid || (got.Valid && got.Value != tc.wantValue) {
			t.Errorf("ParseAmount(%q) = %+v, want value %v valid %v",
				tc.in, got, tc.wantValue, tc.wantValid)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2, "2.0"},
		{0.5, "0.5"},
		{1.0, "1.0"},
		{0.255, "0.255"},
	}
	for _, tc := range cases {
		if got := FormatQuantity(tc.in); got != tc.want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
