package record

// Record is one flattened output row: receipt-level fields duplicated
// across every line item from the same document. SourceID is the only
// mandatory field; everything else is optional and nil means the value was
// absent from the source text.
type Record struct {
	SourceID string

	StoreName    *string
	StoreAddress *string
	StoreCode    *string
	TaxpayerName *string
	TaxID        *string

	ReceiptNumber *string
	CashierName   *string
	Date          *string // DD.MM.YYYY, kept as text
	Time          *string // HH:MM:SS, kept as text

	ItemName  *string
	Quantity  *string
	UnitPrice *string
	LineTotal *string

	Subtotal *string
	VAT      *string
	TotalTax *string

	CashlessPayment *string
	CashPayment     *string
	BonusPayment    *string
	AdvancePayment  *string
	CreditPayment   *string

	QueueNumber    *string
	RegisterModel  *string
	RegisterSerial *string
	FiscalID       *string
	FiscalReg      *string

	RefundAmount *string
	RefundDate   *string
	RefundTime   *string

	// Failure carries the extraction-failure marker on fallback rows.
	// It is not part of the output column set; see Row.
	Failure *string
}

// Columns is the fixed output header, in order. Every export (CSV, XLSX)
// must use exactly this set; nothing else survives into output.
func Columns() []string {
	return []string{
		"filename", "store_name", "store_address", "store_code", "taxpayer_name",
		"tax_id", "receipt_number", "cashier_name", "date", "time",
		"item_name", "quantity", "unit_price", "line_total", "subtotal",
		"vat_18_percent", "total_tax", "cashless_payment", "cash_payment", "bonus_payment",
		"advance_payment", "credit_payment", "queue_number", "cash_register_model",
		"cash_register_serial", "fiscal_id", "fiscal_registration", "refund_amount",
		"refund_date", "refund_time",
	}
}

// Row projects the record onto Columns. Absent fields render as empty
// cells. The transient Failure marker is intentionally dropped here.
func (r *Record) Row() []string {
	return []string{
		r.SourceID,
		deref(r.StoreName), deref(r.StoreAddress), deref(r.StoreCode), deref(r.TaxpayerName),
		deref(r.TaxID), deref(r.ReceiptNumber), deref(r.CashierName), deref(r.Date), deref(r.Time),
		deref(r.ItemName), deref(r.Quantity), deref(r.UnitPrice), deref(r.LineTotal), deref(r.Subtotal),
		deref(r.VAT), deref(r.TotalTax), deref(r.CashlessPayment), deref(r.CashPayment), deref(r.BonusPayment),
		deref(r.AdvancePayment), deref(r.CreditPayment), deref(r.QueueNumber), deref(r.RegisterModel),
		deref(r.RegisterSerial), deref(r.FiscalID), deref(r.FiscalReg), deref(r.RefundAmount),
		deref(r.RefundDate), deref(r.RefundTime),
	}
}

// HasItem reports whether the row carries line-item data (false for the
// fallback row emitted when item extraction failed).
func (r *Record) HasItem() bool {
	return r.ItemName != nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr returns a pointer to s; the empty string maps to nil so the three
// source representations of "no value" collapse into one.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
