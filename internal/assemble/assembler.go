package assemble

import (
	"log/slog"

	"github.com/scraper-bots/receipt-data/constants"
	"github.com/scraper-bots/receipt-data/internal/parse"
	"github.com/scraper-bots/receipt-data/internal/record"
)

// ItemInput is one item-row candidate together with the receipt-level
// fields it belongs to. The regex path shares one field map across all
// rows of a document; the model path carries fields per item.
type ItemInput struct {
	Fields parse.Fields
	Row    parse.RawItem
}

// Assembler owns record construction: the per-item gate, name cleaning,
// numeric reconciliation, and projection onto the output schema.
type Assembler struct {
	thresholds parse.Thresholds
	log        *slog.Logger
}

func New(t parse.Thresholds, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{thresholds: t, log: logger}
}

// Assemble flattens a document's field map and item rows into one record
// per surviving item. Items failing the gate are dropped silently. When
// nothing survives, exactly one fallback record is emitted so every input
// document yields at least one output row.
func (a *Assembler) Assemble(sourceID string, fields parse.Fields, rows []parse.RawItem) []record.Record {
	inputs := make([]ItemInput, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, ItemInput{Fields: fields, Row: row})
	}
	return a.assemble(sourceID, fields, inputs, constants.FailureItemParse)
}

// AssembleItems is the model-path entry point: each item carries its own
// copy of the receipt-level fields. Validation is identical to Assemble.
func (a *Assembler) AssembleItems(sourceID string, items []ItemInput, marker string) []record.Record {
	return a.assemble(sourceID, parse.Fields{}, items, marker)
}

// Fallback builds the guaranteed single row for a document whose item
// extraction failed entirely.
func (a *Assembler) Fallback(sourceID string, fields parse.Fields, marker string) record.Record {
	rec := a.base(sourceID, fields)
	rec.Failure = record.Ptr(marker)
	return rec
}

func (a *Assembler) assemble(sourceID string, fallbackFields parse.Fields, items []ItemInput, marker string) []record.Record {
	var out []record.Record
	for _, it := range items {
		if rec, ok := a.buildItem(sourceID, it); ok {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		a.log.Warn("assemble.no_items", "source_id", sourceID, "marker", marker)
		return []record.Record{a.Fallback(sourceID, fallbackFields, marker)}
	}
	return out
}

// buildItem runs the required-field gate, cleans the name, reconciles the
// numeric triplet, and merges everything into one flattened record.
func (a *Assembler) buildItem(sourceID string, it ItemInput) (record.Record, bool) {
	name := parse.CleanItemName(it.Row.Name)
	if name == "" {
		return record.Record{}, false
	}

	qty := parse.ParseAmount(it.Row.Quantity)
	price := parse.ParseAmount(it.Row.UnitPrice)
	total := parse.ParseAmount(it.Row.LineTotal)
	if !qty.Valid || !price.Valid || !total.Valid {
		a.log.Debug("assemble.item_dropped",
			"source_id", sourceID, "item", name,
			"quantity", it.Row.Quantity, "unit_price", it.Row.UnitPrice, "line_total", it.Row.LineTotal,
		)
		return record.Record{}, false
	}

	res := a.thresholds.Reconcile(qty.Value, price.Value, total.Value)
	for _, c := range res.Corrections {
		a.log.Info("assemble.corrected",
			"source_id", sourceID, "item", name,
			"rule", c.Rule, "field", c.Field, "from", c.From, "to", c.To,
		)
	}
	for _, f := range res.Flags {
		a.log.Warn("assemble.suspicious", "source_id", sourceID, "item", name, "flag", f)
	}

	rec := a.base(sourceID, it.Fields)
	rec.ItemName = record.Ptr(name)
	rec.Quantity = record.Ptr(parse.FormatQuantity(res.Quantity))
	rec.UnitPrice = record.Ptr(parse.FormatMoney(res.UnitPrice))
	rec.LineTotal = record.Ptr(parse.FormatMoney(res.LineTotal))
	return rec, true
}

// Receipt-level fields that must render as 2-decimal money. A present but
// non-numeric value is coerced to a zero amount rather than propagated.
var moneyFields = map[string]struct{}{
	parse.FieldSubtotal:     {},
	parse.FieldVAT:          {},
	parse.FieldTotalTax:     {},
	parse.FieldCashless:     {},
	parse.FieldCash:         {},
	parse.FieldBonus:        {},
	parse.FieldAdvance:      {},
	parse.FieldCredit:       {},
	parse.FieldRefundAmount: {},
}

func (a *Assembler) base(sourceID string, fields parse.Fields) record.Record {
	get := func(name string) *string {
		v, ok := fields.Get(name)
		if !ok {
			return nil
		}
		if _, money := moneyFields[name]; money {
			amt := parse.ParseAmount(v)
			if !amt.Valid {
				return record.Ptr("0.00")
			}
			return record.Ptr(parse.FormatMoney(amt.Value))
		}
		return record.Ptr(v)
	}

	return record.Record{
		SourceID:        sourceID,
		StoreName:       get(parse.FieldStoreName),
		StoreAddress:    get(parse.FieldStoreAddress),
		StoreCode:       get(parse.FieldStoreCode),
		TaxpayerName:    get(parse.FieldTaxpayerName),
		TaxID:           get(parse.FieldTaxID),
		ReceiptNumber:   get(parse.FieldReceiptNumber),
		CashierName:     get(parse.FieldCashierName),
		Date:            get(parse.FieldDate),
		Time:            get(parse.FieldTime),
		Subtotal:        get(parse.FieldSubtotal),
		VAT:             get(parse.FieldVAT),
		TotalTax:        get(parse.FieldTotalTax),
		CashlessPayment: get(parse.FieldCashless),
		CashPayment:     get(parse.FieldCash),
		BonusPayment:    get(parse.FieldBonus),
		AdvancePayment:  get(parse.FieldAdvance),
		CreditPayment:   get(parse.FieldCredit),
		QueueNumber:     get(parse.FieldQueueNumber),
		RegisterModel:   get(parse.FieldRegisterModel),
		RegisterSerial:  get(parse.FieldRegisterSerial),
		FiscalID:        get(parse.FieldFiscalID),
		FiscalReg:       get(parse.FieldFiscalReg),
		RefundAmount:    get(parse.FieldRefundAmount),
		RefundDate:      get(parse.FieldRefundDate),
		RefundTime:      get(parse.FieldRefundTime),
	}
}
