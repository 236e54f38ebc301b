package llm

import "strings"

// BuildSystemPrompt describes the extraction task and the correction rules
// the model should apply. The parser still re-applies every rule locally;
// the prompt only raises the odds of getting usable output back.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a specialist in Azerbaijani fiscal receipt processing and OCR error correction.",
		"Extract ALL items from the receipt OCR text; receipts typically carry 2-15 items.",
		"The items section starts after the header 'Məhsulun adı Say Qiymət Cəmi' and ends at the 'Cəmi' subtotal line.",
		"Fix OCR decimal errors in quantities: 1000 means 1.0, 2000 means 2.0.",
		"Ensure quantity × unit_price = line_total; prefer trusting line_total when they disagree.",
		"Clean item names: remove ƏDV codes, quotes, and prefixes like '*ƏDV', 'ƏDV:', 'vƏDV'.",
		"Repeat receipt-level fields (store, date, payments) unchanged on every item.",
		"Return ONLY a valid JSON array with one object per item, no commentary.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt frames one document for the model. Field names mirror the
// output schema so the response maps straight onto records.
func BuildUserPrompt(sourceID, ocrText string) string {
	var b strings.Builder
	b.WriteString("Extract all items from this Azerbaijani receipt. Return a JSON array where each object has these fields:\n\n")
	b.WriteString(`{"filename": "` + sourceID + `", "store_name": "", "store_address": "", "store_code": "", "taxpayer_name": "", "tax_id": "", "receipt_number": "", "cashier_name": "", "date": "DD.MM.YYYY", "time": "HH:MM:SS", "item_name": "", "quantity": "", "unit_price": "", "line_total": "", "subtotal": "", "vat_18_percent": "", "total_tax": "", "cashless_payment": "", "cash_payment": "", "bonus_payment": "", "advance_payment": "", "credit_payment": "", "queue_number": "", "cash_register_model": "", "cash_register_serial": "", "fiscal_id": "", "fiscal_registration": "", "refund_amount": "", "refund_date": "", "refund_time": ""}`)
	b.WriteString("\n\nRECEIPT: ")
	b.WriteString(sourceID)
	b.WriteString("\n\nOCR TEXT:\n")
	b.WriteString(ocrText)
	b.WriteString("\n\nReturn ONLY the JSON array.")
	return b.String()
}
