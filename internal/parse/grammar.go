package parse

import "regexp"

// Canonical field names. These double as output column names, so they must
// stay in sync with record.Columns.
const (
	FieldStoreName      = "store_name"
	FieldStoreAddress   = "store_address"
	FieldStoreCode      = "store_code"
	FieldTaxpayerName   = "taxpayer_name"
	FieldTaxID          = "tax_id"
	FieldReceiptNumber  = "receipt_number"
	FieldCashierName    = "cashier_name"
	FieldDate           = "date"
	FieldTime           = "time"
	FieldSubtotal       = "subtotal"
	FieldVAT            = "vat_18_percent"
	FieldTotalTax       = "total_tax"
	FieldCashless       = "cashless_payment"
	FieldCash           = "cash_payment"
	FieldBonus          = "bonus_payment"
	FieldAdvance        = "advance_payment"
	FieldCredit         = "credit_payment"
	FieldQueueNumber    = "queue_number"
	FieldRegisterModel  = "cash_register_model"
	FieldRegisterSerial = "cash_register_serial"
	FieldFiscalID       = "fiscal_id"
	FieldFiscalReg      = "fiscal_registration"
	FieldRefundAmount   = "refund_amount"
	FieldRefundDate     = "refund_date"
	FieldRefundTime     = "refund_time"
)

// PostProc tags the field-specific post-processing a rule's captures get.
// The extractor interprets the tag; rules stay purely declarative.
type PostProc int

const (
	// PostTrim keeps the first capture, trimmed.
	PostTrim PostProc = iota
	// PostCollapse strips quotes and collapses whitespace runs. Used for
	// multi-line names that OCR breaks across physical lines.
	PostCollapse
	// PostSplitDateTime writes capture 1 into the rule's field and capture 2
	// into its Companion field.
	PostSplitDateTime
	// PostNameGuard trims and then rejects values that look like a date.
	// The source text runs the cashier label and the date label together
	// often enough that a plain capture swallows the date.
	PostNameGuard
)

// FieldRule locates one receipt-level field in raw OCR text.
type FieldRule struct {
	Field     string
	Pattern   *regexp.Regexp
	Post      PostProc
	Companion string // second target field for PostSplitDateTime
}

// Receipt labels below are Azerbaijani; alternate spellings cover the usual
// OCR misreads of diacritics (ö, ə, ı).
var fieldRules = []FieldRule{
	// Store name is taken from the taxpayer line; the dedicated store-name
	// line is the least reliable part of these receipts.
	{Field: FieldStoreName, Post: PostCollapse,
		Pattern: regexp.MustCompile(`(?s)Vergi\s*ödəyicisinin\s*adı[:\s]*(.*?)(?:\n.*?)?(?:\nVÖEN|\nMƏHDUD|\nCƏMİYYƏTİ|\n|$)`)},
	{Field: FieldStoreAddress, Post: PostTrim,
		Pattern: regexp.MustCompile(`(?:Obyektin\s*ünvanı|fani)[:\s]*(.*?)(?:\n|$)`)},
	{Field: FieldStoreCode, Post: PostTrim,
		Pattern: regexp.MustCompile(`(?s)(?:Obyektin\s*kodu|ÖV.*?obyektin\s*kodu)[:\s]*([\d\-]+)`)},
	{Field: FieldTaxpayerName, Post: PostCollapse,
		Pattern: regexp.MustCompile(`(?s)Vergi\s*ödəyicisinin\s*adı[:\s]*(.*?)(?:\n.*?)?(?:\nVÖEN|\nMƏHDUD|\nCƏMİYYƏTİ|\n|$)`)},
	{Field: FieldTaxID, Post: PostTrim,
		Pattern: regexp.MustCompile(`VÖEN[:\s]*(\d+)`)},
	{Field: FieldReceiptNumber, Post: PostTrim,
		Pattern: regexp.MustCompile(`Satış\s*çeki\s*[№#NоМә]*\s*(\d+)`)},
	{Field: FieldCashierName, Post: PostNameGuard,
		Pattern: regexp.MustCompile(`Kassir[:\s]*([^\n\d]*?)(?:\s+Tarix|\n|$)`)},
	{Field: FieldDate, Post: PostSplitDateTime, Companion: FieldTime,
		Pattern: regexp.MustCompile(`Tarix[:\s]*(\d{2}\.\d{2}\.\d{4})\s*Vaxt[:\s]*(\d{2}:\d{2}:\d{2})`)},
	{Field: FieldSubtotal, Post: PostTrim,
		Pattern: regexp.MustCompile(`Cəmi\s+(\d+\.\d{2})`)},
	{Field: FieldVAT, Post: PostTrim,
		Pattern: regexp.MustCompile(`ƏDV\s*18%?\s*=\s*(\d+\.\d{2})`)},
	{Field: FieldTotalTax, Post: PostTrim,
		Pattern: regexp.MustCompile(`Toplam\s*vergi\s*=\s*(\d+\.\d{2})`)},
	{Field: FieldCashless, Post: PostTrim,
		Pattern: regexp.MustCompile(`Nağdsız[:\s]*(\d+\.\d{2})`)},
	{Field: FieldCash, Post: PostTrim,
		Pattern: regexp.MustCompile(`Nağd[:\s]*(\d+\.\d{2})`)},
	{Field: FieldBonus, Post: PostTrim,
		Pattern: regexp.MustCompile(`Bonus[:\s]*(\d+\.\d{2})`)},
	{Field: FieldAdvance, Post: PostTrim,
		Pattern: regexp.MustCompile(`Avans\s*\([^)]*\)[:\s]*(\d+\.\d{2})`)},
	{Field: FieldCredit, Post: PostTrim,
		Pattern: regexp.MustCompile(`Nisyə[:\s]*(\d+\.\d{2})`)},
	{Field: FieldQueueNumber, Post: PostTrim,
		Pattern: regexp.MustCompile(`Növbə\s*ərzində\s*vurulmuş\s*çek\s*sayı[:\s]*(\d+)`)},
	{Field: FieldRegisterModel, Post: PostTrim,
		Pattern: regexp.MustCompile(`NKA-nın\s*modeli[:\s]*(.*?)(?:\n|$)`)},
	{Field: FieldRegisterSerial, Post: PostTrim,
		Pattern: regexp.MustCompile(`NKA-nın\s*zavod\s*nömrəsi[:\s]*(.*?)(?:\n|$)`)},
	{Field: FieldFiscalID, Post: PostTrim,
		Pattern: regexp.MustCompile(`Fiskal\s*[İI]D[:\s]*(\S+)`)},
	// Fallback for fiscal IDs that lost punctuation to OCR.
	{Field: FieldFiscalID, Post: PostTrim,
		Pattern: regexp.MustCompile(`(?i)Fiskal\s*[İI]D[:\s]*(\w+)`)},
	{Field: FieldFiscalReg, Post: PostTrim,
		Pattern: regexp.MustCompile(`NMQ-nin\s*qeydiyyat\s*nömrəsi[:\s]*(.*?)(?:\n|$)`)},
	{Field: FieldRefundAmount, Post: PostTrim,
		Pattern: regexp.MustCompile(`Geri\s*qaytarılan\s*məbləğ[:\s]*(\d+\.\d{2})`)},
	{Field: FieldRefundDate, Post: PostSplitDateTime, Companion: FieldRefundTime,
		Pattern: regexp.MustCompile(`Geri\s*qaytarılma\s*tarixi[:\s]*(\d{2}\.\d{2}\.\d{4})\s+(\d{2}:\d{2})`)},
}

// Rules returns the field grammar in evaluation order. For a field with
// several rules the first match wins.
func Rules() []FieldRule {
	return fieldRules
}

// Item-block anchors. The span between the header and the subtotal trailer
// is treated as an ordered sequence of item-row candidates.
var (
	reItemsHeader = regexp.MustCompile(`Məhsulun adı\s+Say\s+Qiymət\s+Cəmi\s*\n`)
	reItemsEnd    = regexp.MustCompile(`\n-+[ \t]*\nCəmi|\nCəmi\s+\d+\.\d{2}`)

	// Row with an explicit unit marker in parentheses, e.g. "(ədəd)".
	reItemWithUnit = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s+([\d.]+)\s+([\d.]+)\s+([\d.]+)$`)
	// Bare numeric triplet at end of line.
	reItemBare = regexp.MustCompile(`^(.+?)\s+([\d.]+)\s+([\d.]+)\s+([\d.]+)$`)
)
