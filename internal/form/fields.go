package form

import "github.com/invoicedesk/invoicedesk/internal/domain"

// LineField describes one column of a per-invoice-type line table. Line
// elements are heterogeneous and carry semantics (payment_method is a
// constrained select, not free text), so these tables are fixed rather than
// derived from the data.
type LineField struct {
	Key      string
	Label    string
	Kind     domain.FieldType
	Required bool
	Options  []string
	Disabled bool
	Zero     any
}

// timesheetLineFields is the line table for invoice type 1.
var timesheetLineFields = []LineField{
	{Key: "date", Label: "Date", Kind: domain.FieldDate, Required: true, Zero: ""},
	{Key: "start_time", Label: "Start Time", Kind: domain.FieldTime, Required: true, Zero: ""},
	{Key: "end_time", Label: "End Time", Kind: domain.FieldTime, Required: true, Zero: ""},
	{Key: "break_time", Label: "Break Time", Kind: domain.FieldNumber, Required: true, Zero: ""},
	{Key: "description", Label: "Description", Kind: domain.FieldString, Zero: ""},
	{Key: "has_customer_signature", Label: "Has Customer Signature?", Kind: domain.FieldBoolean, Zero: false},
}

// expenseLineFields is the line table for invoice type 2 lines.
var expenseLineFields = []LineField{
	{Key: "title", Label: "Title", Kind: domain.FieldString, Zero: ""},
	{Key: "amount", Label: "Amount", Kind: domain.FieldNumber, Zero: 0.0},
	{Key: "payment_method", Label: "Payment Method", Kind: domain.FieldSelect, Options: domain.PaymentMethodOptions, Zero: ""},
}

// fixedLineFields mirrors expenseLineFields except that the title of a fixed
// line is structurally present and never editable.
var fixedLineFields = []LineField{
	{Key: "title", Label: "Title", Kind: domain.FieldString, Disabled: true, Zero: ""},
	{Key: "amount", Label: "Amount", Kind: domain.FieldNumber, Zero: 0.0},
	{Key: "payment_method", Label: "Payment Method", Kind: domain.FieldSelect, Options: domain.PaymentMethodOptions, Zero: ""},
}

// itemizedLineFields is the line table for invoice type 3 lines; the nested
// lineitems array uses lineItemFields.
var itemizedLineFields = []LineField{
	{Key: "description", Label: "Description", Kind: domain.FieldString, Zero: ""},
}

var lineItemFields = []LineField{
	{Key: "title", Label: "Title", Kind: domain.FieldString, Zero: ""},
	{Key: "description", Label: "Description", Kind: domain.FieldString, Zero: ""},
	{Key: "amount", Label: "Amount", Kind: domain.FieldNumber, Zero: 0.0},
	{Key: "amount_each", Label: "Amount Each", Kind: domain.FieldNumber, Zero: 0.0},
	{Key: "amount_ex_vat", Label: "Amount Ex. VAT", Kind: domain.FieldNumber, Zero: 0.0},
	{Key: "vat_amount", Label: "VAT Amount", Kind: domain.FieldNumber, Zero: 0.0},
	{Key: "vat_percentage", Label: "VAT Percentage", Kind: domain.FieldPercentage, Zero: 0.0},
	{Key: "quantity", Label: "Quantity", Kind: domain.FieldNumber, Zero: 1.0},
	{Key: "unit_of_measurement", Label: "Unit of Measurement", Kind: domain.FieldString, Zero: ""},
	{Key: "sku", Label: "SKU", Kind: domain.FieldString, Zero: ""},
	{Key: "vat_code", Label: "VAT Code", Kind: domain.FieldString, Zero: ""},
}

// lineFieldsFor returns the table for elements of the named array under the
// given invoice type, or nil when the array has no fixed table (vatitems and
// unknown arrays fall back to generic enumeration).
func lineFieldsFor(t domain.InvoiceType, arrayKey string) []LineField {
	switch arrayKey {
	case domain.KeyLines:
		switch t {
		case domain.InvoiceType1:
			return timesheetLineFields
		case domain.InvoiceType2:
			return expenseLineFields
		case domain.InvoiceType3:
			return itemizedLineFields
		}
	case domain.KeyFixedLines:
		if t == domain.InvoiceType2 {
			return fixedLineFields
		}
	case domain.KeyLineItems:
		if t == domain.InvoiceType3 {
			return lineItemFields
		}
	}
	return nil
}

func zeroRecord(fields []LineField) map[string]any {
	rec := make(map[string]any, len(fields))
	for _, f := range fields {
		rec[f.Key] = f.Zero
	}
	return rec
}

// NewLine returns a zero-valued line for the given invoice type. Type 3
// lines start with an empty lineitems array.
func NewLine(t domain.InvoiceType) map[string]any {
	rec := zeroRecord(lineFieldsFor(t, domain.KeyLines))
	if t == domain.InvoiceType3 {
		rec[domain.KeyLineItems] = []any{}
	}
	return rec
}

// NewLineItem returns a zero-valued type 3 line item (quantity starts at 1).
func NewLineItem() map[string]any {
	return zeroRecord(lineItemFields)
}
