package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

func timesheetInfo() map[string]any {
	return map[string]any{
		"invoice_number": "INV-001",
		"supplier": map[string]any{
			"name": "Acme",
		},
		"lines": []any{
			map[string]any{"date": "2024-03-01", "start_time": "09:00", "end_time": "17:00"},
			map[string]any{"date": "2024-03-02", "start_time": "10:00", "end_time": "16:00"},
		},
	}
}

func TestApplyReadback(t *testing.T) {
	info := timesheetInfo()
	path := Path("lines", 1, "start_time")

	updated := Apply(info, path, "11:30")

	line := updated["lines"].([]any)[1].(map[string]any)
	assert.Equal(t, "11:30", line["start_time"])
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	info := timesheetInfo()

	updated := Apply(info, Path("lines", 0, "date"), "2024-04-01")

	original := info["lines"].([]any)[0].(map[string]any)
	assert.Equal(t, "2024-03-01", original["date"])
	assert.NotEqual(t, original["date"], updated["lines"].([]any)[0].(map[string]any)["date"])
}

func TestApplySharesUntouchedSiblings(t *testing.T) {
	info := timesheetInfo()

	updated := Apply(info, Path("lines", 0, "date"), "2024-04-01")

	// The untouched sibling line is the same map, not a copy.
	origLine := info["lines"].([]any)[1].(map[string]any)
	newLine := updated["lines"].([]any)[1].(map[string]any)
	origLine["marker"] = "shared"
	assert.Equal(t, "shared", newLine["marker"])

	// Untouched top-level subtrees are shared too.
	info["supplier"].(map[string]any)["marker"] = "shared"
	assert.Equal(t, "shared", updated["supplier"].(map[string]any)["marker"])
}

func TestApplyCreatesMissingContainers(t *testing.T) {
	info := map[string]any{}

	updated := Apply(info, Path("supplier", "address", "city"), "Berlin")
	city := updated["supplier"].(map[string]any)["address"].(map[string]any)["city"]
	assert.Equal(t, "Berlin", city)

	updated = Apply(info, Path("vatitems", 1, "amount"), 5.0)
	items := updated["vatitems"].([]any)
	require.Len(t, items, 2)
	assert.Nil(t, items[0])
	assert.Equal(t, 5.0, items[1].(map[string]any)["amount"])
}

func TestApplyEmptyPathReplacesRecord(t *testing.T) {
	info := timesheetInfo()
	replacement := map[string]any{"invoice_number": "INV-XXX"}

	updated := Apply(info, nil, replacement)
	assert.Equal(t, "INV-XXX", updated["invoice_number"])

	// A non-object replacement is ignored.
	same := Apply(info, nil, "scalar")
	assert.Equal(t, "INV-001", same["invoice_number"])
}

func TestAddLinePrepends(t *testing.T) {
	info := timesheetInfo()

	updated := AddLine(info, domain.InvoiceType1)

	lines := updated["lines"].([]any)
	require.Len(t, lines, 3)
	first := lines[0].(map[string]any)
	assert.Equal(t, "", first["date"])
	assert.Equal(t, "", first["start_time"])
	assert.Equal(t, false, first["has_customer_signature"])
	assert.Equal(t, "2024-03-01", lines[1].(map[string]any)["date"])
}

func TestAddLineType3IncludesLineItems(t *testing.T) {
	info := map[string]any{"lines": []any{}}

	updated := AddLine(info, domain.InvoiceType3)

	line := updated["lines"].([]any)[0].(map[string]any)
	items, ok := line["lineitems"].([]any)
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestAddLineItemPrepends(t *testing.T) {
	info := map[string]any{
		"lines": []any{
			map[string]any{
				"description": "work",
				"lineitems": []any{
					map[string]any{"title": "existing"},
				},
			},
		},
	}

	updated := AddLineItem(info, 0)

	items := updated["lines"].([]any)[0].(map[string]any)["lineitems"].([]any)
	require.Len(t, items, 2)
	fresh := items[0].(map[string]any)
	assert.Equal(t, 1.0, fresh["quantity"])
	assert.Equal(t, "", fresh["title"])
	assert.Equal(t, "existing", items[1].(map[string]any)["title"])
}

func TestAddLineItemOutOfRangeIsNoOp(t *testing.T) {
	info := map[string]any{"lines": []any{}}
	updated := AddLineItem(info, 0)
	assert.Equal(t, map[string]any{"lines": []any{}}, updated)
}

func TestDeleteLine(t *testing.T) {
	info := timesheetInfo()

	updated := DeleteLine(info, 0)

	lines := updated["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "2024-03-02", lines[0].(map[string]any)["date"])
}

func TestDeleteLineOutOfRangeIsNoOp(t *testing.T) {
	info := timesheetInfo()

	for _, idx := range []int{-1, 2, 100} {
		updated := DeleteLine(info, idx)
		assert.Len(t, updated["lines"].([]any), 2, "index %d", idx)
	}
}

func TestAddThenDeleteLineRoundTrip(t *testing.T) {
	info := timesheetInfo()

	updated := DeleteLine(AddLine(info, domain.InvoiceType1), 0)

	lines := updated["lines"].([]any)
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-03-01", lines[0].(map[string]any)["date"])
	assert.Equal(t, "2024-03-02", lines[1].(map[string]any)["date"])
}

func TestDeleteLineItem(t *testing.T) {
	info := map[string]any{
		"lines": []any{
			map[string]any{
				"lineitems": []any{
					map[string]any{"title": "a"},
					map[string]any{"title": "b"},
				},
			},
		},
	}

	updated := DeleteLineItem(info, 0, 0)
	items := updated["lines"].([]any)[0].(map[string]any)["lineitems"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].(map[string]any)["title"])

	same := DeleteLineItem(info, 0, 5)
	assert.Len(t, same["lines"].([]any)[0].(map[string]any)["lineitems"].([]any), 2)
	same = DeleteLineItem(info, 3, 0)
	assert.Len(t, same["lines"].([]any)[0].(map[string]any)["lineitems"].([]any), 2)
}
