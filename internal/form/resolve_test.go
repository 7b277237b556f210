package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

var testDefines = []domain.FieldSchema{
	{Key: "invoice_number", Label: "Invoice Number", Type: domain.FieldString, Required: true},
	{Key: "total_amount", Label: "Total Amount", DataType: domain.FieldNumber},
	{Key: "issue_date", Label: "Issue Date", Type: domain.FieldDate},
	{Key: "payment_method", Label: "Payment Method", Type: domain.FieldSelect, Options: domain.PaymentMethodOptions},
	{Key: "name", Label: "Name", Type: domain.FieldString},
}

func TestResolveAnnotatesScalars(t *testing.T) {
	annotated := Resolve(testDefines, map[string]any{
		"invoice_number": "INV-001",
		"total_amount":   120.5,
	})

	num, ok := annotated["invoice_number"].(Field)
	require.True(t, ok)
	assert.Equal(t, "INV-001", num.Value)
	assert.Equal(t, "Invoice Number", num.Label)
	assert.Equal(t, domain.FieldString, num.Kind)
	assert.True(t, num.Required)

	amount := annotated["total_amount"].(Field)
	assert.Equal(t, domain.FieldNumber, amount.Kind)
	assert.False(t, amount.Required)
}

func TestResolveRecursesObjectsAndPassesArraysThrough(t *testing.T) {
	annotated := Resolve(testDefines, map[string]any{
		"supplier": map[string]any{"name": "Acme"},
		"lines": []any{
			map[string]any{"date": "2024-03-01"},
		},
	})

	supplier, ok := annotated["supplier"].(Annotated)
	require.True(t, ok)
	name := supplier["name"].(Field)
	assert.Equal(t, "Acme", name.Value)
	assert.Equal(t, "Name", name.Label)

	// Arrays stay raw so the renderer can apply per-type line tables.
	lines, ok := annotated["lines"].([]any)
	require.True(t, ok)
	_, isMap := lines[0].(map[string]any)
	assert.True(t, isMap)
}

func TestResolveSelectCarriesOptions(t *testing.T) {
	annotated := Resolve(testDefines, map[string]any{"payment_method": "Visa"})

	pm := annotated["payment_method"].(Field)
	assert.Equal(t, domain.FieldSelect, pm.Kind)
	assert.Equal(t, domain.PaymentMethodOptions, pm.Options)
}

func TestResolveWithoutDefinesDegradesToPassthrough(t *testing.T) {
	annotated := Resolve(nil, map[string]any{
		"some_text":   "hello",
		"some_number": 4.5,
		"some_flag":   true,
	})

	text := annotated["some_text"].(Field)
	assert.Equal(t, "some_text", text.Label)
	assert.Equal(t, domain.FieldString, text.Kind)
	assert.False(t, text.Required)

	assert.Equal(t, domain.FieldNumber, annotated["some_number"].(Field).Kind)
	assert.Equal(t, domain.FieldBoolean, annotated["some_flag"].(Field).Kind)
}

func TestSchemaKindPrefersDataType(t *testing.T) {
	def := domain.FieldSchema{Type: domain.FieldString, DataType: domain.FieldNumber}
	assert.Equal(t, domain.FieldNumber, def.Kind())

	assert.Equal(t, domain.FieldString, domain.FieldSchema{}.Kind())
}
