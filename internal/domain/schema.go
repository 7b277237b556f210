package domain

// FieldType enumerates the data types a frontend define can assign to a field.
type FieldType string

const (
	FieldString     FieldType = "string"
	FieldNumber     FieldType = "number"
	FieldBoolean    FieldType = "boolean"
	FieldDate       FieldType = "date"
	FieldTime       FieldType = "time"
	FieldSelect     FieldType = "select"
	FieldPercentage FieldType = "percentage"
)

// FieldSchema is one entry of the server-supplied frontend defines table.
// The upstream API carries both a widget type ("type") and a value type
// ("data_type"); DataType wins when both are present.
type FieldSchema struct {
	Key      string    `json:"key"`
	Label    string    `json:"key_name_user"`
	Type     FieldType `json:"type,omitempty"`
	DataType FieldType `json:"data_type,omitempty"`
	Required bool      `json:"required"`
	Options  []string  `json:"data,omitempty"`
}

// Kind resolves the effective field type, preferring data_type over type.
func (f FieldSchema) Kind() FieldType {
	if f.DataType != "" {
		return f.DataType
	}
	if f.Type != "" {
		return f.Type
	}
	return FieldString
}

// FrontendDefines is the response envelope of GET /api/v1/frontend_defines.
type FrontendDefines struct {
	Defines []FieldSchema `json:"frontend_defines"`
}

// SchemaIndex builds a key lookup over a defines table.
func SchemaIndex(defines []FieldSchema) map[string]FieldSchema {
	idx := make(map[string]FieldSchema, len(defines))
	for _, d := range defines {
		idx[d.Key] = d
	}
	return idx
}
