package form

import "github.com/invoicedesk/invoicedesk/internal/domain"

// Field is an annotated scalar leaf: the raw value plus the display metadata
// resolved from the frontend defines (or inferred when no define exists).
type Field struct {
	Value    any              `json:"value"`
	Label    string           `json:"label"`
	Kind     domain.FieldType `json:"kind"`
	Required bool             `json:"required"`
	Options  []string         `json:"options,omitempty"`
}

// Annotated mirrors an invoice_info tree with every scalar leaf wrapped as a
// Field. Arrays are passed through unwrapped so the renderer can apply the
// invoice-type-specific line handling, and nested objects are annotated
// recursively.
type Annotated map[string]any

// Resolve merges the frontend defines with a raw invoice_info record. A nil
// or empty defines table degrades to whole-record passthrough with labels
// equal to keys and types inferred from each leaf's run-time type.
func Resolve(defines []domain.FieldSchema, info map[string]any) Annotated {
	return annotate(domain.SchemaIndex(defines), info)
}

func annotate(idx map[string]domain.FieldSchema, info map[string]any) Annotated {
	out := make(Annotated, len(info))
	for key, value := range info {
		switch v := value.(type) {
		case []any:
			out[key] = v
		case map[string]any:
			out[key] = annotate(idx, v)
		default:
			out[key] = resolveLeaf(idx, key, v)
		}
	}
	return out
}

func resolveLeaf(idx map[string]domain.FieldSchema, key string, value any) Field {
	if def, ok := idx[key]; ok {
		f := Field{
			Value:    value,
			Label:    def.Label,
			Kind:     def.Kind(),
			Required: def.Required,
		}
		if f.Label == "" {
			f.Label = key
		}
		if f.Kind == domain.FieldSelect {
			f.Options = def.Options
		}
		return f
	}
	return Field{Value: value, Label: key, Kind: inferKind(value)}
}

// inferKind maps a run-time value type to a field type. Date/time display
// heuristics for untyped strings belong to the renderer, not here.
func inferKind(value any) domain.FieldType {
	switch value.(type) {
	case bool:
		return domain.FieldBoolean
	case float64, int, int64:
		return domain.FieldNumber
	default:
		return domain.FieldString
	}
}
