package form

import (
	"fmt"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// ValidationErrorMap maps dotted key paths to human-readable messages. An
// empty map means the record may be submitted; callers must not save while
// the map is non-empty.
type ValidationErrorMap map[string]string

// Validate checks every schema-required field (recursively) for a non-null,
// non-empty value. For invoice type 1 it additionally validates the required
// sub-fields of each line individually, keyed as lines[i].field; line and
// line-item contents of types 2 and 3 are not checked beyond the top-level
// schema, matching upstream behavior.
func Validate(info map[string]any, t domain.InvoiceType, defines []domain.FieldSchema) ValidationErrorMap {
	errs := make(ValidationErrorMap)
	idx := domain.SchemaIndex(defines)
	checkRequired(idx, info, nil, errs)

	if t == domain.InvoiceType1 {
		lines, _ := info[domain.KeyLines].([]any)
		for i, item := range lines {
			line, _ := item.(map[string]any)
			for _, f := range timesheetLineFields {
				if !f.Required {
					continue
				}
				if isEmptyScalar(line[f.Key]) {
					key := Path(domain.KeyLines, i, f.Key).String()
					errs[key] = fmt.Sprintf("%s is required", f.Label)
				}
			}
		}
	}
	return errs
}

func checkRequired(idx map[string]domain.FieldSchema, obj map[string]any, path KeyPath, errs ValidationErrorMap) {
	for key, value := range obj {
		child := path.Append(Key(key))
		switch v := value.(type) {
		case map[string]any:
			checkRequired(idx, v, child, errs)
		case Annotated:
			checkRequired(idx, map[string]any(v), child, errs)
		case []any:
			// Array contents are covered by the per-type line rules only.
		default:
			def, ok := idx[key]
			if !ok || !def.Required {
				continue
			}
			leaf := value
			if f, isField := value.(Field); isField {
				leaf = f.Value
			}
			if isEmptyScalar(leaf) {
				label := def.Label
				if label == "" {
					label = key
				}
				errs[child.String()] = fmt.Sprintf("%s is required", label)
			}
		}
	}
}
