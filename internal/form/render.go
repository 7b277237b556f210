package form

import (
	"regexp"
	"slices"
	"sort"
	"time"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// Mode selects between the static detail view and the live edit form.
type Mode int

const (
	ModeReadOnly Mode = iota
	ModeEdit
)

// ControlType is the widget a leaf renders as.
type ControlType string

const (
	ControlText     ControlType = "text"
	ControlNumber   ControlType = "number"
	ControlCheckbox ControlType = "checkbox"
	ControlDate     ControlType = "date"
	ControlTime     ControlType = "time"
	ControlSelect   ControlType = "select"
	ControlPercent  ControlType = "percentage"
)

// Node is one element of the rendered form tree. Groups carry children;
// controls carry a value bound to a key path. The tree is a pure projection
// of the working copy plus the supplied error map: it holds no state of its
// own, and edits flow back as (path, value) patches against Path.
type Node struct {
	Group    bool        `json:"group,omitempty"`
	Label    string      `json:"label,omitempty"`
	Path     string      `json:"path,omitempty"`
	Control  ControlType `json:"control,omitempty"`
	Value    any         `json:"value,omitempty"`
	Options  []string    `json:"options,omitempty"`
	Pattern  string      `json:"pattern,omitempty"`
	Required bool        `json:"required,omitempty"`
	Missing  bool        `json:"missing,omitempty"`
	Disabled bool        `json:"disabled,omitempty"`
	Error    string      `json:"error,omitempty"`
	Children []Node      `json:"children,omitempty"`
}

// numberPattern restricts numeric input to digits and at most one decimal
// point; no sign or exponent characters.
const numberPattern = `^\d*\.?\d*$`

// groupLabels titles the reserved array groups.
var groupLabels = map[string]string{
	domain.KeyLines:      "Line Items",
	domain.KeyFixedLines: "Fixed Line Items",
	domain.KeyVatItems:   "VAT Items",
	domain.KeyLineItems:  "Line Items",
}

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe   = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

// Render projects an annotated invoice into a form tree. In read-only mode
// empty subtrees are suppressed and every control is disabled; in edit mode
// all leaves render so required fields can be filled in. errs supplies
// inline messages keyed by dotted key path and may be nil.
func Render(t domain.InvoiceType, rec Annotated, mode Mode, errs ValidationErrorMap) []Node {
	r := renderer{invoiceType: t, mode: mode, errs: errs}
	return r.object(map[string]any(rec), nil)
}

type renderer struct {
	invoiceType domain.InvoiceType
	mode        Mode
	errs        ValidationErrorMap
}

func (r *renderer) object(obj map[string]any, path KeyPath) []Node {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nodes := make([]Node, 0, len(keys))
	for _, key := range keys {
		value := obj[key]
		if r.mode == ModeReadOnly && isEmptyTree(value) {
			continue
		}
		child := path.Append(Key(key))

		switch v := value.(type) {
		case []any:
			nodes = append(nodes, r.array(key, v, child))
		case Annotated:
			nodes = append(nodes, Node{Group: true, Path: child.String(), Children: r.object(v, child)})
		case map[string]any:
			nodes = append(nodes, Node{Group: true, Path: child.String(), Children: r.object(v, child)})
		case Field:
			nodes = append(nodes, r.control(v, child))
		default:
			nodes = append(nodes, r.control(Field{Value: v, Label: key, Kind: inferKind(v)}, child))
		}
	}
	return nodes
}

func (r *renderer) array(key string, items []any, path KeyPath) Node {
	label := groupLabels[key]
	if label == "" {
		label = key
	}
	group := Node{Group: true, Label: label, Path: path.String()}

	table := lineFieldsFor(r.invoiceType, key)
	for i, item := range items {
		if r.mode == ModeReadOnly && isEmptyTree(item) {
			continue
		}
		itemPath := path.Append(Index(i))
		elem, ok := item.(map[string]any)
		if !ok {
			if a, isAnn := item.(Annotated); isAnn {
				elem, ok = map[string]any(a), true
			}
		}
		switch {
		case ok && table != nil:
			group.Children = append(group.Children, r.tableRow(elem, table, itemPath))
		case ok:
			group.Children = append(group.Children, Node{Group: true, Path: itemPath.String(), Children: r.object(elem, itemPath)})
		default:
			group.Children = append(group.Children, r.control(Field{Value: item, Label: key, Kind: inferKind(item)}, itemPath))
		}
	}
	return group
}

// tableRow renders one line (or line item) using its fixed field table
// instead of generic key enumeration.
func (r *renderer) tableRow(elem map[string]any, table []LineField, path KeyPath) Node {
	row := Node{Group: true, Path: path.String()}
	for _, f := range table {
		field := Field{
			Value:    elem[f.Key],
			Label:    f.Label,
			Kind:     f.Kind,
			Required: f.Required,
			Options:  f.Options,
		}
		node := r.control(field, path.Append(Key(f.Key)))
		if f.Disabled {
			node.Disabled = true
		}
		row.Children = append(row.Children, node)
	}

	// Type 3 lines nest a further lineitems array inside each row.
	if nested, ok := elem[domain.KeyLineItems].([]any); ok {
		if lineFieldsFor(r.invoiceType, domain.KeyLineItems) != nil {
			row.Children = append(row.Children, r.array(domain.KeyLineItems, nested, path.Append(Key(domain.KeyLineItems))))
		}
	}
	return row
}

func (r *renderer) control(f Field, path KeyPath) Node {
	node := Node{
		Label:    f.Label,
		Path:     path.String(),
		Value:    f.Value,
		Required: f.Required,
		Disabled: r.mode == ModeReadOnly,
	}
	if r.errs != nil {
		node.Error = r.errs[node.Path]
	}
	if f.Required && isEmptyScalar(f.Value) {
		node.Missing = true
	}

	kind := f.Kind
	// Untyped strings that look like dates or clock times display as
	// date/time controls; an explicit schema type always wins.
	if kind == domain.FieldString {
		if s, ok := f.Value.(string); ok {
			switch {
			case isoDateRe.MatchString(s):
				kind = domain.FieldDate
			case clockRe.MatchString(s):
				kind = domain.FieldTime
			}
		}
	}

	switch kind {
	case domain.FieldNumber:
		node.Control = ControlNumber
		node.Pattern = numberPattern
	case domain.FieldPercentage:
		node.Control = ControlPercent
		node.Pattern = numberPattern
	case domain.FieldBoolean:
		node.Control = ControlCheckbox
	case domain.FieldDate:
		node.Control = ControlDate
		node.Value = formatDate(f.Value)
	case domain.FieldTime:
		node.Control = ControlTime
		node.Value = formatTime(f.Value)
	case domain.FieldSelect:
		node.Control = ControlSelect
		node.Options = f.Options
		// An unrecognized current value still displays instead of being
		// silently dropped.
		if s, ok := f.Value.(string); ok && s != "" && !slices.Contains(node.Options, s) {
			node.Options = append(slices.Clone(node.Options), s)
		}
	default:
		node.Control = ControlText
	}
	return node
}

// formatDate normalizes a date-ish string to YYYY-MM-DD for display.
func formatDate(value any) any {
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "02/01/2006"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	return s
}

// formatTime normalizes a clock string to HH:mm for display.
func formatTime(value any) any {
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format("15:04")
		}
	}
	return s
}

// isEmptyTree reports whether a subtree contains only null, empty-string or
// empty-array leaves. Such nodes render nothing in read-only mode.
func isEmptyTree(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		for _, item := range v {
			if !isEmptyTree(item) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range v {
			if !isEmptyTree(item) {
				return false
			}
		}
		return true
	case Annotated:
		return isEmptyTree(map[string]any(v))
	case Field:
		return isEmptyTree(v.Value)
	default:
		// Numbers and booleans count as present even when zero.
		return false
	}
}

func isEmptyScalar(value any) bool {
	if value == nil {
		return true
	}
	if f, ok := value.(Field); ok {
		return isEmptyScalar(f.Value)
	}
	s, ok := value.(string)
	return ok && s == ""
}
