package form

import "github.com/invoicedesk/invoicedesk/internal/domain"

// Apply sets the leaf addressed by path to value and returns a new record.
// The input is never mutated: every container on the path is copied, while
// subtrees off the path are shared with the input, so callers can detect
// change by reference inequality. Missing intermediate containers are
// created on the way down: an object when the next segment is a field name,
// an array when it is an index. A segment landing on a non-container is a
// caller error and overwrites the slot.
func Apply(info map[string]any, path KeyPath, value any) map[string]any {
	if len(path) == 0 {
		if replacement, ok := value.(map[string]any); ok {
			return replacement
		}
		return info
	}
	return setIn(info, path, value).(map[string]any)
}

func setIn(container any, path KeyPath, value any) any {
	if len(path) == 0 {
		return value
	}
	seg := path[0]

	if seg.IsIndex() {
		arr, _ := container.([]any)
		size := len(arr)
		if seg.Idx() >= size {
			size = seg.Idx() + 1
		}
		out := make([]any, size)
		copy(out, arr)
		out[seg.Idx()] = setIn(out[seg.Idx()], path[1:], value)
		return out
	}

	obj, _ := container.(map[string]any)
	out := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		out[k] = v
	}
	out[seg.Name()] = setIn(obj[seg.Name()], path[1:], value)
	return out
}

// AddLine prepends a zero-valued line of the type-specific shape: the new
// item comes first, existing lines follow unchanged.
func AddLine(info map[string]any, t domain.InvoiceType) map[string]any {
	lines, _ := info[domain.KeyLines].([]any)
	updated := make([]any, 0, len(lines)+1)
	updated = append(updated, any(NewLine(t)))
	updated = append(updated, lines...)
	return Apply(info, Path(domain.KeyLines), updated)
}

// AddLineItem prepends a zero-valued line item to lines[lineIndex].lineitems.
// Other lines are untouched; an out-of-range line index is a no-op.
func AddLineItem(info map[string]any, lineIndex int) map[string]any {
	lines, _ := info[domain.KeyLines].([]any)
	if lineIndex < 0 || lineIndex >= len(lines) {
		return info
	}
	line, _ := lines[lineIndex].(map[string]any)
	items, _ := line[domain.KeyLineItems].([]any)
	updated := make([]any, 0, len(items)+1)
	updated = append(updated, any(NewLineItem()))
	updated = append(updated, items...)
	return Apply(info, Path(domain.KeyLines, lineIndex, domain.KeyLineItems), updated)
}

// DeleteLine removes exactly one line, shifting later indices down by one.
// Out-of-range indices are a no-op.
func DeleteLine(info map[string]any, index int) map[string]any {
	lines, _ := info[domain.KeyLines].([]any)
	if index < 0 || index >= len(lines) {
		return info
	}
	return Apply(info, Path(domain.KeyLines), removeAt(lines, index))
}

// DeleteLineItem removes one line item from lines[lineIndex].lineitems.
// Out-of-range indices at either level are a no-op.
func DeleteLineItem(info map[string]any, lineIndex, itemIndex int) map[string]any {
	lines, _ := info[domain.KeyLines].([]any)
	if lineIndex < 0 || lineIndex >= len(lines) {
		return info
	}
	line, _ := lines[lineIndex].(map[string]any)
	items, _ := line[domain.KeyLineItems].([]any)
	if itemIndex < 0 || itemIndex >= len(items) {
		return info
	}
	return Apply(info, Path(domain.KeyLines, lineIndex, domain.KeyLineItems), removeAt(items, itemIndex))
}

func removeAt(arr []any, index int) []any {
	out := make([]any, 0, len(arr)-1)
	out = append(out, arr[:index]...)
	return append(out, arr[index+1:]...)
}
