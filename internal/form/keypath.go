package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a KeyPath: either a field name or an array index.
type Segment struct {
	key   string
	index int
	isIdx bool
}

// Key returns a field-name segment.
func Key(name string) Segment { return Segment{key: name} }

// Index returns an array-index segment.
func Index(i int) Segment { return Segment{index: i, isIdx: true} }

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.isIdx }

// Name returns the field name of a key segment.
func (s Segment) Name() string { return s.key }

// Idx returns the array index of an index segment.
func (s Segment) Idx() int { return s.index }

// KeyPath addresses a single slot inside a nested invoice_info tree.
type KeyPath []Segment

// Path is a convenience constructor: strings become key segments, ints
// become index segments.
func Path(segs ...any) KeyPath {
	kp := make(KeyPath, 0, len(segs))
	for _, s := range segs {
		switch v := s.(type) {
		case string:
			kp = append(kp, Key(v))
		case int:
			kp = append(kp, Index(v))
		default:
			panic(fmt.Sprintf("form: unsupported path segment %T", s))
		}
	}
	return kp
}

// Append returns a new KeyPath with seg added. The receiver is not modified
// and does not share backing storage with the result, so paths built during
// recursive descent never clobber sibling paths.
func (p KeyPath) Append(seg Segment) KeyPath {
	out := make(KeyPath, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// String renders the dotted form used as validation-error keys,
// e.g. "lines[2].start_time".
func (p KeyPath) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.isIdx {
			fmt.Fprintf(&b, "[%d]", seg.index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.key)
	}
	return b.String()
}

// ParsePath parses the dotted form produced by String.
func ParsePath(s string) (KeyPath, error) {
	var kp KeyPath
	for _, part := range strings.Split(s, ".") {
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				kp = append(kp, Key(part))
				break
			}
			if open > 0 {
				kp = append(kp, Key(part[:open]))
			}
			close := strings.IndexByte(part, ']')
			if close < open {
				return nil, fmt.Errorf("form: malformed key path %q", s)
			}
			idx, err := strconv.Atoi(part[open+1 : close])
			if err != nil {
				return nil, fmt.Errorf("form: malformed index in key path %q", s)
			}
			kp = append(kp, Index(idx))
			part = part[close+1:]
		}
	}
	return kp, nil
}

// MarshalJSON encodes the path as a mixed array, e.g. ["lines",2,"date"].
func (p KeyPath) MarshalJSON() ([]byte, error) {
	raw := make([]any, len(p))
	for i, seg := range p {
		if seg.isIdx {
			raw[i] = seg.index
		} else {
			raw[i] = seg.key
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes the mixed-array form used by the PATCH endpoint.
func (p *KeyPath) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kp := make(KeyPath, 0, len(raw))
	for _, seg := range raw {
		switch v := seg.(type) {
		case string:
			kp = append(kp, Key(v))
		case float64:
			if v != float64(int(v)) || v < 0 {
				return fmt.Errorf("form: invalid array index %v", v)
			}
			kp = append(kp, Index(int(v)))
		default:
			return fmt.Errorf("form: invalid path segment %T", seg)
		}
	}
	*p = kp
	return nil
}
