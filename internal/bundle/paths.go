package bundle

import (
	"sort"
	"strconv"
	"strings"
)

// segment is one step of a dotted key path: a map key followed by zero or
// more array indices, e.g. "items[0]" or "matrix[1][2]".
type segment struct {
	key  string
	idxs []int
}

// Rehydrate turns a flat map with dot-and-bracket keys (customer.phone,
// items[0].name) back into a nested document. Keys without path notation are
// copied as-is, so rehydrating an already-nested document is a no-op. Keys
// are processed in sorted order to keep array growth deterministic.
func Rehydrate(flat Document) Document {
	out := Document{}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		segs := parsePath(k)
		setPath(out, segs, flat[k])
	}
	return out
}

// Flatten is the inverse of Rehydrate: it collapses a nested document into a
// single-level map with dotted keys. Empty containers are kept as leaves.
func Flatten(doc Document) Document {
	out := Document{}
	flattenInto(out, "", doc)
	return out
}

func flattenInto(out Document, prefix string, v any) {
	switch t := v.(type) {
	case Document:
		if len(t) == 0 {
			if prefix != "" {
				out[prefix] = t
			}
			return
		}
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenInto(out, key, child)
		}
	case []any:
		if len(t) == 0 {
			if prefix != "" {
				out[prefix] = t
			}
			return
		}
		for i, child := range t {
			flattenInto(out, prefix+"["+strconv.Itoa(i)+"]", child)
		}
	default:
		if prefix != "" {
			out[prefix] = v
		}
	}
}

func parsePath(key string) []segment {
	parts := strings.Split(key, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		segs = append(segs, parseSegment(p))
	}
	return segs
}

func parseSegment(part string) segment {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return segment{key: part}
	}
	s := segment{key: part[:open]}
	rest := part[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			break
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 {
			// Malformed index: treat the whole part as a literal key.
			return segment{key: part}
		}
		s.idxs = append(s.idxs, idx)
		rest = rest[end+1:]
	}
	if len(rest) > 0 || len(s.idxs) == 0 {
		return segment{key: part}
	}
	return s
}

func setPath(doc Document, segs []segment, val any) {
	s := segs[0]
	last := len(segs) == 1

	if len(s.idxs) == 0 {
		if last {
			doc[s.key] = val
			return
		}
		child, _ := doc[s.key].(Document)
		if child == nil {
			child = Document{}
			doc[s.key] = child
		}
		setPath(child, segs[1:], val)
		return
	}

	arr, _ := doc[s.key].([]any)
	arr = growTo(arr, s.idxs[0])
	doc[s.key] = arr

	slot := &arr[s.idxs[0]]
	for _, idx := range s.idxs[1:] {
		inner, _ := (*slot).([]any)
		inner = growTo(inner, idx)
		*slot = inner
		slot = &inner[idx]
	}

	if last {
		*slot = val
		return
	}
	child, _ := (*slot).(Document)
	if child == nil {
		child = Document{}
		*slot = child
	}
	setPath(child, segs[1:], val)
}

// growTo pads arr with empty-object placeholders until idx is addressable.
func growTo(arr []any, idx int) []any {
	for len(arr) <= idx {
		arr = append(arr, Document{})
	}
	return arr
}
