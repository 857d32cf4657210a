// Package bundle unwraps upstream delivery envelopes into plain order
// documents. The upstream aggregator wraps payloads in several shapes:
// arrays, {data: ...} containers, {text: "<json>"} strings, and flat maps
// whose keys use dotted path notation.
package bundle

import (
	"encoding/json"
	"strings"
)

// Document is a decoded upstream order payload.
type Document = map[string]any

// Kind reports which envelope shape Extract had to unwrap. KindObject means
// the input was already a plain document and passed through unchanged.
type Kind int

const (
	KindUnknown Kind = iota
	KindObject
	KindArray
	KindData
	KindText
	KindFlat
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindData:
		return "data"
	case KindText:
		return "text"
	case KindFlat:
		return "flat"
	}
	return "unknown"
}

const maxUnwrapDepth = 16

// Extract coerces an arbitrary upstream payload into a Document. It returns
// nil (with KindUnknown) only when the input cannot be turned into an object
// at all: empty arrays, unparseable strings, bare scalars. Callers must treat
// a nil result as a hard validation failure.
func Extract(raw any) (Document, Kind) {
	return extract(raw, 0)
}

func extract(raw any, depth int) (Document, Kind) {
	if depth > maxUnwrapDepth {
		return nil, KindUnknown
	}

	switch v := raw.(type) {
	case Document:
		if inner, ok := v["data"]; ok {
			if doc, _ := extract(inner, depth+1); doc != nil {
				return doc, KindData
			}
		}
		if txt, ok := v["text"].(string); ok {
			doc, _ := extract(txt, depth+1)
			if doc == nil {
				return nil, KindUnknown
			}
			return doc, KindText
		}
		if hasFlatKeys(v) {
			doc, _ := extract(Rehydrate(v), depth+1)
			if doc == nil {
				return nil, KindUnknown
			}
			return doc, KindFlat
		}
		return v, KindObject

	case []any:
		if len(v) == 0 {
			return nil, KindUnknown
		}
		doc, _ := extract(v[0], depth+1)
		if doc == nil {
			return nil, KindUnknown
		}
		return doc, KindArray

	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return nil, KindUnknown
		}
		// A JSON string encoding another string would recurse forever.
		if s, ok := parsed.(string); ok && s == v {
			return nil, KindUnknown
		}
		return extract(parsed, depth+1)
	}

	return nil, KindUnknown
}

func hasFlatKeys(doc Document) bool {
	for k := range doc {
		if strings.ContainsRune(k, '.') {
			return true
		}
		if strings.ContainsRune(k, '[') && strings.ContainsRune(k, ']') {
			return true
		}
	}
	return false
}
