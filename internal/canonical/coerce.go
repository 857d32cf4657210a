package canonical

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mrussa/order-bridge/internal/bundle"
)

// Tolerant accessors. Upstream payloads encode compound fields as objects,
// JSON-encoded strings, bare scalars or singleton lists; every accessor here
// resolves to a typed default instead of failing.

// asMap coerces v into a document: maps pass through, JSON strings are
// parsed, lists yield their first element.
func asMap(v any) (bundle.Document, bool) {
	switch t := v.(type) {
	case bundle.Document:
		return t, true
	case string:
		var m bundle.Document
		if err := json.Unmarshal([]byte(t), &m); err != nil {
			return nil, false
		}
		return m, true
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		return asMap(t[0])
	}
	return nil, false
}

// asList coerces v into a list: lists pass through, objects are wrapped as a
// singleton, JSON strings are parsed and re-coerced.
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case bundle.Document:
		return []any{t}
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(t), &parsed); err != nil {
			return nil
		}
		if _, again := parsed.(string); again {
			return nil
		}
		return asList(parsed)
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	}
	return ""
}

// asFloat treats missing, null and non-numeric values as 0. Strings accept
// the decimal-comma form common in localized payloads.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
			return f
		}
	}
	return 0
}

func asInt(v any) int {
	return int(asFloat(v))
}

// pick returns the first present, non-nil value among the aliased keys.
// Resolution order is the caller's: canonical name first, then snake_case,
// then legacy/localized spellings.
func pick(m bundle.Document, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(m bundle.Document, keys ...string) string {
	v, ok := pick(m, keys...)
	if !ok {
		return ""
	}
	return asString(v)
}

func pickFloat(m bundle.Document, keys ...string) float64 {
	v, ok := pick(m, keys...)
	if !ok {
		return 0
	}
	return asFloat(v)
}

func pickInt(m bundle.Document, keys ...string) int {
	v, ok := pick(m, keys...)
	if !ok {
		return 0
	}
	return asInt(v)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
