package canonical

import "time"

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toISO normalizes a timestamp of any upstream shape (RFC3339 variants,
// date-only strings, unix seconds or milliseconds) into an ISO-8601 UTC
// string. Unparseable or absent values fall back to the given time.
func toISO(v any, fallback time.Time) string {
	switch t := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC().Format(time.RFC3339)
			}
		}
	case float64:
		if t > 0 {
			sec := int64(t)
			if sec > 1e12 { // milliseconds
				return time.UnixMilli(sec).UTC().Format(time.RFC3339)
			}
			return time.Unix(sec, 0).UTC().Format(time.RFC3339)
		}
	}
	return fallback.UTC().Format(time.RFC3339)
}
