// Package extract recovers structured data from free-form capability output.
//
// Agent responses are natural language that may wrap the intended JSON
// payload in commentary or markdown fences. Extraction is best-effort and
// never fails: callers get an empty mapping plus ok=false and must treat
// that as "assessment unavailable", not as a negative assessment.
package extract

import (
	"encoding/json"
	"strings"
)

// Extract locates the first '{' and the last '}' in raw and parses the span
// as a JSON object. On any parse failure, or when no span exists, it returns
// an empty non-nil mapping and false. It never panics and is idempotent.
func Extract(raw string) (map[string]any, bool) {
	s := stripFences(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return map[string]any{}, false
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return map[string]any{}, false
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, true
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s[3:], "\n"); idx >= 0 {
		s = s[3+idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// String reads a string value from an extracted mapping, returning "" when
// the key is absent or not a string.
func String(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// Float reads a numeric value from an extracted mapping. JSON numbers decode
// as float64; absent or non-numeric keys return 0.
func Float(m map[string]any, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

// Bool reads a boolean value from an extracted mapping, returning false when
// the key is absent or not a boolean.
func Bool(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
