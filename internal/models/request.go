// internal/models/request.go
package models

import "strings"

// RequestData is the framework-agnostic request: body fields and query-string
// parameters merged into one map.
type RequestData map[string]interface{}

const (
	FieldQuery          = "query"
	FieldResponseFormat = "responseFormat"
)

// Query returns the trimmed query string, or "" when absent or not a string.
func (r RequestData) Query() string {
	s, _ := r[FieldQuery].(string)
	return strings.TrimSpace(s)
}

// ResponseFormat returns the requested format. The bool is false when the
// field is absent; an unknown value is returned as is for validation to reject.
func (r RequestData) ResponseFormat() (ResponseFormat, bool) {
	v, ok := r[FieldResponseFormat]
	if !ok || v == nil {
		return "", false
	}
	s, _ := v.(string)
	return ResponseFormat(s), true
}

// Merge returns a new map holding r overlaid with other; other wins on conflict.
func (r RequestData) Merge(other map[string]interface{}) RequestData {
	out := make(RequestData, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
