package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQueryRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       map[string]interface{}
		wantValid bool
		wantField string
	}{
		{"query only", map[string]interface{}{"query": "How many films?"}, true, ""},
		{"table format", map[string]interface{}{"query": "q", "responseFormat": "table"}, true, ""},
		{"paragraph format", map[string]interface{}{"query": "q", "responseFormat": "paragraph"}, true, ""},
		{"extra fields allowed", map[string]interface{}{"query": "q", "page": "2"}, true, ""},
		{"nil body", nil, false, "query"},
		{"missing query", map[string]interface{}{}, false, "query"},
		{"empty query", map[string]interface{}{"query": ""}, false, "query"},
		{"blank query", map[string]interface{}{"query": "   \t"}, false, "query"},
		{"non-string query", map[string]interface{}{"query": 42}, false, "query"},
		{"unknown format", map[string]interface{}{"query": "q", "responseFormat": "csv"}, false, "responseFormat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateQueryRequest(tt.req)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.wantValid {
				assert.Empty(t, result.Errors)
				return
			}
			assert.True(t, result.HasField(tt.wantField), "errors: %+v", result.Errors)
			assert.NotEmpty(t, result.Message())
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile(`not json`) })
}
