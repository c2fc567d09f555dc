package models

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseData_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    *ResponseData
		wantErr bool
	}{
		{"table", NewTable([]string{"a", "b"}, [][]interface{}{{1, 2}, {3, nil}}), false},
		{"empty table", NewTable(nil, nil), false},
		{"paragraph", NewParagraph("Luke is a Jedi."), false},
		{"error", NewError("boom", "q", "try again"), false},
		{"nil", nil, true},
		{"short row", NewTable([]string{"a", "b"}, [][]interface{}{{1}}), true},
		{"long row", NewTable([]string{"a"}, [][]interface{}{{1, 2}}), true},
		{"table with text", &ResponseData{Type: ResponseTypeTable, Columns: []string{}, Text: "x"}, true},
		{"paragraph with rows", &ResponseData{Type: ResponseTypeParagraph, Text: "x", Rows: [][]interface{}{}}, true},
		{"error with columns", &ResponseData{Type: ResponseTypeError, Message: "m", Columns: []string{"a"}}, true},
		{"error without message", &ResponseData{Type: ResponseTypeError}, true},
		{"unknown type", &ResponseData{Type: "csv"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidResponse))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResponseData_WireShape(t *testing.T) {
	tests := []struct {
		name string
		data *ResponseData
		want string
	}{
		{
			name: "table",
			data: NewTable([]string{"Region", "Sales"}, [][]interface{}{{"West", 100}}),
			want: `{"columns":["Region","Sales"],"rows":[["West",100]]}`,
		},
		{
			name: "empty table keeps arrays",
			data: NewTable(nil, nil),
			want: `{"columns":[],"rows":[]}`,
		},
		{
			name: "paragraph",
			data: NewParagraph("Two films."),
			want: `{"text":"Two films."}`,
		},
		{
			name: "error",
			data: NewError("boom", "Generate an error", "Rephrase the question"),
			want: `{"error":"boom","query":"Generate an error","suggestions":["Rephrase the question"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.data)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))

			var back ResponseData
			require.NoError(t, json.Unmarshal(got, &back))
			assert.Equal(t, tt.data.Type, back.Type)
			assert.NoError(t, back.Validate())
		})
	}
}

func TestResponseData_UnmarshalInfersBranch(t *testing.T) {
	var got ResponseData
	require.NoError(t, json.Unmarshal([]byte(`{"columns":["name"],"rows":[["Yoda"]]}`), &got))

	want := ResponseData{
		Type:    ResponseTypeTable,
		Columns: []string{"name"},
		Rows:    [][]interface{}{{"Yoda"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	err := json.Unmarshal([]byte(`{"unrelated":true}`), &got)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestResponseData_MarshalUnknownType(t *testing.T) {
	_, err := json.Marshal(ResponseData{Type: "csv"})
	assert.Error(t, err)
}

func TestRequestData(t *testing.T) {
	req := RequestData{"query": "  How many films?  ", "responseFormat": "paragraph"}
	assert.Equal(t, "How many films?", req.Query())

	format, ok := req.ResponseFormat()
	assert.True(t, ok)
	assert.Equal(t, FormatParagraph, format)

	_, ok = RequestData{}.ResponseFormat()
	assert.False(t, ok)

	assert.Equal(t, "", RequestData{"query": 12}.Query())

	merged := RequestData{"query": "body", "a": 1}.Merge(map[string]interface{}{"query": "url", "b": 2})
	if diff := cmp.Diff(RequestData{"query": "url", "a": 1, "b": 2}, merged); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseFormat(t *testing.T) {
	f, ok := ParseResponseFormat("table")
	assert.True(t, ok)
	assert.Equal(t, FormatTable, f)

	_, ok = ParseResponseFormat("csv")
	assert.False(t, ok)
}

func TestRouteDefinition_Validate(t *testing.T) {
	h := func(_ context.Context, _ RequestData) Envelope { return OK(nil) }

	assert.NoError(t, RouteDefinition{Path: "/x", Method: "get", Handler: h}.Validate())
	assert.Error(t, RouteDefinition{Path: "/x", Method: "OPTIONS", Handler: h}.Validate())
	assert.Error(t, RouteDefinition{Path: "/x", Method: "GET"}.Validate())

	assert.True(t, HasBody("PATCH"))
	assert.False(t, HasBody("DELETE"))
}
