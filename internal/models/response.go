// internal/models/response.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ResponseType string

const (
	ResponseTypeTable     ResponseType = "table"
	ResponseTypeParagraph ResponseType = "paragraph"
	ResponseTypeError     ResponseType = "error"
)

// ResponseFormat is what a caller asks for. Errors are never requested.
type ResponseFormat string

const (
	FormatTable     ResponseFormat = "table"
	FormatParagraph ResponseFormat = "paragraph"

	DefaultFormat = FormatTable
)

func ParseResponseFormat(s string) (ResponseFormat, bool) {
	switch ResponseFormat(s) {
	case FormatTable, FormatParagraph:
		return ResponseFormat(s), true
	default:
		return "", false
	}
}

var ErrInvalidResponse = errors.New("INVALID_RESPONSE_DATA")

// ResponseData is a tagged union over table, paragraph and error results.
// Only the fields of the branch named by Type are set.
type ResponseData struct {
	Type        ResponseType
	Columns     []string
	Rows        [][]interface{}
	Text        string
	Message     string
	Query       string
	Suggestions []string
}

func NewTable(columns []string, rows [][]interface{}) *ResponseData {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]interface{}{}
	}
	return &ResponseData{Type: ResponseTypeTable, Columns: columns, Rows: rows}
}

func NewParagraph(text string) *ResponseData {
	return &ResponseData{Type: ResponseTypeParagraph, Text: text}
}

func NewError(message, query string, suggestions ...string) *ResponseData {
	return &ResponseData{
		Type:        ResponseTypeError,
		Message:     message,
		Query:       query,
		Suggestions: suggestions,
	}
}

// Validate checks that exactly one branch is populated and that every table
// row is as wide as the column list.
func (r *ResponseData) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}

	hasTable := r.Columns != nil || r.Rows != nil
	hasParagraph := r.Text != ""
	hasError := r.Message != "" || r.Query != "" || len(r.Suggestions) > 0

	switch r.Type {
	case ResponseTypeTable:
		if hasParagraph || hasError {
			return fmt.Errorf("%w: table carries paragraph or error fields", ErrInvalidResponse)
		}
		for i, row := range r.Rows {
			if len(row) != len(r.Columns) {
				return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidResponse, i, len(row), len(r.Columns))
			}
		}
	case ResponseTypeParagraph:
		if hasTable || hasError {
			return fmt.Errorf("%w: paragraph carries table or error fields", ErrInvalidResponse)
		}
	case ResponseTypeError:
		if hasTable || hasParagraph {
			return fmt.Errorf("%w: error carries table or paragraph fields", ErrInvalidResponse)
		}
		if r.Message == "" {
			return fmt.Errorf("%w: error without message", ErrInvalidResponse)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidResponse, r.Type)
	}
	return nil
}

type tableWire struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

type paragraphWire struct {
	Text string `json:"text"`
}

type errorWire struct {
	Error       string   `json:"error"`
	Query       string   `json:"query,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// MarshalJSON writes the branch shape the UI renders; the type tag is implied
// by the fields.
func (r ResponseData) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ResponseTypeTable:
		w := tableWire{Columns: r.Columns, Rows: r.Rows}
		if w.Columns == nil {
			w.Columns = []string{}
		}
		if w.Rows == nil {
			w.Rows = [][]interface{}{}
		}
		return json.Marshal(w)
	case ResponseTypeParagraph:
		return json.Marshal(paragraphWire{Text: r.Text})
	case ResponseTypeError:
		return json.Marshal(errorWire{Error: r.Message, Query: r.Query, Suggestions: r.Suggestions})
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidResponse, r.Type)
	}
}

// UnmarshalJSON infers the branch from the keys present.
func (r *ResponseData) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	_, hasColumns := keys["columns"]
	_, hasRows := keys["rows"]
	_, hasText := keys["text"]
	_, hasError := keys["error"]

	switch {
	case hasColumns || hasRows:
		var w tableWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*r = *NewTable(w.Columns, w.Rows)
	case hasText:
		var w paragraphWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*r = *NewParagraph(w.Text)
	case hasError:
		var w errorWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*r = *NewError(w.Error, w.Query, w.Suggestions...)
	default:
		return fmt.Errorf("%w: no table, paragraph or error fields", ErrInvalidResponse)
	}
	return nil
}
