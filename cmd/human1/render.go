// cmd/human1/render.go
package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pterm/pterm"

	"human1-sdk/internal/models"
)

// renderEnvelope prints a query envelope the way the web client would show it.
func renderEnvelope(env models.Envelope) error {
	switch data := env.Data.(type) {
	case *models.ResponseData:
		switch data.Type {
		case models.ResponseTypeTable:
			return pterm.DefaultTable.WithHasHeader().WithData(tableData(data)).Render()
		case models.ResponseTypeParagraph:
			pterm.Println(data.Text)
		default:
			pterm.Error.Println(data.Message)
		}
	case models.TextBody:
		pterm.Error.Println(data.Text)
	case models.ErrorBody:
		if data.Message != "" {
			pterm.Error.Printfln("%s: %s", data.Error, data.Message)
		} else {
			pterm.Error.Println(data.Error)
		}
	default:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		pterm.Println(string(b))
	}

	if env.Status != http.StatusOK {
		return fmt.Errorf("query failed with status %d", env.Status)
	}
	return nil
}

// tableData flattens a table result into header plus rows of strings.
func tableData(r *models.ResponseData) pterm.TableData {
	out := make(pterm.TableData, 0, len(r.Rows)+1)
	out = append(out, append([]string{}, r.Columns...))
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellString(v)
		}
		out = append(out, cells)
	}
	return out
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	case bool, int, int64, float64:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
