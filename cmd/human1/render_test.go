package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"human1-sdk/internal/models"
)

func TestTableData(t *testing.T) {
	data := models.NewTable(
		[]string{"name", "height", "films", "droid"},
		[][]interface{}{
			{"R2-D2", json.Number("96"), []interface{}{"A New Hope"}, true},
			{"IG-88", nil, []interface{}{}, true},
		},
	)

	assert.Equal(t, pterm.TableData{
		{"name", "height", "films", "droid"},
		{"R2-D2", "96", `["A New Hope"]`, "true"},
		{"IG-88", "", `[]`, "true"},
	}, tableData(data))
}

func TestRenderEnvelope(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	tests := []struct {
		name    string
		env     models.Envelope
		wantErr bool
	}{
		{"table", models.OK(models.NewTable([]string{"a"}, [][]interface{}{{"1"}})), false},
		{"paragraph", models.OK(models.NewParagraph("six films")), false},
		{"paragraph error", models.Envelope{Status: http.StatusInternalServerError, Data: models.TextBody{Text: "Error: boom"}}, true},
		{"bad request", models.BadRequest("Query is required", ""), true},
		{"other", models.OK(map[string]string{"message": "hi"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := renderEnvelope(tt.env)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return assert.AnError
		}
		return nil
	}, 5, 0, zap.NewNop(), "op")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = retryWithBackoff(context.Background(), func() error {
		attempts++
		return assert.AnError
	}, 2, 0, zap.NewNop(), "op")
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, attempts)
}
