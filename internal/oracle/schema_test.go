package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaInspector_DescribeCaches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT table_name, column_name, data_type FROM information_schema.columns").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("films", "_id", "integer").
			AddRow("films", "title", "character varying"))

	inspector := NewSchemaInspector(db)
	ctx := context.Background()

	want := "Table: films, Column: _id, Type: integer\nTable: films, Column: title, Type: character varying"
	got, err := inspector.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Served from cache; no second query is expected.
	got, err = inspector.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaInspector_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("information_schema.columns").WillReturnError(errors.New("permission denied"))

	_, err = NewSchemaInspector(db).Describe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
