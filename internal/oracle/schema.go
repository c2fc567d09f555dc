// internal/oracle/schema.go
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
)

const columnsQuery = `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`

// SchemaInspector describes the live public schema, one line per column.
// The first successful read is cached until Refresh.
type SchemaInspector struct {
	db *sql.DB

	mu          sync.RWMutex
	description string
}

func NewSchemaInspector(db *sql.DB) *SchemaInspector {
	return &SchemaInspector{db: db}
}

func (s *SchemaInspector) Describe(ctx context.Context) (string, error) {
	s.mu.RLock()
	cached := s.description
	s.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}
	return s.Refresh(ctx)
}

func (s *SchemaInspector) Refresh(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return "", fmt.Errorf("query information_schema: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", fmt.Errorf("scan column: %w", err)
		}
		lines = append(lines, fmt.Sprintf("Table: %s, Column: %s, Type: %s", table, column, dataType))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate columns: %w", err)
	}

	description := strings.Join(lines, "\n")

	s.mu.Lock()
	s.description = description
	s.mu.Unlock()

	return description, nil
}
