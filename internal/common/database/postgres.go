// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"human1-sdk/internal/common/config"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB     *sql.DB
	Driver string
}

// NewPostgres opens a pool with the configured driver: "postgres" uses
// lib/pq, "pgx" uses the pgx stdlib adapter. Both accept the same DSN.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	db, err := sql.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db, Driver: driver}, nil
}

// NewPostgresFromDB wraps an existing handle, mostly for tests.
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db, Driver: "postgres"}
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// ReadOnlyTx starts a read-only transaction. Callers roll it back when done.
func (c *PostgresClient) ReadOnlyTx(ctx context.Context) (*sql.Tx, error) {
	return c.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
