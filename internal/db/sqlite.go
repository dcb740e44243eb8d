package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient wraps the database/sql handle the extractor runs its
// PRAGMA queries over.
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens a SQLite file and verifies it with a ping before
// handing it out.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteClient{db: db}, nil
}

// Close releases the handle.
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// DB exposes the underlying handle for PRAGMA queries.
func (c *SQLiteClient) DB() *sql.DB {
	return c.db
}
