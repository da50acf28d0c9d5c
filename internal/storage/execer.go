package storage

import (
	"context"
	"database/sql"
)

// Execer is satisfied by both *sql.DB and *sql.Conn, letting the CRUD
// helpers in this package run unmodified whether they're invoked through
// Pool.Write (a bare *sql.DB) or Pool.WriteTransaction (a *sql.Conn pinned
// inside a BEGIN IMMEDIATE/COMMIT pair).
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Querier is the read-side counterpart of Execer.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
