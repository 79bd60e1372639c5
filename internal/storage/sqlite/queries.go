package sqlite

import (
	"context"
	"database/sql"
)

// queries holds every entity operation. The same methods run against the
// pool (SQLiteStorage) or a dedicated transaction connection (sqliteTxStorage).
type queries struct {
	q querier
	// db is set only outside a transaction, so multi-statement writes can
	// open their own.
	db *sql.DB
}

// atomically runs fn in a write transaction. Inside RunInTransaction it runs
// fn directly on the enclosing transaction.
func (qs queries) atomically(ctx context.Context, fn func(qs queries) error) error {
	if qs.db == nil {
		return fn(qs)
	}
	return runImmediate(ctx, qs.db, func(conn *sql.Conn) error {
		return fn(queries{q: conn})
	})
}
