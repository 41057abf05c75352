package schemer

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNilDB is thrown when the database pointer is nil
var ErrNilDB = errors.New("DB pointer is nil")

// ErrNilDefinition is returned when a reconciliation is requested without a
// Definition to reconcile against
var ErrNilDefinition = errors.New("Definition is nil")

// Queryer is something which can execute a Query (either a sql.DB, a
// sql.Conn or a sql.Tx). Reconciliation never opens transactions of its own,
// so callers who want one can pass a *sql.Tx.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// queryCount runs a query which returns a single integer (typically a
// COUNT(*)) and scans it.
func queryCount(ctx context.Context, db Queryer, query string, args ...interface{}) (count int, err error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}
