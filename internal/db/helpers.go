package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so repositories can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction, committing on nil and rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// NullInt64 maps an optional id pointer to a driver value.
func NullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// NullFloat64 maps an optional coordinate pointer to a driver value.
func NullFloat64(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Int64Ptr unwraps a scanned nullable integer.
func Int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	x := v.Int64
	return &x
}

// Float64Ptr unwraps a scanned nullable float.
func Float64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	x := v.Float64
	return &x
}

// HasTable reports whether table exists in the connected schema. Only a
// missing row means absent; any other error is returned.
func HasTable(ctx context.Context, q DBTX, d Dialect, table string) (bool, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`
	if d == DialectSQLite {
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1`
	}

	var name sql.NullString
	if err := q.QueryRowContext(ctx, query, table).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return name.Valid && name.String != "", nil
}
