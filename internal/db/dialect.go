package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects the SQL flavour for the few statements that differ.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return DialectMySQL, nil
	case "sqlite", "sqlite3", "":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectMySQL {
		return "mysql"
	}
	return "sqlite"
}

// ForUpdate returns the row-lock suffix for a SELECT. SQLite serializes
// writers at BEGIN IMMEDIATE instead.
func (d Dialect) ForUpdate() string {
	if d == DialectMySQL {
		return " FOR UPDATE"
	}
	return ""
}

// IsUniqueViolation reports duplicate-key failures from either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Numeric wraps a decimal column for numeric comparison. SQLite stores
// prices as TEXT and would otherwise compare them lexically.
func (d Dialect) Numeric(col string) string {
	if d == DialectMySQL {
		return col
	}
	return "CAST(" + col + " AS REAL)"
}
