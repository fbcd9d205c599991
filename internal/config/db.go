package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "fumotion/internal/db"

	"go.uber.org/zap"
)

// OpenDB opens, tunes and pings the database for env, then applies the schema.
func OpenDB(ctx context.Context, env Env, log *zap.Logger) (*sql.DB, intdb.Dialect, error) {
	dialect, err := intdb.ParseDialect(env.DBDriver)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(dialect.DriverName(), env.DBDSN)
	if err != nil {
		return nil, "", fmt.Errorf("open db: %w", err)
	}

	if dialect == intdb.DialectSQLite {
		// one writer connection keeps BEGIN IMMEDIATE transactions strictly serialized
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(env.DBMaxOpenConns)
		db.SetMaxIdleConns(env.DBMaxOpenConns)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping db: %w", err)
	}

	created, err := intdb.Migrate(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, "", err
	}
	if len(created) > 0 {
		log.Info("schema created", zap.Strings("tables", created))
	}

	log.Info("database connected", zap.String("driver", string(dialect)))
	return db, dialect, nil
}
