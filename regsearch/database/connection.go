package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Variable substitution to support testing.
var LogFatal = log.Fatal

// Connection opens a pooled database/sql connection through the pgx stdlib
// driver, configured from the environment.
func Connection() *sql.DB {
	cfg, err := LoadConfig()
	if err != nil {
		LogFatal(err)
		return nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		LogFatal(err)
		return nil
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := db.Ping(); err != nil {
		LogFatal(err)
		return nil
	}

	return db
}

// Pool opens a native pgx connection pool for callers that bypass
// database/sql.
func Pool(ctx context.Context) *pgxpool.Pool {
	cfg, err := LoadConfig()
	if err != nil {
		LogFatal(err)
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		LogFatal(err)
		return nil
	}

	if err := pool.Ping(ctx); err != nil {
		LogFatal(err)
		return nil
	}

	return pool
}
