package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Open a Postgres connection for the dbtool. The runtime service runs
// on SQLite; this path exists for deployments that keep the dispatch
// schema on a shared database. The pool is sized for one-shot schema
// and seed work, not for serving traffic.
func Open(databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	conn.SetMaxOpenConns(2)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return conn, nil
}
