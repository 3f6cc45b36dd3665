package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tablekeep/pkg/logger"

	_ "github.com/lib/pq"
)

const (
	pingAttempts = 5
	pingBackoff  = 2 * time.Second
)

// Connect opens the Postgres pool and waits for it to answer. The retry is
// for startup only; store operations never retry.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", pingBackoff, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(pingBackoff):
		}
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", pingAttempts, err)
}
