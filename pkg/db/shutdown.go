package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a function that gracefully closes the database connection
// pool. Pass it to frestq.Node.OnShutdown so the pool closes after the
// scheduler has drained in-flight jobs.
//
// Example:
//
//	node.OnShutdown(db.Shutdown(pool))
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}
