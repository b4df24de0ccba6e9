// Package db wraps [github.com/jackc/pgx/v5/pgxpool] with the connection
// pooling, health checks, and migration plumbing a frestq node needs around
// its single shared Postgres pool (task/message storage plus River's queue
// tables), with startup retry so a node doesn't fail hard on a database that
// is still coming up alongside it in a compose/k8s rollout.
//
// # Configuration
//
// [Config] (see config.go) is loaded from environment variables:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 5)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//
// # Usage
//
// Basic connection setup with functional options:
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/sequentech/frestq-go/pkg/db"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		pool, err := db.Open(ctx, os.Getenv("DATABASE_CONN_URL"),
//			db.WithMaxConns(10),
//			db.WithMinConns(5),
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer pool.Close()
//	}
//
// # Health Checks
//
// The package has no health-check helper of its own; a readiness endpoint
// can ping the pool that [Open] returns:
//
//	import (
//		"net/http"
//
//		"github.com/jackc/pgx/v5/pgxpool"
//	)
//
//	func healthHandler(pool *pgxpool.Pool) http.HandlerFunc {
//		return func(w http.ResponseWriter, r *http.Request) {
//			if err := pool.Ping(r.Context()); err != nil {
//				w.WriteHeader(http.StatusServiceUnavailable)
//				return
//			}
//			w.WriteHeader(http.StatusOK)
//		}
//	}
//
// # Transactions
//
// The [WithTx] helper provides automatic transaction management with rollback on error:
//
//	import (
//		"context"
//
//		"github.com/sequentech/frestq-go/pkg/db"
//	)
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		// Execute queries using tx
//		return tx.QueryRow(ctx, "SELECT 1").Scan(&result)
//	})
//	if err != nil {
//		// Transaction was rolled back automatically
//	}
//
// # Migrations
//
// store.Migrations (pkg/store's embedded schema, covering the task and
// message tables) is applied once at node startup through [Migrate]:
//
//	import (
//		"context"
//		"log/slog"
//
//		"github.com/sequentech/frestq-go/pkg/db"
//		"github.com/sequentech/frestq-go/pkg/store"
//	)
//
//	err := db.Migrate(ctx, pool, store.Migrations, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//
//   - [ErrFailedToParseDBConfig] - Invalid connection string format
//   - [ErrFailedToOpenDBConnection] - Connection failed after all retries
//   - [ErrHealthcheckFailed] - Database ping failed
//   - [ErrSetDialect] - Migration dialect configuration error
//   - [ErrApplyMigrations] - Migration execution failed
//
// Errors are wrapped using [errors.Join] to preserve the original error context.
package db
