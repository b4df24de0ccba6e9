package db

import "errors"

// Sentinel errors returned by Open and Migrate. node.go wraps both with
// fmt.Errorf("frestq: ...: %w") rather than handling them individually —
// a node that can't reach its store or apply pending task/message
// migrations has nothing useful left to do but fail startup.
var (
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrSetDialect               = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("db migrator: failed to apply migrations")
)
