// Package store implements the relational persistence layer for frestq's
// two tables, task and message.
//
// The schema is the Go-native reconstruction of the original SQLAlchemy
// models: every task tree node (simple, sequential, parallel, synchronized,
// external) is one row in task, and every wire message sent or received is
// one row in message, foreign-keyed to the task it belongs to. Both tables
// carry JSONB blob columns for the protocol's free-form data payloads.
//
// Store wraps a *pgxpool.Pool and exposes typed CRUD plus the small set of
// queries the task engine and protocol handlers need (children, siblings,
// next/prev sibling, unfinished-subtask counts). It never caches rows in
// memory: every navigation call round-trips to Postgres, so a task handle
// never carries a stale pointer to a sibling.
package store
