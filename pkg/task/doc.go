// Package task implements the task engine: the five task-tree node types
// (simple, sequential, parallel, synchronized, external) and the state
// machine each drives through created -> sent/syncing -> reserved ->
// confirmed -> executing -> finished/error.
//
// Every type is grounded on original_source/frestq/tasks.py's BaseTask and
// its five subclasses (SimpleTask, SequentialTask, ParallelTask,
// SynchronizedTask, ExternalTask). A Handle wraps a *store.Task row; every
// navigation method (GetParent, GetChildren, GetSiblings, GetPrev, GetNext)
// is a fresh store query, never a cached in-memory pointer, so a handle kept
// across an Execute call never observes a stale sibling.
package task
