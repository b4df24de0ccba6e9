// Package scheduler implements frestq's per-queue worker pool on top of
// River, a Postgres-native job queue.
//
// Every frestq queue name becomes a River queue with its own MaxWorkers,
// mirroring original_source/frestq/fscheduler.py's FScheduler: one APScheduler
// thread pool per queue_name, sized from QUEUES_OPTIONS[queue]['max_threads'].
// Registering any action handler on a queue (pkg/registry) reserves that
// queue's pool the same way the original's @task/@message_action decorators
// call FScheduler.reserve_scheduler at decoration time.
//
// SubmitNow and SubmitAt map directly to add_now_job and add_date_job.
// SubmitNow jobs that sit unprocessed past the configured misfire grace
// period (24h by default, matching add_now_job's default
// misfire_grace_time) are skipped rather than run late; the worker logs the
// skip instead of executing stale work.
//
// River's own river_job/river_leader/river_queue tables are infrastructure
// for this component, not part of frestq's two-table domain schema (see
// pkg/store) — the scheduler pool and the store are separate components.
package scheduler
