package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/sequentech/frestq-go/pkg/registry"
)

// InternalQueue is the reserved queue frestq's own protocol handlers run on,
// matching original_source/frestq/fscheduler.py's INTERNAL_SCHEDULER_NAME.
const InternalQueue = "internal.frestq"

const (
	defaultMaxWorkers    = 10
	defaultMisfireGrace  = 24 * time.Hour
)

// Scheduler is the per-queue worker pool, one River queue per frestq queue
// name with at least one registered handler.
type Scheduler struct {
	pool          *pgxpool.Pool
	client        *river.Client[pgx.Tx]
	funcs         *funcRegistry
	logger        *slog.Logger
	misfireGrace  time.Duration

	mu      sync.Mutex
	started bool
}

// Option configures a Scheduler.
type Option func(*config)

type config struct {
	logger        *slog.Logger
	queueWorkers  map[string]int
	maxWorkers    int
	misfireGrace  time.Duration
}

// WithLogger sets the scheduler's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithQueueWorkers overrides the worker count for a specific queue, the
// equivalent of QUEUES_OPTIONS[queue]['max_threads'] in the original.
func WithQueueWorkers(queue string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queueWorkers[queue] = workers
		}
	}
}

// WithMaxWorkers sets the default worker count applied to queues without an
// explicit override. Defaults to 10.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithMisfireGrace overrides the default 24h grace period past which a
// SubmitNow job is skipped instead of run late.
func WithMisfireGrace(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.misfireGrace = d
		}
	}
}

// New builds a Scheduler with one River queue per name in reg.Queues(),
// plus the reserved internal protocol queue.
func New(pool *pgxpool.Pool, reg *registry.Registry, opts ...Option) (*Scheduler, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &config{
		queueWorkers: make(map[string]int),
		maxWorkers:   defaultMaxWorkers,
		misfireGrace: defaultMisfireGrace,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	queueNames := reg.Queues()
	queueNames = append(queueNames, InternalQueue)

	queues := make(map[string]river.QueueConfig, len(queueNames))
	for _, name := range queueNames {
		workers := cfg.maxWorkers
		if n, ok := cfg.queueWorkers[name]; ok {
			workers = n
		}
		queues[name] = river.QueueConfig{MaxWorkers: workers}
		cfg.logger.Info(fmt.Sprintf(`{"action":"CREATE_QUEUE","queue":%q}`, name))
		if n, ok := cfg.queueWorkers[name]; ok {
			cfg.logger.Info(fmt.Sprintf(`{"action":"SET_QUEUE_MAX","queue":%q,"max":%d}`, name, n))
		}
	}

	s := &Scheduler{
		pool:         pool,
		funcs:        newFuncRegistry(),
		logger:       cfg.logger,
		misfireGrace: cfg.misfireGrace,
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &jobWorker{scheduler: s})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  queues,
		Workers: workers,
		Logger:  cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: create client: %w", err)
	}
	s.client = client

	return s, nil
}

// RegisterFunc exposes the scheduler's internal function registry for
// protocol handlers and the task engine to submit work against.
func (s *Scheduler) RegisterFunc(name string, fn Func) {
	s.funcs.register(name, fn)
}

// Start begins processing jobs across every configured queue.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: start: %w", err)
	}
	s.started = true
	s.logger.Info(`{"action":"START"}`)
	return nil
}

// Stop waits for in-flight jobs and shuts every queue down.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("scheduler: stop: %w", err)
	}
	s.started = false
	return nil
}

// Healthcheck reports whether the scheduler is started and its pool reachable.
func (s *Scheduler) Healthcheck(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
	}
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// SubmitNow enqueues fnName to run as soon as a worker is free, the
// equivalent of add_now_job. If the job is still unprocessed after the
// scheduler's misfire grace period (24h by default), the worker skips it
// instead of running it late.
func (s *Scheduler) SubmitNow(ctx context.Context, tx pgx.Tx, queue, fnName string, args any) error {
	expiry := time.Now().Add(s.misfireGrace)
	return s.submit(ctx, tx, queue, fnName, args, nil, &expiry)
}

// SubmitAt enqueues fnName to run no earlier than at, the equivalent of
// add_date_job.
func (s *Scheduler) SubmitAt(ctx context.Context, tx pgx.Tx, queue, fnName string, at time.Time, args any) error {
	return s.submit(ctx, tx, queue, fnName, args, &at, nil)
}

func (s *Scheduler) submit(ctx context.Context, tx pgx.Tx, queue, fnName string, args any, scheduledAt, expiry *time.Time) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return errors.Join(ErrInvalidArgs, err)
	}

	jobArgs := &jobArgs{FuncName: fnName, Args: raw, Expiry: expiry}
	insertOpts := &river.InsertOpts{Queue: queue}
	if scheduledAt != nil {
		insertOpts.ScheduledAt = *scheduledAt
	}

	if tx != nil {
		_, err = s.client.InsertTx(ctx, tx, jobArgs, insertOpts)
	} else {
		_, err = s.client.Insert(ctx, jobArgs, insertOpts)
	}
	if err != nil {
		return fmt.Errorf("scheduler: submit %s: %w", fnName, err)
	}
	return nil
}

// jobArgs is the single River job kind carrying every frestq scheduler
// submission, mirroring the teacher's forgeTaskArgs unified envelope.
type jobArgs struct {
	FuncName string          `json:"func_name"`
	Args     json.RawMessage `json:"args,omitempty"`
	Expiry   *time.Time      `json:"expiry,omitempty"`
}

func (jobArgs) Kind() string { return "frestq:job" }

type jobWorker struct {
	river.WorkerDefaults[jobArgs]
	scheduler *Scheduler
}

func isExpired(expiry *time.Time, now time.Time) bool {
	return expiry != nil && now.After(*expiry)
}

func (w *jobWorker) Work(ctx context.Context, job *river.Job[jobArgs]) error {
	if isExpired(job.Args.Expiry, time.Now()) {
		w.scheduler.logger.WarnContext(ctx, "skipping expired job",
			slog.String("func", job.Args.FuncName),
			slog.Int64("job_id", job.ID),
			slog.Time("expiry", *job.Args.Expiry),
		)
		w.scheduler.logger.InfoContext(ctx, fmt.Sprintf(`{"action":"EVENT_JOB_MISSED","queue":%q,"func_name":%q}`,
			job.Queue, job.Args.FuncName))
		return nil
	}

	fn, ok := w.scheduler.funcs.get(job.Args.FuncName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFunc, job.Args.FuncName)
	}

	w.scheduler.logger.InfoContext(ctx, fmt.Sprintf(`{"action":"EVENT_JOB_LAUNCHING","queue":%q,"func_name":%q}`,
		job.Queue, job.Args.FuncName))

	if err := fn(ctx, job.Args.Args); err != nil {
		w.scheduler.logger.ErrorContext(ctx, "job failed",
			slog.String("func", job.Args.FuncName),
			slog.Int64("job_id", job.ID),
			slog.Any("error", err),
		)
		w.scheduler.logger.InfoContext(ctx, fmt.Sprintf(`{"action":"EVENT_JOB_ERROR","queue":%q,"func_name":%q}`,
			job.Queue, job.Args.FuncName))
		return err
	}
	w.scheduler.logger.InfoContext(ctx, fmt.Sprintf(`{"action":"EVENT_JOB_EXECUTED","queue":%q,"func_name":%q}`,
		job.Queue, job.Args.FuncName))
	return nil
}
