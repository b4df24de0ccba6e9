// Package frestq wires a federated task-queue node: the store, the
// (action, queue) registry, the scheduler worker pool, the transport client
// and inbound intake handler, the task engine, and the synchronization
// protocol coordinator, composed the way the teacher's App composed its own
// subsystems in app.go/run.go before those files were trimmed in favor of a
// framework with no page-routing concern.
package frestq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sequentech/frestq-go/pkg/config"
	"github.com/sequentech/frestq-go/pkg/db"
	"github.com/sequentech/frestq-go/pkg/health"
	"github.com/sequentech/frestq-go/pkg/logger"
	"github.com/sequentech/frestq-go/pkg/protocol"
	"github.com/sequentech/frestq-go/pkg/registry"
	"github.com/sequentech/frestq-go/pkg/scheduler"
	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/task"
	"github.com/sequentech/frestq-go/pkg/transport"
)

// Node is a running frestq peer: the pieces in pkg/store, pkg/registry,
// pkg/scheduler, pkg/transport, pkg/task and pkg/protocol composed together.
// Apart from shutdown hooks added with OnShutdown, a Node is immutable after
// New returns - all configuration happens through Option and the Config it's
// built from.
type Node struct {
	Store     *store.Store
	Registry  *registry.Registry
	Scheduler *scheduler.Scheduler
	Transport *transport.Client
	Inbound   *transport.Handler
	Task      *task.Engine
	Protocol  *protocol.Coordinator

	logger          *slog.Logger
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// Option configures a Node at construction time.
type Option func(*nodeOptions)

type nodeOptions struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	dbOpts          []db.Option
}

// WithLogger sets the logger propagated to every subsystem.
func WithLogger(l *slog.Logger) Option {
	return func(o *nodeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for the scheduler to drain
// in-flight jobs before returning.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *nodeOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithDBOptions passes through pool-tuning options to db.Open, for callers
// that need something beyond cfg.Store's defaults (e.g. a test logger).
func WithDBOptions(opts ...db.Option) Option {
	return func(o *nodeOptions) { o.dbOpts = append(o.dbOpts, opts...) }
}

// New opens the database pool, applies migrations, and wires every
// subsystem together. The registry is populated by the caller via
// n.Task.RegisterTask / n.Registry.RegisterMessage before n.Scheduler.Start
// (called from Run) — queues are only created for actions registered by
// that point, matching QUEUES_OPTIONS being read once at scheduler startup
// in the original.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Node, error) {
	o := &nodeOptions{shutdownTimeout: 30 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	log := o.logger
	if log == nil {
		activityCfg := logger.ActivityConfig{FilePath: cfg.ActivityLogPath}
		if cfg.Sentry.DSN != "" {
			log = logger.NewWithSentryAndActivityLog(cfg.Sentry, activityCfg,
				logger.TaskIDExtractor, logger.QueueNameExtractor, logger.PeerURLExtractor)
		} else {
			log = logger.NewWithActivityLog(activityCfg,
				logger.TaskIDExtractor, logger.QueueNameExtractor, logger.PeerURLExtractor)
		}
	}

	dbOpts := append([]db.Option{
		db.WithMigrations(store.Migrations),
		db.WithLogger(log),
		db.WithMaxConns(cfg.Store.MaxOpenConns),
		db.WithMinConns(cfg.Store.MinConns),
		db.WithHealthCheckPeriod(cfg.Store.HealthCheckPeriod),
		db.WithMaxConnIdleTime(cfg.Store.MaxConnIdleTime),
		db.WithMaxConnLifetime(cfg.Store.MaxConnLifetime),
	}, o.dbOpts...)

	pool, err := db.Open(ctx, cfg.Store.ConnectionString, dbOpts...)
	if err != nil {
		return nil, fmt.Errorf("frestq: open database: %w", err)
	}
	if err := db.Migrate(ctx, pool, store.Migrations, log); err != nil {
		return nil, fmt.Errorf("frestq: migrate database: %w", err)
	}

	st := store.New(pool, store.WithLogger(log))
	reg := registry.New()

	sch, err := scheduler.New(pool, reg,
		scheduler.WithLogger(log),
		scheduler.WithMaxWorkers(cfg.Scheduler.MaxWorkers),
		scheduler.WithMisfireGrace(cfg.Scheduler.MisfireGrace),
	)
	if err != nil {
		return nil, fmt.Errorf("frestq: build scheduler: %w", err)
	}

	tr, err := transport.NewClient(cfg.Transport, st, log)
	if err != nil {
		return nil, fmt.Errorf("frestq: build transport client: %w", err)
	}
	inbound := transport.NewHandler(st, reg, sch, cfg.Transport, log)

	eng := task.NewEngine(st, reg, sch, tr, cfg.Transport.RootURL, log)

	coord := protocol.New(eng, reg, sch, cfg.Scheduler.ReservationTimeout, log)
	if err := coord.Register(); err != nil {
		return nil, fmt.Errorf("frestq: register protocol handlers: %w", err)
	}

	n := &Node{
		Store:           st,
		Registry:        reg,
		Scheduler:       sch,
		Transport:       tr,
		Inbound:         inbound,
		Task:            eng,
		Protocol:        coord,
		logger:          log,
		shutdownTimeout: o.shutdownTimeout,
	}
	n.OnShutdown(func(context.Context) error {
		pool.Close()
		return nil
	})
	return n, nil
}

// OnShutdown registers a cleanup function run, in registration order, during
// Run's graceful shutdown.
func (n *Node) OnShutdown(fn func(context.Context) error) {
	n.shutdownHooks = append(n.shutdownHooks, fn)
}

// Mount registers the inbound queue intake route on r, under whatever prefix
// the caller chooses (the original mounts it at /api/queues/<queue_name>/).
// A host application owns its own HTTP server; frestq only owns this route.
func (n *Node) Mount(r chi.Router) {
	n.Inbound.Mount(r)
}

// HealthChecks returns readiness checks for the store's connection pool and
// the scheduler's started state, for use with pkg/health.ReadinessHandler.
func (n *Node) HealthChecks() health.Checks {
	return health.Checks{
		"store":     func(ctx context.Context) error { return n.Store.Pool().Ping(ctx) },
		"scheduler": n.Scheduler.Healthcheck,
	}
}

// Run starts the scheduler's worker pool and blocks until ctx is cancelled
// or a SIGINT/SIGTERM arrives, then drains in-flight jobs and runs the
// registered shutdown hooks, mirroring the teacher's App.Run signal-handling
// shape without the HTTP-server half that no longer applies.
func (n *Node) Run(ctx context.Context) error {
	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	n.logger.Info("scheduler starting")
	if err := n.Scheduler.Start(runCtx); err != nil {
		return fmt.Errorf("frestq: start scheduler: %w", err)
	}

	<-runCtx.Done()
	n.logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), n.shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := n.Scheduler.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range n.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			n.logger.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	n.logger.Info("shutdown complete")
	return nil
}
