package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/sequentech/frestq-go/pkg/logger"
)

// Config aggregates every environment-driven concern a frestq node needs.
type Config struct {
	Store     StoreConfig
	Transport TransportConfig
	Scheduler SchedulerConfig

	// Sentry forwards warnings and errors raised while running task handlers
	// to Sentry alongside stdout. Leaving DSN empty disables it.
	Sentry logger.SentryConfig

	// ActivityLogPath is where task lifecycle events are appended as JSONL,
	// mirroring the original's activity.json.log under ROOT_PATH. Empty
	// disables the activity log; only stdout logging runs.
	ActivityLogPath string `env:"ACTIVITY_LOG_PATH"`
}

// Load parses Config from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	return &cfg, nil
}
