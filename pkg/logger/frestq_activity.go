package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig controls optional Sentry error reporting.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which log levels are forwarded to Sentry as plain
	// logs (errors always raise an Issue regardless of this setting).
	MinLevel slog.Level
}

// ActivityConfig controls where per-task activity events are recorded,
// independent of the regular application log stream.
type ActivityConfig struct {
	// FilePath is the destination for activity.json.log style output. Empty
	// disables activity logging.
	FilePath string
}

// NewWithActivityLog creates a logger that writes normal logs to stdout and,
// when cfg.FilePath is set, additionally appends an activity.json.log style
// JSONL stream recording task lifecycle events. If the file can't be opened,
// activity logging is dropped and stdout logging continues uninterrupted.
func NewWithActivityLog(cfg ActivityConfig, extractors ...ContextExtractor) *slog.Logger {
	stdoutHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	if cfg.FilePath == "" {
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.New(stdoutHandler).Error("failed to open activity log", slog.String("error", fmt.Sprintf("%v", err)))
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	combined := newMultiHandler(stdoutHandler, NewActivityHandler(f))
	return slog.New(NewLogHandlerDecorator(combined, extractors...))
}

// NewWithSentryAndActivityLog is NewWithActivityLog plus Sentry reporting.
// node.go picks this over NewWithActivityLog whenever sentryCfg.DSN is set;
// either sink is independently optional, and with both configured a
// handler's error is simultaneously recorded in the task's own
// activity.json.log, raised as a Sentry issue, and written to stdout.
func NewWithSentryAndActivityLog(sentryCfg SentryConfig, activityCfg ActivityConfig, extractors ...ContextExtractor) *slog.Logger {
	stdoutHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	handlers := []slog.Handler{stdoutHandler}

	if sentryCfg.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         sentryCfg.DSN,
			Environment: sentryCfg.Environment,
			EnableLogs:  true,
		}); err != nil {
			slog.New(stdoutHandler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
			if sentryCfg.MinLevel == slog.LevelError {
				logLevel = []slog.Level{slog.LevelError}
			}
			handlers = append(handlers, sentryslog.Option{
				EventLevel: []slog.Level{slog.LevelError},
				LogLevel:   logLevel,
			}.NewSentryHandler(context.Background()))
		}
	}

	if activityCfg.FilePath != "" {
		if f, err := os.OpenFile(activityCfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
			slog.New(stdoutHandler).Error("failed to open activity log", slog.String("error", fmt.Sprintf("%v", err)))
		} else {
			handlers = append(handlers, NewActivityHandler(f))
		}
	}

	if len(handlers) == 1 {
		return slog.New(NewLogHandlerDecorator(handlers[0], extractors...))
	}
	return slog.New(NewLogHandlerDecorator(newMultiHandler(handlers...), extractors...))
}
