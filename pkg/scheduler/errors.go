package scheduler

import "errors"

var (
	ErrPoolRequired     = errors.New("scheduler: pool is required")
	ErrUnknownFunc      = errors.New("scheduler: unknown function")
	ErrInvalidArgs      = errors.New("scheduler: invalid job arguments")
	ErrAlreadyStarted   = errors.New("scheduler: already started")
	ErrNotStarted       = errors.New("scheduler: not started")
	ErrHealthcheckFailed = errors.New("scheduler: healthcheck failed")
)
