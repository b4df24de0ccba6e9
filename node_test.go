package frestq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sequentech/frestq-go/pkg/db"
)

func TestNodeOptionsDefaultShutdownTimeout(t *testing.T) {
	o := &nodeOptions{shutdownTimeout: 30 * time.Second}
	WithShutdownTimeout(0)(o)
	assert.Equal(t, 30*time.Second, o.shutdownTimeout)
}

func TestWithShutdownTimeoutOverridesWhenPositive(t *testing.T) {
	o := &nodeOptions{shutdownTimeout: 30 * time.Second}
	WithShutdownTimeout(5 * time.Second)(o)
	assert.Equal(t, 5*time.Second, o.shutdownTimeout)
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	o := &nodeOptions{}
	WithLogger(nil)(o)
	assert.Nil(t, o.logger)
}

func TestWithDBOptionsAccumulates(t *testing.T) {
	o := &nodeOptions{}
	WithDBOptions(db.WithMaxConns(5))(o)
	WithDBOptions(db.WithMinConns(1), db.WithRetry(1, time.Second))(o)
	assert.Len(t, o.dbOpts, 3)
}
