package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequentech/frestq-go/pkg/registry"
	"github.com/sequentech/frestq-go/pkg/task"
)

func TestNewDefaultsTimeoutWhenZero(t *testing.T) {
	c := New(&task.Engine{}, registry.New(), nil, 0, nil)
	require.NotNil(t, c)
	assert.Equal(t, 60*time.Second, c.timeout)
	assert.NotNil(t, c.logger)
	assert.NotNil(t, c.cond)
}

func TestNewKeepsExplicitTimeout(t *testing.T) {
	c := New(&task.Engine{}, registry.New(), nil, 5*time.Second, nil)
	assert.Equal(t, 5*time.Second, c.timeout)
}
