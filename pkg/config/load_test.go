package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "postgres://localhost:5432/frestq")
	t.Setenv("ROOT_URL", "http://127.0.0.1:5000/api/queues")
	t.Setenv("RESERVATION_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/frestq", cfg.Store.ConnectionString)
	assert.Equal(t, "http://127.0.0.1:5000/api/queues", cfg.Transport.RootURL)
	assert.Equal(t, "X-Sender-SSL-Certificate", cfg.Transport.ProxyCertHeader)
	assert.True(t, cfg.Transport.StripProxyHeaderTabs)
	assert.Equal(t, 90*time.Second, cfg.Scheduler.ReservationTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.MisfireGrace)
}

func TestLoadRequiresRootURL(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "postgres://localhost:5432/frestq")

	_, err := Load()
	assert.Error(t, err)
}
