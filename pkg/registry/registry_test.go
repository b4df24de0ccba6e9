package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()

	handler := func() {}
	require.NoError(t, r.RegisterTask("do_work", "jobs", handler))

	entry, ok := r.Lookup("do_work", "jobs")
	require.True(t, ok)
	assert.True(t, entry.IsTask)
	assert.Equal(t, "do_work", entry.Action)
	assert.Equal(t, "jobs", entry.Queue)

	assert.ElementsMatch(t, []string{"jobs"}, r.Queues())
}

func TestRegisterDuplicateRejected(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterMessage("ping", "default", func() {}))

	err := r.RegisterMessage("ping", "default", func() {})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestLookupMissing(t *testing.T) {
	r := New()
	_, ok := r.Lookup("missing", "default")
	assert.False(t, ok)
}

func TestSameActionDifferentQueuesAllowed(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterTask("run", "a", func() {}))
	require.NoError(t, r.RegisterTask("run", "b", func() {}))

	assert.ElementsMatch(t, []string{"a", "b"}, r.Queues())
}
