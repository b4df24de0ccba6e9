package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureQueueCreatesOnFirstSight(t *testing.T) {
	pools := make(map[string]*queueActivity)
	q := ensureQueue(pools, "reports", "2026-08-01T00:00:00Z")
	require.NotNil(t, q)
	assert.Equal(t, "2026-08-01T00:00:00Z", q.CreationDate)
	assert.Same(t, q, pools["reports"])
}

func TestEnsureQueueReturnsExistingWithoutOverwritingCreationDate(t *testing.T) {
	pools := map[string]*queueActivity{
		"reports": {CreationDate: "2026-08-01T00:00:00Z"},
	}
	q := ensureQueue(pools, "reports", "2026-08-01T01:00:00Z")
	assert.Equal(t, "2026-08-01T00:00:00Z", q.CreationDate)
}

func TestEnsureQueueIgnoresEmptyName(t *testing.T) {
	pools := make(map[string]*queueActivity)
	assert.Nil(t, ensureQueue(pools, "", "now"))
	assert.Empty(t, pools)
}

func TestRemoveExecutingDropsMatchingEntry(t *testing.T) {
	q := &queueActivity{Executing: []executingEntry{
		{FuncName: "a"}, {FuncName: "b"}, {FuncName: "c"},
	}}
	removeExecuting(q, "b")
	assert.Equal(t, []executingEntry{{FuncName: "a"}, {FuncName: "c"}}, q.Executing)
}

func TestRemoveExecutingNoopWhenNotFound(t *testing.T) {
	q := &queueActivity{Executing: []executingEntry{{FuncName: "a"}}}
	removeExecuting(q, "missing")
	assert.Equal(t, []executingEntry{{FuncName: "a"}}, q.Executing)
}

func TestCmdShowActivityAggregatesLifecycleEvents(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/activity.json.log"
	lines := `{"time":"2026-08-01T00:00:00Z","activity":{"action":"START"}}
{"time":"2026-08-01T00:00:01Z","activity":{"action":"CREATE_QUEUE","queue":"reports"}}
{"time":"2026-08-01T00:00:02Z","activity":{"action":"SET_QUEUE_MAX","queue":"reports","max":4}}
{"time":"2026-08-01T00:00:03Z","activity":{"action":"EVENT_JOB_LAUNCHING","queue":"reports","func_name":"build"}}
{"time":"2026-08-01T00:00:04Z","activity":{"action":"EVENT_JOB_EXECUTED","queue":"reports","func_name":"build"}}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))

	err := cmdShowActivity([]string{"-file", path})
	require.NoError(t, err)
}
