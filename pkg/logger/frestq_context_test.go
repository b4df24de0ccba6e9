package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskIDExtractorReturnsFalseWhenAbsent(t *testing.T) {
	_, ok := TaskIDExtractor(context.Background())
	assert.False(t, ok)
}

func TestTaskIDExtractorReturnsAttrWhenPresent(t *testing.T) {
	ctx := WithTaskID(context.Background(), "t-123")
	attr, ok := TaskIDExtractor(ctx)
	assert.True(t, ok)
	assert.Equal(t, "task_id", attr.Key)
	assert.Equal(t, "t-123", attr.Value.String())
}

func TestQueueNameExtractorReturnsAttrWhenPresent(t *testing.T) {
	ctx := WithQueueName(context.Background(), "app")
	attr, ok := QueueNameExtractor(ctx)
	assert.True(t, ok)
	assert.Equal(t, "queue", attr.Key)
	assert.Equal(t, "app", attr.Value.String())
}

func TestPeerURLExtractorReturnsFalseForEmptyString(t *testing.T) {
	ctx := WithPeerURL(context.Background(), "")
	_, ok := PeerURLExtractor(ctx)
	assert.False(t, ok)
}

func TestPeerURLExtractorReturnsAttrWhenPresent(t *testing.T) {
	ctx := WithPeerURL(context.Background(), "https://node-b.example")
	attr, ok := PeerURLExtractor(ctx)
	assert.True(t, ok)
	assert.Equal(t, "https://node-b.example", attr.Value.String())
}
