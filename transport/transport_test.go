package transport

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_String(t *testing.T) {
	tests := []struct {
		result   Result
		expected string
	}{
		{ResultSuccess, "success"},
		{ResultCongested, "congested"},
		{ResultAdminPause, "admin_pause"},
		{ResultNotConnected, "not_connected"},
		{ResultClosed, "closed"},
		{ResultError, "error"},
		{Result(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.result.String())
		})
	}
}

func TestConnect_UnsupportedScheme(t *testing.T) {
	_, err := Connect(context.Background(), Config{URI: "kafka://broker:9092"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport scheme")
}

func TestBatchCursor_ResumesAtFirstUnacceptedBuffer(t *testing.T) {
	var offered []int
	congestedOnce := true

	offerOne := func(i int) Result {
		offered = append(offered, i)
		if i == 1 && congestedOnce {
			congestedOnce = false
			return ResultCongested
		}
		return ResultSuccess
	}

	c := &batchCursor{}

	// First pass: buffer 0 accepted, buffer 1 backpressured
	r := c.offer(3, offerOne)
	require.Equal(t, ResultCongested, r)
	assert.Equal(t, []int{0, 1}, offered)

	// Re-offer resumes at buffer 1; buffer 0 is never duplicated
	r = c.offer(3, offerOne)
	require.Equal(t, ResultSuccess, r)
	assert.Equal(t, []int{0, 1, 1, 2}, offered)

	// Cursor resets for the next batch
	offered = nil
	r = c.offer(2, offerOne)
	require.Equal(t, ResultSuccess, r)
	assert.Equal(t, []int{0, 1}, offered)
}

func TestMapNATSError(t *testing.T) {
	assert.Equal(t, ResultClosed, mapNATSError(nats.ErrConnectionClosed))
	assert.Equal(t, ResultAdminPause, mapNATSError(nats.ErrConnectionDraining))
	assert.Equal(t, ResultCongested, mapNATSError(nats.ErrReconnectBufExceeded))
	assert.Equal(t, ResultCongested, mapNATSError(nats.ErrTimeout))
	assert.Equal(t, ResultError, mapNATSError(assert.AnError))
}
