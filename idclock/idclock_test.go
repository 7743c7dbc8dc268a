package idclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_NextIDStrictlyIncreasing(t *testing.T) {
	src, err := NewSnowflake(7)
	require.NoError(t, err)

	prev := src.NextID()
	for i := 0; i < 10000; i++ {
		id := src.NextID()
		require.Greater(t, id, prev, "ids must be strictly increasing")
		prev = id
	}
}

func TestSnowflake_NowAdvances(t *testing.T) {
	src, err := NewSnowflake(1)
	require.NoError(t, err)

	a := src.Now()
	b := src.Now()
	assert.GreaterOrEqual(t, b, a)
	assert.Positive(t, a)
}

func TestNewSnowflake_RejectsOutOfRangeBlockID(t *testing.T) {
	_, err := NewSnowflake(1 << 20)
	assert.Error(t, err)
}
