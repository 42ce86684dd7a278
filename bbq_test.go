package bbq

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishav/bbq/internal/backoff"
)

func TestNewPanicsOnInvalidGeometry(t *testing.T) {
	assert.Panics(t, func() { New[int](1, 4) }, "blockNum below 2 must panic")
	assert.Panics(t, func() { New[int](3, 4) }, "non-power-of-two blockNum must panic")
	assert.Panics(t, func() { New[int](4, 3) }, "non-power-of-two slotNum must panic")
}

func TestCapacity(t *testing.T) {
	q := New[int](4, 1024)
	assert.Equal(t, 4096, q.Capacity())
}

func TestSmokePushPopFIFO(t *testing.T) {
	q := New[int](2, 4)

	for i := 0; i < 6; i++ {
		require.NoError(t, q.Push(i))
	}

	for i := 0; i < 6; i++ {
		v, ok := q.Pop()
		require.True(t, ok, "pop %d should succeed", i)
		assert.Equal(t, i, v, "FIFO order violated at position %d", i)
	}

	_, ok := q.Pop()
	assert.False(t, ok, "queue should be empty after draining everything pushed")
}

func TestPopOnEmptyQueueReturnsZeroValue(t *testing.T) {
	q := New[string](2, 4)

	v, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestPushReturnsErrFullAtCapacity(t *testing.T) {
	q := New[int](2, 4)
	capacity := q.Capacity()

	for i := 0; i < capacity; i++ {
		require.NoError(t, q.Push(i))
	}

	err := q.Push(capacity)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFull))
}

func TestRoundTripPreservesValues(t *testing.T) {
	q := New[int](4, 16)
	const n = 64

	for i := 0; i < n; i++ {
		require.NoError(t, q.Push(i*7))
	}

	seen := make([]int, 0, n)
	for i := 0; i < n; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		seen = append(seen, v)
	}

	for i, v := range seen {
		assert.Equal(t, i*7, v)
	}
}

func TestPushPopInterleavedAcrossBlockBoundary(t *testing.T) {
	// blockNum=2, slotNum=4: pushing 5 values forces advanceHead across
	// the block boundary while the first value is still unconsumed.
	q := New[int](2, 4)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push(i))
	}

	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestLenIsEmptyIsFullHints(t *testing.T) {
	q := New[int](2, 4)

	assert.True(t, q.IsEmpty())
	assert.False(t, q.IsFull())
	assert.Equal(t, 0, q.Len())

	for i := 0; i < q.Capacity(); i++ {
		require.NoError(t, q.Push(i))
	}

	assert.False(t, q.IsEmpty())
	assert.True(t, q.IsFull())
	assert.Equal(t, q.Capacity(), q.Len())
}

func TestWithBackoffPolicyOption(t *testing.T) {
	custom := backoff.Policy{SpinLimit: 1, YieldLimit: 1, MaxSleep: time.Microsecond}
	q := New[int](2, 4, WithBackoffPolicy(custom))
	assert.Equal(t, custom, q.backoffPolicy)
}
