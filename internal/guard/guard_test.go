package guard

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu    sync.Mutex
	latch Latch
	n     int
}

func (c *counter) add(fn func(n int) int) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.latch.Err(); err != nil {
		return err
	}
	defer c.latch.Recover(&err)

	c.n = fn(c.n)
	return nil
}

func TestLatch_HealthyUntilPanic(t *testing.T) {
	c := &counter{}

	require.NoError(t, c.add(func(n int) int { return n + 1 }))
	assert.False(t, c.latch.Poisoned())

	err := c.add(func(n int) int { panic("boom") })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoisoned))
	assert.Contains(t, err.Error(), "boom")

	// sticky: later calls fail without running
	ran := false
	err = c.add(func(n int) int { ran = true; return n })
	assert.ErrorIs(t, err, ErrPoisoned)
	assert.False(t, ran)
	assert.Equal(t, 1, c.n)
}

func TestLatch_UnlocksAfterPanic(t *testing.T) {
	c := &counter{}
	_ = c.add(func(n int) int { panic("boom") })

	// the mutex must have been released by the deferred unlock
	locked := c.mu.TryLock()
	require.True(t, locked)
	c.mu.Unlock()
}
