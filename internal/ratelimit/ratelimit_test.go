package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCounter_Incr(t *testing.T) {
	c := NewMemoryCounter()

	assert.Equal(t, 1, c.Incr("a", time.Minute))
	assert.Equal(t, 2, c.Incr("a", time.Minute))
	assert.Equal(t, 1, c.Incr("b", time.Minute))
	assert.Equal(t, 3, c.Incr("a", time.Minute))
}

func TestMemoryCounter_WindowReset(t *testing.T) {
	c := NewMemoryCounter()

	assert.Equal(t, 1, c.Incr("a", 10*time.Millisecond))
	assert.Equal(t, 2, c.Incr("a", 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, c.Incr("a", 10*time.Millisecond))
}

func TestMemoryCounter_Sweep(t *testing.T) {
	c := NewMemoryCounter()

	c.Incr("stale", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	c.Incr("fresh", time.Minute)

	c.Sweep(10 * time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.NotContains(t, c.entries, "stale")
	assert.Contains(t, c.entries, "fresh")
}

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(NewMemoryCounter(), 3, time.Minute)

	assert.True(t, l.Allow("key"))
	assert.True(t, l.Allow("key"))
	assert.True(t, l.Allow("key"))
	assert.False(t, l.Allow("key"))

	// Other keys are counted independently.
	assert.True(t, l.Allow("other"))
}
