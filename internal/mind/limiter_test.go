package mind

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLLMRateLimiterMinuteWindow(t *testing.T) {
	l := DefaultLLMLimiter()
	now := time.Now()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(now), "call %d should be allowed", i)
		l.Record(now)
	}
	assert.False(t, l.Allow(now), "11th call in a minute must be blocked")

	// Once the minute window slides past, calls are allowed again.
	assert.True(t, l.Allow(now.Add(61*time.Second)))
}

func TestLLMRateLimiterHourWindow(t *testing.T) {
	l := DefaultLLMLimiter()
	now := time.Now()

	// Spread 120 calls over the hour so the minute window never blocks.
	for i := 0; i < 120; i++ {
		l.Record(now.Add(time.Duration(i) * 20 * time.Second))
	}
	at := now.Add(120 * 20 * time.Second)
	assert.False(t, l.Allow(at), "hourly cap must block even when the minute window is clear")

	// An hour after the earliest calls, capacity frees up.
	assert.True(t, l.Allow(now.Add(time.Hour+30*20*time.Second)))
}
