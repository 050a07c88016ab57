package retrylimit

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptiveLimiterBounds(t *testing.T) {
	l := NewAdaptiveLimiter(2, 1, 4, 1, 0.5)

	for i := 0; i < 10; i++ {
		l.RateLimited()
	}
	assert.Equal(t, 1.0, l.CurrentLimit(), "limit must not drop below min")

	// Successes inside the error window are ignored.
	l.Success()
	assert.Equal(t, 1.0, l.CurrentLimit())
}

func TestStatusErrorPredicates(t *testing.T) {
	rateErr := fmt.Errorf("call failed: %w", &StatusError{Code: http.StatusTooManyRequests, Body: "slow down"})
	assert.True(t, IsRateLimit(rateErr))
	assert.False(t, IsNotFound(rateErr))

	notFound := &StatusError{Code: http.StatusNotFound, Body: "no such model"}
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsRateLimit(notFound))

	assert.True(t, IsServerError(&StatusError{Code: http.StatusBadGateway}))
	assert.False(t, IsServerError(&StatusError{Code: http.StatusBadRequest}))
	assert.False(t, IsRateLimit(fmt.Errorf("plain error")))
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	max := 8 * time.Second
	prevCeil := time.Duration(0)
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt, time.Second, max)
		require.LessOrEqual(t, d, max, "attempt %d exceeded cap", attempt)
		require.Greater(t, d, time.Duration(0))

		// Base delay doubles until the cap; jitter only adds.
		base := time.Second << uint(attempt)
		if base > max {
			base = max
		}
		require.GreaterOrEqual(t, d, base)
		if prevCeil > 0 {
			require.GreaterOrEqual(t, d+max/4, prevCeil)
		}
		prevCeil = d
	}
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)

	// Zero and negative waits return immediately.
	assert.NoError(t, Sleep(context.Background(), 0))
	assert.NoError(t, Sleep(context.Background(), -time.Second))
}
