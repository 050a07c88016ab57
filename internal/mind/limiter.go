package mind

import (
	"sync"
	"time"
)

// LLMRateLimiter enforces global sliding-window limits on LLM calls so a busy
// server cannot burn through provider quota.
type LLMRateLimiter struct {
	mu           sync.Mutex
	perMinute    []time.Time
	perHour      []time.Time
	maxPerMinute int
	maxPerHour   int
}

// DefaultLLMLimiter returns a limiter: 10/min, 120/hour.
func DefaultLLMLimiter() *LLMRateLimiter {
	return &LLMRateLimiter{
		perMinute:    make([]time.Time, 0, 32),
		perHour:      make([]time.Time, 0, 128),
		maxPerMinute: 10,
		maxPerHour:   120,
	}
}

// Allow returns true if an LLM call is allowed at now.
func (l *LLMRateLimiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutMin := now.Add(-1 * time.Minute)
	cutHour := now.Add(-1 * time.Hour)
	var nm []time.Time
	for _, t := range l.perMinute {
		if t.After(cutMin) {
			nm = append(nm, t)
		}
	}
	l.perMinute = nm
	var nh []time.Time
	for _, t := range l.perHour {
		if t.After(cutHour) {
			nh = append(nh, t)
		}
	}
	l.perHour = nh

	return len(l.perMinute) < l.maxPerMinute && len(l.perHour) < l.maxPerHour
}

// Record records that an LLM call was made at now. Call after a successful
// Generate.
func (l *LLMRateLimiter) Record(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perMinute = append(l.perMinute, now)
	l.perHour = append(l.perHour, now)
}
