package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the single-instance fallback used when no Redis URL is
// configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string][]time.Time), now: time.Now}
}

// Check admits the request if fewer than limit requests for key landed in
// the trailing window. Rejected requests are not recorded.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := m.now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	reqs := keepRecent(m.buckets[key], windowStart)
	res := &Result{ResetAt: now.Add(window)}
	if len(reqs) < limit {
		reqs = append(reqs, now)
		res.Allowed = true
	}
	res.Remaining = max(limit-len(reqs), 0)
	m.buckets[key] = reqs
	if !res.Allowed {
		return res, ErrLimitExceeded
	}
	return res, nil
}

// Cleanup drops keys with no request newer than maxAge.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	cutoff := m.now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, reqs := range m.buckets {
		if len(reqs) == 0 || reqs[len(reqs)-1].Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

func keepRecent(reqs []time.Time, windowStart time.Time) []time.Time {
	i := 0
	for i < len(reqs) && !reqs[i].After(windowStart) {
		i++
	}
	return reqs[i:]
}
