// Package ratelimit caps how often one client may hit the credential
// endpoints. Windows slide: a hit drops out exactly one window after it
// was recorded.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"
)

// Result is the state of a client's budget after a Check. ResetAt is when
// the window that produced it ends.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds a refused client should wait,
// never less than one.
func (r *Result) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(r.ResetAt.Sub(now).Seconds()))
	return max(secs, 1)
}

// Limiter records one hit for key and reports whether it fits in limit hits
// per window. Refused hits return ErrLimitExceeded with a non-nil Result.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

var ErrLimitExceeded = errors.New("rate limit exceeded")

// Key scopes a client address to one throttled route group, e.g. "auth".
func Key(scope, client string) string {
	return scope + ":" + client
}
