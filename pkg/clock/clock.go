package clock

import (
	"sync"
	"time"
)

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system clock, normalised to UTC.
type Real struct{}

// New creates a new Real clock
func New() Real {
	return Real{}
}

// Now returns the current time
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Mock is a settable Clock for tests.
type Mock struct {
	mu      sync.Mutex
	current time.Time
}

var _ Clock = (*Mock)(nil)

// NewMock creates a Mock set to the given time
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

// Now returns the mocked current time
func (c *Mock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by the given duration
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// Set sets the clock to the given time
func (c *Mock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}
