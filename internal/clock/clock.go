package clock

import (
	"sync"
	"time"
)

// Clock is the time source shared by the engines and the job scheduler.
type Clock interface {
	Now() time.Time
}

// Real reads the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Manual is a settable clock for tests and replays. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}
