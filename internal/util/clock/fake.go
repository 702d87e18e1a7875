package clock

import (
	"sync"
	"time"
)

// Fake is a Clock whose time only moves when a caller waits on it or calls
// Advance. Every After call advances the clock by d and returns an already
// fired channel, so single-goroutine loops run to completion without real
// sleeping.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	waits   []time.Duration
}

// NewFake returns a Fake starting at the given time.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// After advances the fake time by d and returns a channel holding the new time.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	if d > 0 {
		f.current = f.current.Add(d)
	}
	f.waits = append(f.waits, d)

	ch := make(chan time.Time, 1)
	ch <- f.current
	return ch
}

// Advance moves the fake time forward by d without recording a wait.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// Waits returns every duration passed to After, in call order.
func (f *Fake) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.waits))
	copy(out, f.waits)
	return out
}
