// Package clock abstracts the time source so session and token lifetimes are
// deterministic under test.
package clock

import "time"

// Clock supplies the current time. Implementations must return UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock.
func System() Clock { return systemClock{} }

// Fixed is a Clock pinned to a settable instant. For tests.
type Fixed struct {
	T time.Time
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time { return f.T }

// Advance moves the pinned instant forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
