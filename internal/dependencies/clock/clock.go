package clock

import "time"

// Clock is the source of "now" for token expiry and game timestamps
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC, so stored timestamps compare the same
// across every storage backend.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
