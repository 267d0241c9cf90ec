// Package clock abstracts the wall clock so rank entry date defaulting can be
// pinned in tests.
package clock

import "time"

// Clock supplies the instant used when a rank entry arrives without a date
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time normalised to UTC. Stores compare dates with
// Equal, but the JSON and SQLite encodings only round-trip the UTC location.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
