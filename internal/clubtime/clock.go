// Package clubtime holds the club's fixed slot grid and booking-window rules.
// All dates are calendar days in the club's local time zone.
package clubtime

import "time"

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock returns the same instant on every call.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }
