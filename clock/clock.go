package clock

import "time"

// Clock is the time source injected into every temporally-gated component.
// The core never reads the wall clock directly; hosts supply simulated or
// real time through this interface.
type Clock interface {
	Now() time.Time
}

// Monotonic provides the real system time with monotonic clock readings
type Monotonic struct{}

// NewMonotonic creates a new monotonic time provider
func NewMonotonic() *Monotonic {
	return &Monotonic{}
}

// Now returns the current time with monotonic clock reading
func (m *Monotonic) Now() time.Time {
	return time.Now()
}
