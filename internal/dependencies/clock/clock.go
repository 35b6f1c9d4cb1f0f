package clock

import "time"

// Clock provides time operations that can be mocked for testing.
// Turn deadlines and processing times are measured against it.
type Clock interface {
	Now() time.Time

	// Since returns the time elapsed since t
	Since(t time.Time) time.Duration

	// After waits for the duration to elapse and then sends the current time
	After(d time.Duration) <-chan time.Time
}

// System is the wall clock
type System struct{}

// New creates the wall clock
func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now()
}

func (System) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
