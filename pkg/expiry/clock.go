package expiry

import "time"

// Clock abstracts time for the scheduler so tests can run on a simulated
// clock. AfterFunc implementations must invoke f on its own goroutine,
// never inline with the caller.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the cancel handle returned by Clock.AfterFunc. Stop reports
// whether the timer was cancelled before firing; stopping an already
// fired or stopped timer is a no-op.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the wall-clock backed Clock used outside of tests.
func SystemClock() Clock { return systemClock{} }
