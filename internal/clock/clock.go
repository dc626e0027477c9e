package clock

import "time"

// Clock is a small abstraction for obtaining the current time.
type Clock interface {
	Now() time.Time
}

// RealClock returns the real current time in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock is a controllable clock for tests.
type FakeClock struct {
	now time.Time
}

func NewFake(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

func (f *FakeClock) Now() time.Time { return f.now }

func (f *FakeClock) Set(t time.Time) { f.now = t }

func (f *FakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// Today returns midnight of now's calendar day in loc.
func Today(c Clock, loc *time.Location) time.Time {
	n := c.Now().In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}
