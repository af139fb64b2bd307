package clock

import "time"

// FakeClock is a manually advanced Clock for tests. Times are normalized
// to UTC so lifecycle timestamps stamped through it compare cleanly.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d. Tests advance it between calls,
// never during them.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
