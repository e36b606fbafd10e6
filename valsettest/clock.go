package valsettest

import (
	"time"

	"github.com/iov-one/valset"
)

// Clock is a valset.Clock implementation under full control of the
// test. The zero value starts at the UNIX epoch.
type Clock struct {
	now valset.UnixMicro
}

var _ valset.Clock = (*Clock)(nil)

// NewClock returns a clock set to the given time.
func NewClock(now valset.UnixMicro) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() valset.UnixMicro {
	return c.now
}

// Set moves the clock to the given moment. Moving backwards is allowed
// in tests even though real clocks never do.
func (c *Clock) Set(now valset.UnixMicro) {
	c.now = now
}

// Advance moves the clock forward by given duration.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
