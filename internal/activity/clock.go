// Package activity tracks the time of the most recent qualifying
// filesystem change.
//
// A single Clock is shared between the filesystem observer (writer)
// and the inactivity monitor (reader), so all access goes through
// sync/atomic.
package activity

import (
	"sync/atomic"
	"time"
)

// Clock stores the timestamp of the last qualifying change as unix
// nanoseconds. The value is monotonically non-decreasing.
type Clock struct {
	lastNano atomic.Int64
}

// NewClock returns a Clock initialized to start, normally the process
// start time.
func NewClock(start time.Time) *Clock {
	c := &Clock{}
	c.lastNano.Store(start.UnixNano())
	return c
}

// Touch records activity at t. Timestamps older than the stored value
// never move the clock backwards.
func (c *Clock) Touch(t time.Time) {
	nano := t.UnixNano()
	for {
		cur := c.lastNano.Load()
		if nano <= cur {
			return
		}
		if c.lastNano.CompareAndSwap(cur, nano) {
			return
		}
	}
}

// Last returns the timestamp of the most recent recorded activity.
func (c *Clock) Last() time.Time {
	return time.Unix(0, c.lastNano.Load())
}

// IdleSince returns how long the clock has been untouched as of now.
func (c *Clock) IdleSince(now time.Time) time.Duration {
	return now.Sub(c.Last())
}
