package trace

import "sync/atomic"

// Clock is the monotonic logical clock stamping trace events.
//
// Events are ordered by a strictly increasing seq number, never by
// wall-clock time: replaying a recorded run must observe the identical
// order regardless of when or where it executes.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
