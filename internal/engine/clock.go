package engine

import "sync/atomic"

// Clock is a monotonic logical clock for stamping proposals.
//
// Every proposal in a trace carries a strictly increasing seq from this clock,
// so traces order deterministically and golden files stay byte-stable.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations). A
// single clock may be shared by several runs to give them one global order.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
