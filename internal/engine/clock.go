package engine

import "github.com/roach88/pulsenet/internal/ir"

// Clock numbers delivered signals. Seq values start at 1 and never repeat
// within a run, so sorting a trace by Seq gives delivery order and a
// replayed run stamps the same values.
//
// A Clock belongs to one engine and is not safe for concurrent use.
type Clock struct {
	last int64
}

// NewClock creates a clock whose first stamp is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first stamp is last+1, for continuing
// the numbering of an earlier run.
func NewClockAt(last int64) *Clock {
	return &Clock{last: last}
}

// Stamp assigns the next sequence number to s and returns it.
func (c *Clock) Stamp(s *ir.Signal) int64 {
	c.last++
	s.Seq = c.last
	return c.last
}

// Current returns the last stamped sequence number, 0 before any signal.
func (c *Clock) Current() int64 {
	return c.last
}
