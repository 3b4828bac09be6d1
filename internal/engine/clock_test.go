package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pulsenet/internal/ir"
)

func TestClock_StampNumbersFromOne(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())

	signals := make([]ir.Signal, 3)
	for i := range signals {
		got := c.Stamp(&signals[i])
		assert.Equal(t, int64(i+1), got)
	}

	assert.Equal(t, []int64{1, 2, 3}, []int64{signals[0].Seq, signals[1].Seq, signals[2].Seq})
	assert.Equal(t, int64(3), c.Current())
}

func TestClock_NewClockAtContinues(t *testing.T) {
	c := NewClockAt(100)
	assert.Equal(t, int64(100), c.Current())

	var s ir.Signal
	assert.Equal(t, int64(101), c.Stamp(&s))
	assert.Equal(t, int64(101), s.Seq)
}

func TestClock_StampOverwritesSeq(t *testing.T) {
	c := NewClock()
	s := ir.Signal{Seq: 42}
	c.Stamp(&s)
	assert.Equal(t, int64(1), s.Seq, "a re-delivered signal takes a fresh number")
}

func TestClock_CurrentDoesNotAdvance(t *testing.T) {
	c := NewClock()
	var s ir.Signal
	c.Stamp(&s)
	c.Stamp(&s)

	assert.Equal(t, int64(2), c.Current())
	assert.Equal(t, int64(2), c.Current())
}
