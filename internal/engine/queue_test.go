package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
)

func TestSignalQueue_FIFO(t *testing.T) {
	q := newSignalQueue()

	for _, dst := range []ir.ModuleID{"a", "b", "c"} {
		q.Enqueue(ir.Signal{Source: "broadcaster", Destination: dst, Pulse: ir.PulseLow})
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []ir.ModuleID{"a", "b", "c"} {
		s, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, s.Destination)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "empty queue")
}

func TestSignalQueue_InterleavedEnqueue(t *testing.T) {
	q := newSignalQueue()
	q.Enqueue(ir.Signal{Destination: "a"})
	q.Enqueue(ir.Signal{Destination: "b"})

	s, _ := q.TryDequeue()
	assert.Equal(t, ir.ModuleID("a"), s.Destination)

	// Work caused by "a" lands behind "b".
	q.Enqueue(ir.Signal{Destination: "a2"})

	s, _ = q.TryDequeue()
	assert.Equal(t, ir.ModuleID("b"), s.Destination)
	s, _ = q.TryDequeue()
	assert.Equal(t, ir.ModuleID("a2"), s.Destination)
}

func TestSignalQueue_Clear(t *testing.T) {
	q := newSignalQueue()
	for range 10 {
		q.Enqueue(ir.Signal{Destination: "x"})
	}
	q.Clear()
	assert.Equal(t, 0, q.Len())

	q.Enqueue(ir.Signal{Destination: "y"})
	s, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, ir.ModuleID("y"), s.Destination)
}
