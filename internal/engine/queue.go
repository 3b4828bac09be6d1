package engine

import "github.com/roach88/pulsenet/internal/ir"

// signalQueue is the FIFO of pending signals for one press.
//
// Not safe for concurrent use. The engine owns one queue and drains it
// before a press returns.
type signalQueue struct {
	signals []ir.Signal
}

func newSignalQueue() *signalQueue {
	return &signalQueue{
		signals: make([]ir.Signal, 0, 64),
	}
}

// Enqueue adds a signal to the back of the queue.
func (q *signalQueue) Enqueue(s ir.Signal) {
	q.signals = append(q.signals, s)
}

// TryDequeue removes and returns the front signal.
// Returns (ir.Signal{}, false) if the queue is empty.
func (q *signalQueue) TryDequeue() (ir.Signal, bool) {
	if len(q.signals) == 0 {
		return ir.Signal{}, false
	}

	s := q.signals[0]

	// Clear the slot so the backing array does not pin module id strings.
	q.signals[0] = ir.Signal{}

	if len(q.signals) == 1 {
		q.signals = q.signals[:0]
	} else {
		q.signals = q.signals[1:]
	}

	return s, true
}

// Len returns the number of pending signals.
func (q *signalQueue) Len() int {
	return len(q.signals)
}

// Clear drops every pending signal. Used when a press is aborted.
func (q *signalQueue) Clear() {
	clear(q.signals)
	q.signals = q.signals[:0]
}
