// Package engine runs button presses against a circuit.
//
// A press injects one Low pulse from the button into the broadcaster and
// delivers signals in strict FIFO order until the queue drains. Signals a
// module emits while handling a delivery go to the back of the queue, so
// delivery is breadth-first: every signal caused by delivery k is handled
// after every signal already waiting when k was delivered.
//
// The engine is single-threaded. Circuit state carries over from one
// press to the next; the queue does not. A press that keeps producing
// signals is stopped by a per-press quota and reported as a
// SignalsExceededError.
//
// Observers attach in two ways: a trace function that sees every
// delivered signal, and watchers keyed on a destination or source id.
// Watchers are how the analyses in package analysis watch particular wires
// without the engine knowing what they are looking for.
package engine
