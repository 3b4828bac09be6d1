// Package analysis answers questions about a circuit by pressing its
// button.
//
// Tally counts Low and High pulses over a fixed number of presses.
// Period finds the first press at which a sink receives Low without
// simulating that far: it watches the inputs of the conjunction in front
// of the sink, measures the cycle length of each, and returns their least
// common multiple. FirstLow gets the same answer by brute force and is
// only practical for small periods.
//
// Every analysis resets the circuit before it starts, so several can run
// one after another against one parsed circuit.
package analysis
