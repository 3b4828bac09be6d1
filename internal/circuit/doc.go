// Package circuit models a pulse network: the module state machine and the
// Circuit that owns every module.
//
// A circuit is described one module per line:
//
//	broadcaster -> a, b, c
//	%a -> b
//	%b -> c
//	%c -> inv
//	&inv -> a
//
// The literal name "broadcaster" declares the entry module, a "%" prefix a
// flip-flop and a "&" prefix a conjunction. Destinations that are never
// declared are untracked sinks: they may receive signals but hold no state.
//
// Topology is fixed once New returns. Only flip-flop and conjunction state
// changes afterwards, and only through Module.Receive.
package circuit
