// Package harness runs circuit scenarios described in YAML and checks
// their outcome.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario checks"
//	circuit_file: circuits/ring.txt   # or an inline circuit: |
//	mode: tally                       # tally | period | first_low
//	presses: 1000                     # tally press count, or press cap
//	target: rx                        # period and first_low only
//	confirm: true                     # period only
//	expect:
//	  low: 8000
//	  high: 4000
//	  product: 32000000
//	trace_presses: 1
//	assertions:
//	  - type: trace_contains
//	    from: inv
//	    to: a
//	    pulse: low
//	  - type: trace_order
//	    steps: ["c -high-> inv", "inv -low-> a"]
//	  - type: trace_count
//	    from: broadcaster
//	    count: 3
//
// circuit_file paths are relative to the scenario file. Expectations are
// exact; fields left out are not checked. expect.error names a runtime
// error code (STRUCTURE_VIOLATION, PRESS_LIMIT, NON_TERMINATION) the
// analysis must fail with.
//
// # Traces
//
// When trace_presses is positive the harness records every signal of the
// first trace_presses presses from the construction-time state, before
// running the analysis. Trace assertions and golden files use that trace.
// Empty from, to or pulse fields in an assertion match anything.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the trace with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
