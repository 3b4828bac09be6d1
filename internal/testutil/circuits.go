package testutil

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// ScenarioA is a three-bit ring closed by an inverter. Every press sends
// 8 Low and 4 High pulses.
const ScenarioA = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> inv
&inv -> a`

// ScenarioB mixes a flip-flop chain with a conjunction into the untracked
// sink "output". Its state repeats every four presses.
const ScenarioB = `broadcaster -> a
%a -> inv, con
&inv -> b
%b -> con
&con -> output`

// CounterGate is the conjunction every counter built by CounterCircuit
// feeds.
const CounterGate ir.ModuleID = "gate"

// CounterCircuit builds a circuit of independent binary counters that
// all feed one conjunction, which in turn feeds ir.DefaultTarget.
//
// Counter k (prefix 'a'+k) is a chain of flip-flops, one per bit of
// periods[k], plus a hub conjunction that watches the set bits and an
// inverter that relays the hub to the gate. The inverter first sends
// High to the gate on press periods[k], and every periods[k] presses
// after that, provided periods[k] is odd and greater than one.
//
// The feeders are returned in counter order.
func CounterCircuit(periods ...int) (string, []ir.ModuleID) {
	var (
		heads   []string
		body    []string
		feeders []ir.ModuleID
	)

	for k, p := range periods {
		if p < 2 {
			panic(fmt.Sprintf("CounterCircuit: period %d too small", p))
		}
		pre := string(rune('a' + k))
		name := func(i int) string { return fmt.Sprintf("%s%02d", pre, i) }
		hub := pre + "hub"
		inv := pre + "inv"
		width := bits.Len(uint(p))

		heads = append(heads, name(0))
		var hubOuts []string
		for i := range width {
			set := p>>i&1 == 1
			var outs []string
			if set {
				outs = append(outs, hub)
			}
			if i+1 < width {
				outs = append(outs, name(i+1))
			}
			body = append(body, fmt.Sprintf("%%%s -> %s", name(i), strings.Join(outs, ", ")))
			if !set || i == 0 {
				hubOuts = append(hubOuts, name(i))
			}
		}
		hubOuts = append(hubOuts, inv)
		body = append(body,
			fmt.Sprintf("&%s -> %s", hub, strings.Join(hubOuts, ", ")),
			fmt.Sprintf("&%s -> %s", inv, CounterGate),
		)
		feeders = append(feeders, ir.ModuleID(inv))
	}

	lines := make([]string, 0, len(body)+2)
	lines = append(lines, "broadcaster -> "+strings.Join(heads, ", "))
	lines = append(lines, body...)
	lines = append(lines, fmt.Sprintf("&%s -> %s", CounterGate, ir.DefaultTarget))

	return strings.Join(lines, "\n"), feeders
}
