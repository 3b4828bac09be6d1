package compiler

import (
	"fmt"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/ir"
)

// Diagnostic codes (W200-W299). None of them stops a simulation; they
// flag modules that cannot influence the outcome.
const (
	WarnUnreachable        = "W201" // no path from the broadcaster
	WarnConjunctionNoInput = "W202" // conjunction nobody sends to
	WarnFlipFlopNoInput    = "W203" // flip-flop nobody sends to
	WarnSelfLoop           = "W204" // module lists itself as a destination
	InfoSink               = "I210" // destination that is not declared
)

// Diagnostic is one structural finding about a circuit.
type Diagnostic struct {
	Module  ir.ModuleID `json:"module"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Line    int         `json:"line,omitempty"`
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", d.Code, d.Line, d.Module, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Module, d.Message)
}

// Diagnose reports every finding, grouped by module in id order, with
// sink notes last.
// Circuits built by circuit.New are already valid; Diagnose only points
// out parts of them that are dead weight.
func Diagnose(c *circuit.Circuit) []Diagnostic {
	lines := make(map[ir.ModuleID]int, c.Len())
	for _, d := range c.Declarations() {
		lines[d.Name] = d.Line
	}
	reachable := Reachable(c)

	var diags []Diagnostic
	for _, id := range c.IDs() {
		m, _ := c.Module(id)
		upstream := c.Upstream(id)

		if len(upstream) == 0 && m.Kind() == ir.KindConjunction {
			diags = append(diags, Diagnostic{
				Module:  id,
				Message: "conjunction has no inputs and never receives a pulse",
				Code:    WarnConjunctionNoInput,
				Line:    lines[id],
			})
		}
		if len(upstream) == 0 && m.Kind() == ir.KindFlipFlop {
			diags = append(diags, Diagnostic{
				Module:  id,
				Message: "flip-flop has no inputs and never toggles",
				Code:    WarnFlipFlopNoInput,
				Line:    lines[id],
			})
		}
		if !reachable[id] {
			diags = append(diags, Diagnostic{
				Module:  id,
				Message: "not reachable from broadcaster",
				Code:    WarnUnreachable,
				Line:    lines[id],
			})
		}
		for _, d := range m.Destinations {
			if d == id {
				diags = append(diags, Diagnostic{
					Module:  id,
					Message: "module sends to itself",
					Code:    WarnSelfLoop,
					Line:    lines[id],
				})
				break
			}
		}
	}

	for _, sink := range c.Sinks() {
		diags = append(diags, Diagnostic{
			Module:  sink,
			Message: fmt.Sprintf("undeclared destination, fed by %v", c.Upstream(sink)),
			Code:    InfoSink,
		})
	}

	return diags
}

// Reachable returns the set of ids (tracked and sinks) that a pulse from
// the broadcaster can reach.
func Reachable(c *circuit.Circuit) map[ir.ModuleID]bool {
	seen := map[ir.ModuleID]bool{ir.BroadcasterID: true}
	queue := []ir.ModuleID{ir.BroadcasterID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		m, ok := c.Module(id)
		if !ok {
			continue
		}
		for _, d := range m.Destinations {
			if !seen[d] {
				seen[d] = true
				queue = append(queue, d)
			}
		}
	}
	return seen
}
