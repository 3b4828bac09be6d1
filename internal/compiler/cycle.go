package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/ir"
)

// FeedbackLoop is a strongly connected group of modules. Pulses sent by
// any member can eventually reach every other member.
//
// Loops are informational: counters and inverters in well-formed circuits
// are loops by construction. They matter because the engine's quiescence
// guarantee depends on every loop containing a flip-flop that absorbs
// High pulses.
type FeedbackLoop struct {
	Members []ir.ModuleID `json:"members"` // sorted
	Path    []ir.ModuleID `json:"path"`    // closed walk, first == last
	Message string        `json:"message"`
	Level   string        `json:"level"` // "warning" or "info"
}

// AnalyzeLoops finds the feedback loops of a circuit with Tarjan's
// algorithm. Untracked sinks never take part in a loop.
//
// A loop made only of conjunctions (and possibly the broadcaster) has
// nothing that drops a High pulse, so it is reported at warning level:
// such a loop can oscillate forever within one press. Loops containing a
// flip-flop are reported at info level.
//
// Results are ordered by their smallest member.
func AnalyzeLoops(c *circuit.Circuit) []FeedbackLoop {
	graph := buildModuleGraph(c)
	sccs := tarjanSCC(graph)

	loops := []FeedbackLoop{}
	for _, scc := range sccs {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		slices.Sort(scc)
		loops = append(loops, sccToLoop(c, scc, graph))
	}

	slices.SortFunc(loops, func(a, b FeedbackLoop) int {
		return strings.Compare(string(a.Members[0]), string(b.Members[0]))
	})
	return loops
}

// moduleGraph maps a module to the tracked modules it sends to.
type moduleGraph struct {
	nodes []ir.ModuleID // sorted
	edges map[ir.ModuleID][]ir.ModuleID
}

func buildModuleGraph(c *circuit.Circuit) moduleGraph {
	g := moduleGraph{
		nodes: c.IDs(),
		edges: make(map[ir.ModuleID][]ir.ModuleID, c.Len()),
	}
	for _, id := range g.nodes {
		m, _ := c.Module(id)
		for _, d := range m.Destinations {
			if c.Has(d) {
				g.edges[id] = append(g.edges[id], d)
			}
		}
	}
	return g
}

func hasSelfLoop(node ir.ModuleID, g moduleGraph) bool {
	return slices.Contains(g.edges[node], node)
}

// tarjanSCC finds strongly connected components. Nodes are visited in
// sorted order so the output is stable across runs.
func tarjanSCC(g moduleGraph) [][]ir.ModuleID {
	var (
		index   = 0
		stack   []ir.ModuleID
		indices = make(map[ir.ModuleID]int)
		lowlink = make(map[ir.ModuleID]int)
		onStack = make(map[ir.ModuleID]bool)
		sccs    [][]ir.ModuleID
	)

	var strongConnect func(ir.ModuleID)
	strongConnect = func(v ir.ModuleID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.ModuleID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToLoop(c *circuit.Circuit, scc []ir.ModuleID, g moduleGraph) FeedbackLoop {
	level := "warning"
	for _, id := range scc {
		if m, _ := c.Module(id); m.Kind() == ir.KindFlipFlop {
			level = "info"
			break
		}
	}

	var path []ir.ModuleID
	if len(scc) == 1 {
		path = []ir.ModuleID{scc[0], scc[0]}
	} else {
		path = reconstructCyclePath(scc, g)
	}

	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = string(id)
	}
	msg := "feedback loop: " + strings.Join(parts, " -> ")
	if level == "warning" {
		msg += " (no flip-flop, may not settle)"
	}

	return FeedbackLoop{
		Members: scc,
		Path:    path,
		Message: msg,
		Level:   level,
	}
}

// reconstructCyclePath returns the shortest closed walk through the
// smallest member, staying inside the SCC. Breadth-first search over the
// sorted edge lists keeps the result deterministic.
func reconstructCyclePath(scc []ir.ModuleID, g moduleGraph) []ir.ModuleID {
	inSCC := make(map[ir.ModuleID]bool, len(scc))
	for _, id := range scc {
		inSCC[id] = true
	}

	start := scc[0]
	parent := map[ir.ModuleID]ir.ModuleID{}
	queue := []ir.ModuleID{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.edges[v] {
			if !inSCC[w] {
				continue
			}
			if w == start {
				var rev []ir.ModuleID
				for n := v; n != start; n = parent[n] {
					rev = append(rev, n)
				}
				path := []ir.ModuleID{start}
				for i := len(rev) - 1; i >= 0; i-- {
					path = append(path, rev[i])
				}
				return append(path, start)
			}
			if _, seen := parent[w]; !seen {
				parent[w] = v
				queue = append(queue, w)
			}
		}
	}

	// Unreachable for a genuine SCC.
	return append(slices.Clone(scc), start)
}

// String renders a loop for text output.
func (l FeedbackLoop) String() string {
	return fmt.Sprintf("[%s] %s", l.Level, l.Message)
}
