package circuit

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/roach88/pulsenet/internal/ir"
)

// Circuit owns every module of a pulse network.
//
// INVARIANTS:
//   - exactly one module, named broadcaster, has the Broadcaster behaviour
//   - every conjunction's memory keys equal the set of modules that list it
//     as a destination
//   - topology (modules, destinations) never changes after New
type Circuit struct {
	modules  map[ir.ModuleID]*Module
	ids      []ir.ModuleID // sorted
	decls    []ir.Declaration
	upstream map[ir.ModuleID][]ir.ModuleID // sorted senders, for modules and sinks
}

// New builds a circuit from declarations.
//
// The first pass creates one module per declaration; the second scans every
// destination list and registers each sender in the memory of the
// conjunction it targets, initialised to low.
func New(decls []ir.Declaration) (*Circuit, error) {
	c := &Circuit{
		modules:  make(map[ir.ModuleID]*Module, len(decls)),
		decls:    make([]ir.Declaration, len(decls)),
		upstream: make(map[ir.ModuleID][]ir.ModuleID),
	}
	copy(c.decls, decls)

	for _, d := range decls {
		if err := checkDeclaration(d); err != nil {
			return nil, err
		}
		if _, dup := c.modules[d.Name]; dup {
			return nil, errors.Wrapf(ErrDuplicateModule, "module %s", d.Name)
		}

		m := &Module{
			ID:           d.Name,
			Destinations: append([]ir.ModuleID(nil), d.Destinations...),
		}
		switch d.Kind {
		case ir.KindBroadcaster:
			m.Behavior = &Broadcaster{}
		case ir.KindFlipFlop:
			m.Behavior = &FlipFlop{}
		case ir.KindConjunction:
			m.Behavior = &Conjunction{memory: make(map[ir.ModuleID]ir.Pulse)}
		default:
			return nil, errors.Errorf("module %s: unknown kind %v", d.Name, d.Kind)
		}
		c.modules[d.Name] = m
		c.ids = append(c.ids, d.Name)
	}

	if _, ok := c.modules[ir.BroadcasterID]; !ok {
		return nil, ErrNoBroadcaster
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })

	senders := make(map[ir.ModuleID]map[ir.ModuleID]bool)
	for _, id := range c.ids {
		for _, dst := range c.modules[id].Destinations {
			if senders[dst] == nil {
				senders[dst] = make(map[ir.ModuleID]bool)
			}
			senders[dst][id] = true
		}
	}
	for dst, set := range senders {
		ups := make([]ir.ModuleID, 0, len(set))
		for id := range set {
			ups = append(ups, id)
		}
		sort.Slice(ups, func(i, j int) bool { return ups[i] < ups[j] })
		c.upstream[dst] = ups

		if m, ok := c.modules[dst]; ok {
			if conj, ok := m.Behavior.(*Conjunction); ok {
				for _, id := range ups {
					conj.memory[id] = ir.PulseLow
				}
			}
		}
	}

	return c, nil
}

func checkDeclaration(d ir.Declaration) error {
	if d.Name == "" {
		return errors.Wrapf(ErrEmptyName, "line %d", d.Line)
	}
	if d.Name == ir.BroadcasterID && d.Kind != ir.KindBroadcaster {
		return errors.Wrapf(ErrBroadcasterKind, "declared as %s", d.Kind)
	}
	if d.Kind == ir.KindBroadcaster && d.Name != ir.BroadcasterID {
		return errors.Wrapf(ErrMisnamedEntry, "module %s", d.Name)
	}
	for _, dst := range d.Destinations {
		if dst == "" {
			return errors.Wrapf(ErrEmptyDestination, "module %s", d.Name)
		}
	}
	return nil
}

// FromText parses and builds a circuit in one step.
func FromText(s string) (*Circuit, error) {
	decls, err := ParseString(s)
	if err != nil {
		return nil, err
	}
	return New(decls)
}

// Module returns the tracked module with the given id.
func (c *Circuit) Module(id ir.ModuleID) (*Module, bool) {
	m, ok := c.modules[id]
	return m, ok
}

// Has reports whether id is a tracked module (not a sink).
func (c *Circuit) Has(id ir.ModuleID) bool {
	_, ok := c.modules[id]
	return ok
}

// IDs returns the tracked module ids in sorted order.
func (c *Circuit) IDs() []ir.ModuleID {
	return append([]ir.ModuleID(nil), c.ids...)
}

// Len returns the number of tracked modules.
func (c *Circuit) Len() int {
	return len(c.modules)
}

// Declarations returns the declarations the circuit was built from, in
// their original order.
func (c *Circuit) Declarations() []ir.Declaration {
	return append([]ir.Declaration(nil), c.decls...)
}

// Upstream returns the sorted ids of every module that lists id as a
// destination. id may be a sink.
func (c *Circuit) Upstream(id ir.ModuleID) []ir.ModuleID {
	return append([]ir.ModuleID(nil), c.upstream[id]...)
}

// Sinks returns the sorted destination ids that are not tracked modules.
func (c *Circuit) Sinks() []ir.ModuleID {
	var sinks []ir.ModuleID
	for dst := range c.upstream {
		if !c.Has(dst) {
			sinks = append(sinks, dst)
		}
	}
	sort.Slice(sinks, func(i, j int) bool { return sinks[i] < sinks[j] })
	return sinks
}

// Hash returns the content-addressed identity of the circuit's topology.
func (c *Circuit) Hash() (string, error) {
	return ir.CircuitHash(c.decls)
}

// Reset restores every module to its construction-time state: flip-flops
// off, conjunction memories low.
func (c *Circuit) Reset() {
	for _, m := range c.modules {
		switch b := m.Behavior.(type) {
		case *FlipFlop:
			b.On = false
		case *Conjunction:
			b.reset()
		}
	}
}

// StateKey renders all mutable state in a deterministic form. Two circuits
// with equal topology are in the same state iff their keys are equal.
func (c *Circuit) StateKey() string {
	var sb strings.Builder
	for _, id := range c.ids {
		switch b := c.modules[id].Behavior.(type) {
		case *FlipFlop:
			sb.WriteString(string(id))
			if b.On {
				sb.WriteString("=1;")
			} else {
				sb.WriteString("=0;")
			}
		case *Conjunction:
			sb.WriteString(string(id))
			sb.WriteString("{")
			for _, in := range b.Inputs() {
				sb.WriteString(string(in))
				if b.memory[in] == ir.PulseHigh {
					sb.WriteString(":1,")
				} else {
					sb.WriteString(":0,")
				}
			}
			sb.WriteString("};")
		}
	}
	return sb.String()
}
