package circuit

import (
	"fmt"
	"sort"

	"github.com/roach88/pulsenet/internal/ir"
)

// Behavior is the state machine of a module. The set of implementations is
// closed: *Broadcaster, *FlipFlop and *Conjunction.
type Behavior interface {
	// Kind returns the kind this behaviour implements.
	Kind() ir.Kind

	// behavior is a private method to restrict implementers
	behavior()
}

// Broadcaster forwards every pulse unchanged.
type Broadcaster struct{}

// FlipFlop is off until it receives its first low pulse.
type FlipFlop struct {
	On bool
}

// Conjunction remembers the most recent pulse received from each input.
// Memory keys are fixed at construction.
type Conjunction struct {
	memory map[ir.ModuleID]ir.Pulse
}

func (*Broadcaster) Kind() ir.Kind { return ir.KindBroadcaster }
func (*FlipFlop) Kind() ir.Kind    { return ir.KindFlipFlop }
func (*Conjunction) Kind() ir.Kind { return ir.KindConjunction }

func (*Broadcaster) behavior() {}
func (*FlipFlop) behavior()    {}
func (*Conjunction) behavior() {}

// Inputs returns the conjunction's input ids in sorted order.
func (c *Conjunction) Inputs() []ir.ModuleID {
	ids := make([]ir.ModuleID, 0, len(c.memory))
	for id := range c.memory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Remembered returns the last pulse received from input id.
func (c *Conjunction) Remembered(id ir.ModuleID) (ir.Pulse, bool) {
	p, ok := c.memory[id]
	return p, ok
}

// AllHigh reports whether every remembered pulse is high. A conjunction
// without inputs is vacuously all high.
func (c *Conjunction) AllHigh() bool {
	for _, p := range c.memory {
		if p != ir.PulseHigh {
			return false
		}
	}
	return true
}

func (c *Conjunction) reset() {
	for id := range c.memory {
		c.memory[id] = ir.PulseLow
	}
}

// Module is a named node with one behaviour and an ordered destination list.
type Module struct {
	ID           ir.ModuleID
	Behavior     Behavior
	Destinations []ir.ModuleID
}

// Kind returns the module's kind.
func (m *Module) Kind() ir.Kind {
	return m.Behavior.Kind()
}

// Receive delivers pulse from source to the module, updates its state, and
// appends the resulting signals to out in destination order.
//
// Receive panics if a conjunction receives from a source it was not wired
// to; New never builds such a circuit.
func (m *Module) Receive(source ir.ModuleID, pulse ir.Pulse, out []ir.Signal) []ir.Signal {
	switch b := m.Behavior.(type) {
	case *Broadcaster:
		return m.emit(pulse, out)

	case *FlipFlop:
		if pulse == ir.PulseHigh {
			return out
		}
		b.On = !b.On
		if b.On {
			return m.emit(ir.PulseHigh, out)
		}
		return m.emit(ir.PulseLow, out)

	case *Conjunction:
		if _, ok := b.memory[source]; !ok {
			panic(fmt.Sprintf("conjunction %s: signal from unregistered input %s", m.ID, source))
		}
		b.memory[source] = pulse
		if b.AllHigh() {
			return m.emit(ir.PulseLow, out)
		}
		return m.emit(ir.PulseHigh, out)

	default:
		panic(fmt.Sprintf("module %s: unknown behavior %T", m.ID, m.Behavior))
	}
}

func (m *Module) emit(pulse ir.Pulse, out []ir.Signal) []ir.Signal {
	for _, dst := range m.Destinations {
		out = append(out, ir.Signal{Source: m.ID, Destination: dst, Pulse: pulse})
	}
	return out
}
