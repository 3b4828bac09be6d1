package ir

import "fmt"

// ModuleID names a module in a circuit. Destinations may name ids that are
// not declared as modules; those are untracked sinks.
type ModuleID string

// Well-known ids.
const (
	// BroadcasterID is the fixed entry module of every circuit.
	BroadcasterID ModuleID = "broadcaster"

	// ButtonID is the sentinel source of the synthetic signal that starts a press.
	ButtonID ModuleID = "button"

	// DefaultTarget is the conventional final target module.
	DefaultTarget ModuleID = "rx"
)

// Pulse is the binary value carried by a signal.
type Pulse uint8

const (
	// PulseLow is a low pulse.
	PulseLow Pulse = iota + 1
	// PulseHigh is a high pulse.
	PulseHigh
)

// String returns "low" or "high".
func (p Pulse) String() string {
	switch p {
	case PulseLow:
		return "low"
	case PulseHigh:
		return "high"
	default:
		return fmt.Sprintf("pulse(%d)", uint8(p))
	}
}

// Valid reports whether p is Low or High.
func (p Pulse) Valid() bool {
	return p == PulseLow || p == PulseHigh
}

// ParsePulse parses "low" or "high".
func ParsePulse(s string) (Pulse, error) {
	switch s {
	case "low":
		return PulseLow, nil
	case "high":
		return PulseHigh, nil
	default:
		return 0, fmt.Errorf("unknown pulse %q: must be low or high", s)
	}
}

// Kind selects the behaviour of a module.
type Kind uint8

const (
	// KindBroadcaster forwards every pulse unchanged.
	KindBroadcaster Kind = iota + 1
	// KindFlipFlop toggles on low pulses and ignores high ones.
	KindFlipFlop
	// KindConjunction remembers the last pulse from every input and emits
	// low only when all of them are high.
	KindConjunction
)

// String returns the kind name used in CUE descriptions and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindBroadcaster:
		return "broadcaster"
	case KindFlipFlop:
		return "flipflop"
	case KindConjunction:
		return "conjunction"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Prefix returns the text-format marker for the kind. The broadcaster has
// no marker; it is recognised by name.
func (k Kind) Prefix() string {
	switch k {
	case KindFlipFlop:
		return "%"
	case KindConjunction:
		return "&"
	default:
		return ""
	}
}

// ParseKind parses a kind name as returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "broadcaster":
		return KindBroadcaster, nil
	case "flipflop":
		return KindFlipFlop, nil
	case "conjunction":
		return KindConjunction, nil
	default:
		return 0, fmt.Errorf("unknown module kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so pulses render as
// "low"/"high" in JSON output.
func (p Pulse) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pulse %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pulse) UnmarshalText(text []byte) error {
	v, err := ParsePulse(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
