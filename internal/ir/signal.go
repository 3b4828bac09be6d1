package ir

import "fmt"

// Signal is one in-flight pulse from Source to Destination.
//
// Press and Seq are stamped by the engine when the signal is dequeued:
// Press is the 1-based button press the signal belongs to, Seq is the
// engine's logical clock value. Neither takes part in module behaviour.
type Signal struct {
	Source      ModuleID `json:"source"`
	Destination ModuleID `json:"destination"`
	Pulse       Pulse    `json:"pulse"`
	Press       int      `json:"press,omitempty"`
	Seq         int64    `json:"seq,omitempty"`
}

// String renders the signal as "src -low-> dst".
func (s Signal) String() string {
	return fmt.Sprintf("%s -%s-> %s", s.Source, s.Pulse, s.Destination)
}

// Declaration is one parsed module line: a name, its kind, and its ordered
// destination list.
type Declaration struct {
	Name         ModuleID   `json:"name"`
	Kind         Kind       `json:"kind"`
	Destinations []ModuleID `json:"destinations"`

	// Line is the 1-based source line, zero when not parsed from text.
	Line int `json:"line,omitempty"`
}

// String renders the declaration in the text circuit format.
func (d Declaration) String() string {
	s := d.Kind.Prefix() + string(d.Name) + " ->"
	for i, dst := range d.Destinations {
		if i > 0 {
			s += ","
		}
		s += " " + string(dst)
	}
	return s
}
