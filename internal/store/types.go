package store

// Mode names the analysis a run performed.
type Mode string

const (
	ModeTally    Mode = "tally"
	ModePeriod   Mode = "period"
	ModeFirstLow Mode = "first_low"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeTally, ModePeriod, ModeFirstLow:
		return true
	}
	return false
}

// CircuitRecord is a stored circuit description.
type CircuitRecord struct {
	Hash    string `json:"hash"`
	Source  string `json:"source"` // text format, one declaration per line
	Modules int    `json:"modules"`
}

// Run is one stored analysis run.
type Run struct {
	ID          string `json:"id"`
	CircuitHash string `json:"circuit_hash"`
	Mode        Mode   `json:"mode"`
	Target      string `json:"target,omitempty"`

	// Presses is the press count for tally and the press cap otherwise.
	Presses int  `json:"presses"`
	Confirm bool `json:"confirm,omitempty"`

	// Result is the canonical JSON summary of the outcome.
	Result string `json:"result"`

	Seq int64 `json:"seq"`
}

// PressRecord is the tally of one press of a run.
type PressRecord struct {
	Press   int   `json:"press"`
	Low     int64 `json:"low"`
	High    int64 `json:"high"`
	Signals int   `json:"signals"`
}

// FeederRecord is a feeder cycle observed by a period run.
type FeederRecord struct {
	Feeder string `json:"feeder"`
	First  int    `json:"first"`
	Second int    `json:"second,omitempty"`
}
