package harness

import (
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// TraceEvent is one delivered signal in a recorded trace.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Press int    `json:"press"`
	From  string `json:"from"`
	To    string `json:"to"`
	Pulse string `json:"pulse"`
}

func newTraceEvent(s ir.Signal) TraceEvent {
	return TraceEvent{
		Seq:   s.Seq,
		Press: s.Press,
		From:  string(s.Source),
		To:    string(s.Destination),
		Pulse: s.Pulse.String(),
	}
}

// String renders the event like ir.Signal: "a -high-> b".
func (e TraceEvent) String() string {
	return fmt.Sprintf("%s -%s-> %s", e.From, e.Pulse, e.To)
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the signals of the first TracePresses presses.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Outcome fields; only those relevant to the mode are set.
	RunID     string         `json:"run_id"`
	Low       int64          `json:"low,omitempty"`
	High      int64          `json:"high,omitempty"`
	Product   int64          `json:"product,omitempty"`
	Period    int64          `json:"period,omitempty"`
	Press     int            `json:"press,omitempty"`
	Feeders   map[string]int `json:"feeders,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a delivered signal to the trace.
func (r *Result) AddTrace(s ir.Signal) {
	r.Trace = append(r.Trace, newTraceEvent(s))
}
