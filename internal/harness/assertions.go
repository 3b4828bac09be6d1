package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] press %d: %s\n", ev.Seq, ev.Press, ev)
	}

	return buf.String()
}

// matches reports whether ev satisfies the non-empty selectors of a.
func matches(ev TraceEvent, a Assertion) bool {
	return (a.From == "" || ev.From == a.From) &&
		(a.To == "" || ev.To == a.To) &&
		(a.Pulse == "" || ev.Pulse == a.Pulse)
}

func describe(a Assertion) string {
	from, to, pulse := a.From, a.To, a.Pulse
	if from == "" {
		from = "*"
	}
	if to == "" {
		to = "*"
	}
	if pulse == "" {
		pulse = "*"
	}
	return fmt.Sprintf("%s -%s-> %s", from, pulse, to)
}

// assertTraceContains checks that at least one signal matches.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if matches(ev, a) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describe(a),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the steps occur in order. Other signals
// may come between them.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Steps) && ev.String() == a.Steps[next] {
			next++
		}
	}
	if next == len(a.Steps) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.Steps, " then "),
		Actual:   fmt.Sprintf("matched %d of %d steps, stuck at %q", next, len(a.Steps), a.Steps[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks the exact number of matching signals.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range trace {
		if matches(ev, a) {
			n++
		}
	}
	if n == a.Count {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d x %s", a.Count, describe(a)),
		Actual:   fmt.Sprintf("%d", n),
		Trace:    trace,
	}
}

// EvaluateAssertions runs every assertion against the result's trace and
// returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
