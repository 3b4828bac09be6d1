package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer counts the signals delivered in one press and stops the
// press once a limit is passed.
//
// A circuit whose every feedback loop contains a flip-flop always settles,
// because flip-flops drop High pulses. A loop of conjunctions alone can
// pass pulses around forever; the quota turns that into an error instead
// of a hang.
type QuotaEnforcer struct {
	maxSignals int
	current    int
}

// NewQuotaEnforcer creates an enforcer allowing maxSignals deliveries.
func NewQuotaEnforcer(maxSignals int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSignals: maxSignals}
}

// Check counts one delivery and returns a *SignalsExceededError once the
// count passes the limit.
func (q *QuotaEnforcer) Check(press int) error {
	q.current++
	if q.current > q.maxSignals {
		return &SignalsExceededError{
			Press:   press,
			Signals: q.current,
			Limit:   q.maxSignals,
		}
	}
	return nil
}

// Reset sets the count back to zero. The engine calls it at the start of
// every press, so the limit applies per press.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the number of deliveries counted so far.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// SignalsExceededError is returned when a press does not quiesce within
// the signal quota. The circuit is left mid-press and should be Reset
// before reuse.
type SignalsExceededError struct {
	Press   int // 1-based press that overran
	Signals int // deliveries counted, including the one that overran
	Limit   int
}

func (e *SignalsExceededError) Error() string {
	return fmt.Sprintf("press %d did not settle: %d signals > %d limit",
		e.Press, e.Signals, e.Limit)
}

// Code returns the runtime error code shared with RuntimeError.
func (e *SignalsExceededError) Code() RuntimeErrorCode {
	return ErrCodeNonTermination
}

// IsSignalsExceededError reports whether err wraps a *SignalsExceededError.
func IsSignalsExceededError(err error) bool {
	var se *SignalsExceededError
	return errors.As(err, &se)
}
