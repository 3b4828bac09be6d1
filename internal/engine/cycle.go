package engine

// StateCycleDetector remembers the circuit state after each press and
// reports when a state comes back.
//
// Because a press is a pure function of circuit state, the first repeat
// fixes the rest of the run: if the state after press k equals the state
// after press j (j < k), the presses from j+1 to k repeat forever. Callers
// feed it Circuit.StateKey values.
type StateCycleDetector struct {
	seen map[string]int // state key -> press after which it was seen
}

// NewStateCycleDetector creates a detector that already knows the
// construction-time state as press 0.
func NewStateCycleDetector(initial string) *StateCycleDetector {
	return &StateCycleDetector{
		seen: map[string]int{initial: 0},
	}
}

// Observe records the state after press. If the state was seen before it
// returns the earlier press and true, and records nothing.
func (d *StateCycleDetector) Observe(press int, key string) (int, bool) {
	if first, ok := d.seen[key]; ok {
		return first, true
	}
	d.seen[key] = press
	return 0, false
}

// Size returns the number of distinct states recorded.
func (d *StateCycleDetector) Size() int {
	return len(d.seen)
}
