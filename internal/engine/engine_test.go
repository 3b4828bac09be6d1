package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/testutil"
)

// oscillator never settles: x and y keep flipping each other.
const oscillator = `broadcaster -> x
&x -> y
&y -> x`

func mustCircuit(t *testing.T, text string) *circuit.Circuit {
	t.Helper()
	c, err := circuit.FromText(text)
	require.NoError(t, err)
	return c
}

// recordTrace returns an option that appends every delivered signal to
// *out, rendered with its press number.
func recordTrace(out *[]string) Option {
	return WithTrace(func(s ir.Signal) {
		*out = append(*out, s.String())
	})
}

func TestEngine_New(t *testing.T) {
	e := New(mustCircuit(t, testutil.ScenarioA))

	assert.NotNil(t, e.clock)
	assert.NotNil(t, e.queue)
	assert.Equal(t, DefaultMaxSignals, e.maxSignals)
	assert.Equal(t, 0, e.Presses())
	assert.Len(t, e.RunID(), 36, "default run id is a UUID")
}

func TestEngine_WithRunID(t *testing.T) {
	e := New(mustCircuit(t, testutil.ScenarioA), WithRunID("run-a"))
	assert.Equal(t, "run-a", e.RunID())

	e = New(mustCircuit(t, testutil.ScenarioA), WithRunIDGenerator(NewFixedGenerator("gen-1")))
	assert.Equal(t, "gen-1", e.RunID())
}

func TestEngine_ScenarioA_FirstPress(t *testing.T) {
	var trace []string
	e := New(mustCircuit(t, testutil.ScenarioA), recordTrace(&trace))

	stats, err := e.Press(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PressStats{Press: 1, Low: 8, High: 4, Signals: 12}, stats)
	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"broadcaster -low-> a",
		"broadcaster -low-> b",
		"broadcaster -low-> c",
		"a -high-> b",
		"b -high-> c",
		"c -high-> inv",
		"inv -low-> a",
		"a -low-> b",
		"b -low-> c",
		"c -low-> inv",
		"inv -high-> a",
	}, trace)
}

func TestEngine_ScenarioB_FirstPress(t *testing.T) {
	var trace []string
	e := New(mustCircuit(t, testutil.ScenarioB), recordTrace(&trace))

	stats, err := e.Press(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Low)
	assert.Equal(t, int64(4), stats.High)
	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"broadcaster -low-> a",
		"a -high-> inv",
		"a -high-> con",
		"inv -low-> b",
		"con -high-> output",
		"b -high-> con",
		"con -low-> output",
	}, trace)
}

func TestEngine_ThousandPresses(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		low     int64
		high    int64
		signals int
	}{
		{"scenario A", testutil.ScenarioA, 8000, 4000, 12000},
		{"scenario B", testutil.ScenarioB, 4250, 2750, 7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(mustCircuit(t, tt.text))

			total, err := e.PressN(context.Background(), 1000)
			require.NoError(t, err)

			low, high := e.Totals()
			assert.Equal(t, tt.low, low)
			assert.Equal(t, tt.high, high)
			assert.Equal(t, tt.low, total.Low)
			assert.Equal(t, tt.high, total.High)
			assert.Equal(t, tt.signals, total.Signals)
			assert.Equal(t, 1000, total.Press)
			assert.Equal(t, 1000, e.Presses())
		})
	}
}

func TestEngine_PressesTwoToFour(t *testing.T) {
	for text, want := range map[string]int{
		testutil.ScenarioA: 36,
		testutil.ScenarioB: 20,
	} {
		e := New(mustCircuit(t, text))
		_, err := e.Press(context.Background())
		require.NoError(t, err)

		total, err := e.PressN(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, want, total.Signals)
		assert.Equal(t, 4, total.Press)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	run := func() ([]string, string) {
		var trace []string
		c := mustCircuit(t, testutil.ScenarioB)
		e := New(c, recordTrace(&trace))
		_, err := e.PressN(context.Background(), 7)
		require.NoError(t, err)
		return trace, c.StateKey()
	}

	trace1, state1 := run()
	trace2, state2 := run()
	assert.Equal(t, trace1, trace2)
	assert.Equal(t, state1, state2)
}

func TestEngine_Conservation(t *testing.T) {
	text, _ := testutil.CounterCircuit(3, 5, 7, 11)
	delivered := 0
	e := New(mustCircuit(t, text), WithTrace(func(ir.Signal) { delivered++ }))

	for range 50 {
		before := delivered
		st, err := e.Press(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(st.Signals), st.Low+st.High)
		assert.Equal(t, st.Signals, delivered-before)
	}
}

func TestEngine_SeqAndPressStamps(t *testing.T) {
	var signals []ir.Signal
	e := New(mustCircuit(t, testutil.ScenarioA), WithTrace(func(s ir.Signal) {
		signals = append(signals, s)
	}))

	_, err := e.PressN(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, signals, 24)

	for i, s := range signals {
		assert.Equal(t, int64(i+1), s.Seq)
		if i < 12 {
			assert.Equal(t, 1, s.Press)
		} else {
			assert.Equal(t, 2, s.Press)
		}
	}
	assert.Equal(t, int64(24), e.Clock().Current())
}

func TestEngine_WithClock(t *testing.T) {
	var first int64
	e := New(mustCircuit(t, testutil.ScenarioA),
		WithClock(NewClockAt(100)),
		WithTrace(func(s ir.Signal) {
			if first == 0 {
				first = s.Seq
			}
		}),
	)

	_, err := e.Press(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(101), first)
}

func TestEngine_Watchers(t *testing.T) {
	var toOutput, fromInv []string
	e := New(mustCircuit(t, testutil.ScenarioB))
	e.OnDestination("output", func(s ir.Signal) { toOutput = append(toOutput, s.String()) })
	e.OnSource("inv", func(s ir.Signal) { fromInv = append(fromInv, s.String()) })

	_, err := e.Press(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"con -high-> output", "con -low-> output"}, toOutput)
	assert.Equal(t, []string{"inv -low-> b"}, fromInv)
}

func TestEngine_NonTermination(t *testing.T) {
	e := New(mustCircuit(t, oscillator), WithMaxSignals(100))

	_, err := e.Press(context.Background())
	require.Error(t, err)

	var se *SignalsExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Press)
	assert.Equal(t, 101, se.Signals)
	assert.Equal(t, 100, se.Limit)
	assert.True(t, IsNonTermination(err))
	assert.Equal(t, 0, e.queue.Len(), "queue is cleared on abort")

	// The engine refuses to continue from a half-finished press.
	_, err = e.Press(context.Background())
	require.Error(t, err)
	assert.True(t, IsNonTermination(err))
	assert.Equal(t, 1, e.Presses())
}

func TestEngine_QuotaIsPerPress(t *testing.T) {
	// Scenario A delivers exactly 12 signals per press.
	e := New(mustCircuit(t, testutil.ScenarioA), WithMaxSignals(12))

	total, err := e.PressN(context.Background(), 3)
	require.NoError(t, err, "36 signals over three presses stay within a 12-signal quota")
	assert.Equal(t, 36, total.Signals)

	tight := New(mustCircuit(t, testutil.ScenarioA), WithMaxSignals(11))
	_, err = tight.Press(context.Background())
	require.Error(t, err)
	assert.True(t, IsSignalsExceededError(err))
}

func TestEngine_ContextCancelled(t *testing.T) {
	e := New(mustCircuit(t, testutil.ScenarioA))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Press(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.Presses())

	_, err = e.PressN(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ResetReplaysIdentically(t *testing.T) {
	c := mustCircuit(t, testutil.ScenarioB)

	var first []string
	_, err := New(c, recordTrace(&first)).PressN(context.Background(), 5)
	require.NoError(t, err)

	c.Reset()
	var second []string
	_, err = New(c, recordTrace(&second)).PressN(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
