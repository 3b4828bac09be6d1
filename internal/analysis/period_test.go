package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/testutil"
)

func TestFindFeeders_Counters(t *testing.T) {
	text, feeders := testutil.CounterCircuit(3, 5, 7, 11)
	gate, got, err := FindFeeders(mustCircuit(t, text), ir.DefaultTarget)
	require.NoError(t, err)

	assert.Equal(t, testutil.CounterGate, gate)
	assert.Equal(t, feeders, got)
}

func TestFindFeeders_StructureViolations(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target ir.ModuleID
		want   string
	}{
		{
			name:   "no upstream",
			text:   testutil.ScenarioA,
			target: "rx",
			want:   "found 0",
		},
		{
			name:   "two upstream",
			text:   "broadcaster -> a, b\n%a -> rx\n%b -> rx",
			target: "rx",
			want:   "found 2",
		},
		{
			name:   "gate is a flip-flop",
			text:   "broadcaster -> a\n%a -> rx",
			target: "rx",
			want:   "gate must be a conjunction, is flipflop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FindFeeders(mustCircuit(t, tt.text), tt.target)
			require.Error(t, err)
			assert.True(t, engine.IsStructureError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPeriod_SmallCounters(t *testing.T) {
	text, _ := testutil.CounterCircuit(3, 5, 7, 11)

	res, err := Period(context.Background(), mustCircuit(t, text), ir.DefaultTarget)
	require.NoError(t, err)

	assert.Equal(t, int64(1155), res.Period)
	assert.Equal(t, testutil.CounterGate, res.Gate)
	assert.Equal(t, 11, res.Presses)
	assert.Equal(t, []FeederCycle{
		{Feeder: "ainv", First: 3},
		{Feeder: "binv", First: 5},
		{Feeder: "cinv", First: 7},
		{Feeder: "dinv", First: 11},
	}, res.Feeders)
}

func TestPeriod_AgreesWithFirstLow(t *testing.T) {
	text, _ := testutil.CounterCircuit(3, 5, 7, 11)
	c := mustCircuit(t, text)

	period, err := Period(context.Background(), c, ir.DefaultTarget)
	require.NoError(t, err)
	brute, err := FirstLow(context.Background(), c, ir.DefaultTarget, 2000)
	require.NoError(t, err)

	assert.Equal(t, int64(brute.Press), period.Period)
	assert.Equal(t, 1155, brute.Press)
}

func TestPeriod_LargeCounters(t *testing.T) {
	text, _ := testutil.CounterCircuit(3739, 3761, 3797, 3889)

	res, err := Period(context.Background(), mustCircuit(t, text), ir.DefaultTarget)
	require.NoError(t, err)

	assert.Equal(t, int64(207652583562007), res.Period)
	assert.Equal(t, 3889, res.Presses)
}

func TestPeriod_Confirmation(t *testing.T) {
	text, _ := testutil.CounterCircuit(3739, 3761, 3797, 3889)

	res, err := Period(context.Background(), mustCircuit(t, text), ir.DefaultTarget, WithConfirmation())
	require.NoError(t, err)

	assert.Equal(t, int64(207652583562007), res.Period)
	assert.Equal(t, 7778, res.Presses)
	assert.Equal(t, FeederCycle{Feeder: "ainv", First: 3739, Second: 7478}, res.Feeders[0])
}

func TestPeriod_ConfirmationRejectsAperiodicFeeder(t *testing.T) {
	// An even period leaves the counter out of phase after its first
	// firing: ainv fires at 6 and then 13.
	text, _ := testutil.CounterCircuit(6, 9)
	c := mustCircuit(t, text)

	unchecked, err := Period(context.Background(), c, ir.DefaultTarget)
	require.NoError(t, err)
	assert.Equal(t, int64(18), unchecked.Period)

	brute, err := FirstLow(context.Background(), c, ir.DefaultTarget, 100)
	require.NoError(t, err)
	assert.Equal(t, 27, brute.Press, "the unchecked answer is wrong")

	_, err = Period(context.Background(), c, ir.DefaultTarget, WithConfirmation())
	require.Error(t, err)
	assert.True(t, engine.IsStructureError(err))
	assert.Contains(t, err.Error(), "fired at presses 6 and 13")
}

func TestPeriod_PressLimit(t *testing.T) {
	text, _ := testutil.CounterCircuit(3, 5)

	_, err := Period(context.Background(), mustCircuit(t, text), ir.DefaultTarget, WithMaxPresses(4))
	require.Error(t, err)
	assert.True(t, engine.IsPressLimit(err))

	var re *engine.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "[binv]", re.Details["pending"])
}

func TestPeriod_ScenarioBOutput(t *testing.T) {
	c := mustCircuit(t, testutil.ScenarioB)

	res, err := Period(context.Background(), c, "output")
	require.NoError(t, err)
	assert.Equal(t, ir.ModuleID("con"), res.Gate)
	assert.Equal(t, int64(1), res.Period)

	brute, err := FirstLow(context.Background(), c, "output", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, brute.Press)
}

func TestPeriod_ContextCancelled(t *testing.T) {
	text, _ := testutil.CounterCircuit(3, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Period(ctx, mustCircuit(t, text), ir.DefaultTarget)
	require.ErrorIs(t, err, context.Canceled)
}
