package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pulsenet/internal/ir"
)

func TestCounterCircuit_Layout(t *testing.T) {
	text, feeders := CounterCircuit(3, 5)

	want := `broadcaster -> a00, b00
%a00 -> ahub, a01
%a01 -> ahub
&ahub -> a00, ainv
&ainv -> gate
%b00 -> bhub, b01
%b01 -> b02
%b02 -> bhub
&bhub -> b00, b01, binv
&binv -> gate
&gate -> rx`
	assert.Equal(t, want, text)
	assert.Equal(t, []ir.ModuleID{"ainv", "binv"}, feeders)
}

func TestCounterCircuit_RejectsTinyPeriod(t *testing.T) {
	assert.Panics(t, func() { CounterCircuit(1) })
}
