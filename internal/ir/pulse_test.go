package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPulseString(t *testing.T) {
	assert.Equal(t, "low", PulseLow.String())
	assert.Equal(t, "high", PulseHigh.String())
	assert.Equal(t, "pulse(0)", Pulse(0).String())
	assert.False(t, Pulse(0).Valid())
}

func TestParsePulse(t *testing.T) {
	p, err := ParsePulse("high")
	require.NoError(t, err)
	assert.Equal(t, PulseHigh, p)

	_, err = ParsePulse("HIGH")
	assert.Error(t, err)
}

func TestPulseJSON(t *testing.T) {
	sig := Signal{Source: "a", Destination: "b", Pulse: PulseLow}
	data, err := json.Marshal(sig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"a","destination":"b","pulse":"low"}`, string(data))

	var back Signal
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sig, back)
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindBroadcaster, KindFlipFlop, KindConjunction} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("inverter")
	assert.Error(t, err)
}

func TestSignalAndDeclarationString(t *testing.T) {
	assert.Equal(t, "button -low-> broadcaster",
		Signal{Source: ButtonID, Destination: BroadcasterID, Pulse: PulseLow}.String())

	d := Declaration{Name: "inv", Kind: KindConjunction, Destinations: []ModuleID{"a", "b"}}
	assert.Equal(t, "&inv -> a, b", d.String())
}
