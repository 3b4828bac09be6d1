package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDecls() []Declaration {
	return []Declaration{
		{Name: "broadcaster", Kind: KindBroadcaster, Destinations: []ModuleID{"a", "b"}},
		{Name: "a", Kind: KindFlipFlop, Destinations: []ModuleID{"inv"}},
		{Name: "b", Kind: KindFlipFlop, Destinations: []ModuleID{"inv"}},
		{Name: "inv", Kind: KindConjunction, Destinations: []ModuleID{"a", "rx"}},
	}
}

func TestCircuitHashDeterminism(t *testing.T) {
	h1, err := CircuitHash(sampleDecls())
	require.NoError(t, err)
	h2, err := CircuitHash(sampleDecls())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestCircuitHashIgnoresDeclarationOrder(t *testing.T) {
	decls := sampleDecls()
	reversed := make([]Declaration, len(decls))
	for i, d := range decls {
		reversed[len(decls)-1-i] = d
	}

	h1, err := CircuitHash(decls)
	require.NoError(t, err)
	h2, err := CircuitHash(reversed)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestCircuitHashChangesWithTopology(t *testing.T) {
	base, err := CircuitHash(sampleDecls())
	require.NoError(t, err)

	reordered := sampleDecls()
	reordered[0].Destinations = []ModuleID{"b", "a"}
	h, err := CircuitHash(reordered)
	require.NoError(t, err)
	assert.NotEqual(t, base, h, "destination order is significant")

	rekinded := sampleDecls()
	rekinded[3].Kind = KindFlipFlop
	h, err = CircuitHash(rekinded)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)
}

func TestCircuitHashDuplicate(t *testing.T) {
	decls := append(sampleDecls(), Declaration{Name: "a", Kind: KindFlipFlop})
	_, err := CircuitHash(decls)
	assert.Error(t, err)
}
