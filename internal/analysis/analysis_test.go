package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/circuit"
)

func mustCircuit(t *testing.T, text string) *circuit.Circuit {
	t.Helper()
	c, err := circuit.FromText(text)
	require.NoError(t, err)
	return c
}
