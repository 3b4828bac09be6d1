package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/circuit"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCircuit_TextAndCUEAgree(t *testing.T) {
	txt := writeFile(t, "b.txt", "broadcaster -> a\n%a -> inv, con\n&inv -> b\n%b -> con\n&con -> output\n")
	cue := writeFile(t, "b.cue", scenarioBCUE)

	fromText, err := LoadCircuit(txt)
	require.NoError(t, err)
	fromCUE, err := LoadCircuit(cue)
	require.NoError(t, err)

	h1, err := fromText.Hash()
	require.NoError(t, err)
	h2, err := fromCUE.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.txt", "broadcaster -> a\n?a -> b\n")
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.True(t, circuit.IsParseError(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadCircuit_ConstructionError(t *testing.T) {
	path := writeFile(t, "dup.txt", "broadcaster -> a\n%a -> b\n&a -> b\n")
	_, err := LoadCircuit(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, circuit.ErrDuplicateModule)
}

func TestSourceText_RoundTrip(t *testing.T) {
	text := "broadcaster -> a, b\n%a -> inv\n&inv -> b, rx\n%b -> inv"
	decls, err := circuit.ParseString(text)
	require.NoError(t, err)

	assert.Equal(t, text, SourceText(decls))
}
