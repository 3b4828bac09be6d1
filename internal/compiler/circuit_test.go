package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/ir"
)

const scenarioBCUE = `
circuit: {
	broadcaster: {kind: "broadcaster", outputs: ["a"]}
	a:           {kind: "flipflop", outputs: ["inv", "con"]}
	inv:         {kind: "conjunction", outputs: ["b"]}
	b:           {kind: "flipflop", outputs: ["con"]}
	con:         {kind: "conjunction", outputs: ["output"]}
}
`

func TestCompileSource_ScenarioB(t *testing.T) {
	decls, err := CompileSource("b.cue", []byte(scenarioBCUE))
	require.NoError(t, err)
	require.Len(t, decls, 5)

	assert.Equal(t, ir.ModuleID("broadcaster"), decls[0].Name)
	assert.Equal(t, ir.KindBroadcaster, decls[0].Kind)
	assert.Equal(t, ir.ModuleID("a"), decls[1].Name)
	assert.Equal(t, ir.KindFlipFlop, decls[1].Kind)
	assert.Equal(t, []ir.ModuleID{"inv", "con"}, decls[1].Destinations)
	assert.Equal(t, ir.KindConjunction, decls[4].Kind)
	assert.Equal(t, []ir.ModuleID{"output"}, decls[4].Destinations)
}

func TestCompileSource_SameHashAsText(t *testing.T) {
	decls, err := CompileSource("b.cue", []byte(scenarioBCUE))
	require.NoError(t, err)
	fromCUE, err := circuit.New(decls)
	require.NoError(t, err)

	fromText, err := circuit.FromText(`broadcaster -> a
%a -> inv, con
&inv -> b
%b -> con
&con -> output`)
	require.NoError(t, err)

	h1, err := fromCUE.Hash()
	require.NoError(t, err)
	h2, err := fromText.Hash()
	require.NoError(t, err)
	assert.Equal(t, h2, h1)
}

func TestCompileSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing circuit",
			src:  `other: {}`,
			want: "circuit is required",
		},
		{
			name: "empty circuit",
			src:  `circuit: {}`,
			want: "at least one module is required",
		},
		{
			name: "missing kind",
			src:  `circuit: broadcaster: {outputs: ["a"]}`,
			want: "circuit.broadcaster.kind: kind is required",
		},
		{
			name: "unknown kind",
			src:  `circuit: a: {kind: "relay", outputs: ["b"]}`,
			want: `unknown module kind "relay"`,
		},
		{
			name: "missing outputs",
			src:  `circuit: a: {kind: "flipflop"}`,
			want: "circuit.a.outputs: outputs is required",
		},
		{
			name: "empty outputs",
			src:  `circuit: a: {kind: "flipflop", outputs: []}`,
			want: "at least one output is required",
		},
		{
			name: "empty output name",
			src:  `circuit: a: {kind: "flipflop", outputs: [""]}`,
			want: "empty output name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSource("bad.cue", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestCompileSource_SyntaxError(t *testing.T) {
	_, err := CompileSource("broken.cue", []byte(`circuit: {a: `))
	require.Error(t, err)
}

func TestCompileSource_WrongTypes(t *testing.T) {
	_, err := CompileSource("types.cue", []byte(`circuit: a: {kind: 5, outputs: ["b"]}`))
	require.Error(t, err)

	_, err = CompileSource("types.cue", []byte(`circuit: a: {kind: "flipflop", outputs: "b"}`))
	require.Error(t, err)
}
