package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	circuitsDir  = "../../testdata/circuits"
	scenariosDir = "../../testdata/scenarios"
)

var (
	scenarioAPath = filepath.Join(circuitsDir, "scenario_a.txt")
	scenarioBPath = filepath.Join(circuitsDir, "scenario_b.cue")
	countersPath  = filepath.Join(circuitsDir, "counters_3_5_7_11.txt")
)

// executeCommand runs cmd with args and returns stdout and stderr.
func executeCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeCircuit writes a circuit to a temp file and returns its path.
func writeCircuit(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func textOpts() *RootOptions { return &RootOptions{Format: "text"} }
func jsonOpts() *RootOptions { return &RootOptions{Format: "json"} }
