package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
)

// recordRuns stores one run of every mode and returns the database path.
func recordRuns(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	runs := []struct {
		id   string
		path string
		spec runSpec
	}{
		{"run-tally", scenarioAPath, runSpec{Mode: store.ModeTally, Presses: 100}},
		{"run-period", countersPath, runSpec{Mode: store.ModePeriod, Confirm: true}},
		{"run-first-low", countersPath, runSpec{Mode: store.ModeFirstLow, Presses: 2000}},
	}
	for _, r := range runs {
		opts := &AnalyzeOptions{
			RootOptions: textOpts(),
			Database:    dbPath,
			RunIDs:      engine.NewFixedGenerator(r.id),
		}
		cmd := NewTallyCommand(opts.RootOptions)
		cmd.SetOut(&bytes.Buffer{})
		require.NoError(t, runAnalyze(opts, r.spec, r.path, cmd), r.id)
	}
	return dbPath
}

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, _, err := executeCommand(NewReplayCommand(textOpts()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	out, _, err := executeCommand(NewReplayCommand(textOpts()), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found")
}

func TestReplayReproducesRuns(t *testing.T) {
	dbPath := recordRuns(t)

	out, _, err := executeCommand(NewReplayCommand(jsonOpts()), "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Equal(t, 3, resp.Data.TotalRuns)

	byID := map[string]ReplayRunResult{}
	for _, r := range resp.Data.Runs {
		byID[r.RunID] = r
		assert.Equal(t, r.Stored, r.Replayed)
	}
	assert.Equal(t, `{"feeders":{"ainv":3,"binv":5,"cinv":7,"dinv":11},"gate":"gate","period":1155}`, byID["run-period"].Stored)
	assert.Equal(t, `{"press":1155}`, byID["run-first-low"].Stored)
}

func TestReplaySingleRunText(t *testing.T) {
	dbPath := recordRuns(t)

	out, _, err := executeCommand(NewReplayCommand(&RootOptions{Format: "text", Verbose: true}), "--db", dbPath, "--run", "run-tally")
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 run(s)")
	assert.Contains(t, out, "✓ Run 1: run-tally (tally)")
	assert.Contains(t, out, `Stored:   {"high":400,"low":800,"presses":100,"product":320000}`)
	assert.Contains(t, out, "✓ All runs reproduced")
}

func TestReplayDetectsMismatch(t *testing.T) {
	dbPath := recordRuns(t)

	c, err := compiler.LoadCircuit(scenarioAPath)
	require.NoError(t, err)
	hash, err := c.Hash()
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.WriteRun(context.Background(), store.Run{
		ID:          "run-tampered",
		CircuitHash: hash,
		Mode:        store.ModeTally,
		Presses:     100,
		Result:      `{"high":1,"low":1,"presses":100,"product":1}`,
	}, nil, nil)
	require.NoError(t, err)
	st.Close()

	out, _, err := executeCommand(NewReplayCommand(textOpts()), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Run 4: run-tampered (tally)")
	assert.Contains(t, out, "✗ Determinism verification failed")
}

func TestReplayUnknownRun(t *testing.T) {
	dbPath := recordRuns(t)

	_, _, err := executeCommand(NewReplayCommand(textOpts()), "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryList(t *testing.T) {
	dbPath := recordRuns(t)

	out, _, err := executeCommand(NewHistoryCommand(textOpts()), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "run-tally")
	assert.Contains(t, out, "run-period")
	assert.Contains(t, out, "1,000,000")
}

func TestHistoryRunDetailJSON(t *testing.T) {
	dbPath := recordRuns(t)

	out, _, err := executeCommand(NewHistoryCommand(jsonOpts()), "--db", dbPath, "--run", "run-period")
	require.NoError(t, err)

	var resp struct {
		RunID string    `json:"run_id"`
		Data  RunDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "run-period", resp.RunID)
	assert.Equal(t, store.ModePeriod, resp.Data.Run.Mode)
	assert.Equal(t, string(ir.DefaultTarget), resp.Data.Run.Target)
	assert.True(t, resp.Data.Run.Confirm)
	require.Len(t, resp.Data.Feeders, 4)
	assert.Equal(t, store.FeederRecord{Feeder: "ainv", First: 3, Second: 6}, resp.Data.Feeders[0])
	assert.Empty(t, resp.Data.Presses)
}

func TestHistoryEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, _, err := executeCommand(NewHistoryCommand(textOpts()), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found")
}

func TestHistoryFilters(t *testing.T) {
	dbPath := recordRuns(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"mode", []string{"--mode", "period"}, []string{"run-period"}},
		{"target", []string{"--target", "rx"}, []string{"run-period", "run-first-low"}},
		{"mode and target", []string{"--mode", "tally", "--target", "rx"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", dbPath}, tt.args...)
			out, _, err := executeCommand(NewHistoryCommand(jsonOpts()), args...)
			require.NoError(t, err)

			var resp struct {
				Data []store.Run `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			ids := []string{}
			for _, r := range resp.Data {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestHistoryUnknownMode(t *testing.T) {
	dbPath := recordRuns(t)

	_, _, err := executeCommand(NewHistoryCommand(textOpts()), "--db", dbPath, "--mode", "sweep")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown mode "sweep"`)
}
