package store

import (
	"context"
	"fmt"

	"github.com/roach88/pulsenet/internal/queryir"
	"github.com/roach88/pulsenet/internal/querysql"
)

// HistorySchema lists the queryable columns of the history tables.
var HistorySchema = queryir.Schema{
	"circuits":      {"hash", "source", "modules"},
	"runs":          runColumns,
	"press_stats":   {"run_id", "press", "low", "high", "signals"},
	"feeder_cycles": {"run_id", "feeder", "first_press", "second_press"},
}

// runColumns is the column order scanRun expects.
var runColumns = []string{"id", "circuit_hash", "mode", "target", "presses", "confirm", "result", "seq"}

// QueryRuns returns the runs accepted by filter, in insertion order. A nil
// filter returns every run. Returns an empty slice (not nil) when nothing
// matches.
func (s *Store) QueryRuns(ctx context.Context, filter queryir.Predicate) ([]Run, error) {
	q := queryir.Select{From: "runs", Columns: runColumns, Filter: filter}
	if err := queryir.Validate(q, HistorySchema); err != nil {
		return nil, err
	}
	query, params, err := querysql.NewSQLCompiler().Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile run query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
