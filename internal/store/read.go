package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested run or circuit does not exist.
var ErrNotFound = errors.New("not found")

// ReadCircuit returns the circuit stored under hash.
func (s *Store) ReadCircuit(ctx context.Context, hash string) (CircuitRecord, error) {
	var c CircuitRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, source, modules FROM circuits WHERE hash = ?
	`, hash).Scan(&c.Hash, &c.Source, &c.Modules)
	if errors.Is(err, sql.ErrNoRows) {
		return CircuitRecord{}, fmt.Errorf("circuit %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return CircuitRecord{}, fmt.Errorf("read circuit: %w", err)
	}
	return c, nil
}

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, circuit_hash, mode, target, presses, confirm, result, seq
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run in insertion order.
// Returns an empty slice (not nil) when the history is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.QueryRuns(ctx, nil)
}

// ReadPressStats returns the stored press tallies of a run, by press.
func (s *Store) ReadPressStats(ctx context.Context, runID string) ([]PressRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT press, low, high, signals
		FROM press_stats
		WHERE run_id = ?
		ORDER BY press ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query press stats: %w", err)
	}
	defer rows.Close()

	records := []PressRecord{}
	for rows.Next() {
		var p PressRecord
		if err := rows.Scan(&p.Press, &p.Low, &p.High, &p.Signals); err != nil {
			return nil, fmt.Errorf("scan press stats: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate press stats: %w", err)
	}
	return records, nil
}

// ReadFeederCycles returns the stored feeder cycles of a run, by feeder.
func (s *Store) ReadFeederCycles(ctx context.Context, runID string) ([]FeederRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT feeder, first_press, second_press
		FROM feeder_cycles
		WHERE run_id = ?
		ORDER BY feeder COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query feeder cycles: %w", err)
	}
	defer rows.Close()

	records := []FeederRecord{}
	for rows.Next() {
		var f FeederRecord
		if err := rows.Scan(&f.Feeder, &f.First, &f.Second); err != nil {
			return nil, fmt.Errorf("scan feeder cycle: %w", err)
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeder cycles: %w", err)
	}
	return records, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run  Run
		mode string
	)
	err := row.Scan(
		&run.ID,
		&run.CircuitHash,
		&mode,
		&run.Target,
		&run.Presses,
		&run.Confirm,
		&run.Result,
		&run.Seq,
	)
	if err != nil {
		return Run{}, err
	}
	run.Mode = Mode(mode)
	return run, nil
}
