package store

import (
	"context"
	"fmt"
)

// WriteCircuit stores a circuit description. Uses ON CONFLICT(hash) DO
// NOTHING: a circuit is identified by its hash, so writing it again is a
// no-op.
func (s *Store) WriteCircuit(ctx context.Context, c CircuitRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO circuits (hash, source, modules)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, c.Hash, c.Source, c.Modules)
	if err != nil {
		return fmt.Errorf("write circuit: %w", err)
	}
	return nil
}

// WriteRun stores a run together with its press tallies and feeder
// cycles in one transaction, and returns the seq assigned to it.
//
// The referenced circuit must already be stored (foreign key
// constraint). A run id can only be written once.
func (s *Store) WriteRun(ctx context.Context, run Run, presses []PressRecord, feeders []FeederRecord) (int64, error) {
	if !run.Mode.Valid() {
		return 0, fmt.Errorf("write run: invalid mode %q", run.Mode)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, circuit_hash, mode, target, presses, confirm, result, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CircuitHash,
		string(run.Mode),
		run.Target,
		run.Presses,
		run.Confirm,
		run.Result,
		seq,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	if len(presses) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO press_stats (run_id, press, low, high, signals)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return 0, fmt.Errorf("write run: prepare press stats: %w", err)
		}
		defer stmt.Close()

		for _, p := range presses {
			if _, err := stmt.ExecContext(ctx, run.ID, p.Press, p.Low, p.High, p.Signals); err != nil {
				return 0, fmt.Errorf("write run: press %d: %w", p.Press, err)
			}
		}
	}

	for _, f := range feeders {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO feeder_cycles (run_id, feeder, first_press, second_press)
			VALUES (?, ?, ?, ?)
		`, run.ID, f.Feeder, f.First, f.Second)
		if err != nil {
			return 0, fmt.Errorf("write run: feeder %s: %w", f.Feeder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}
