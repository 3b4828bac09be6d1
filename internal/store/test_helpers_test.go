package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCircuit stores a small circuit and returns its record.
func createTestCircuit(t *testing.T, s *Store) CircuitRecord {
	t.Helper()
	c := CircuitRecord{
		Hash:    "circuit-hash-1",
		Source:  "broadcaster -> a\n%a -> rx",
		Modules: 2,
	}
	if err := s.WriteCircuit(context.Background(), c); err != nil {
		t.Fatalf("WriteCircuit() failed: %v", err)
	}
	return c
}

// createTestRun builds a tally run against circuitHash.
func createTestRun(id, circuitHash string) Run {
	return Run{
		ID:          id,
		CircuitHash: circuitHash,
		Mode:        ModeTally,
		Presses:     3,
		Result:      `{"high":4,"low":8}`,
	}
}
