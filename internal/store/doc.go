// Package store keeps a SQLite history of analysis runs.
//
// Each run references the circuit it ran against by content hash, so the
// same circuit stored twice is one row. A run records its mode and
// parameters, a canonical JSON summary of its result, and, depending on
// the mode, per-press tallies or feeder cycle observations. Replaying a
// run means re-parsing the stored circuit source, running the same mode
// with the same parameters and comparing summaries byte for byte.
//
// # Ordering
//
// Runs are ordered by seq, an integer assigned on insert. Queries that
// return several rows always end in ORDER BY seq (or press, or feeder
// COLLATE BINARY), never by wall-clock time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
