// Package ir provides the value types shared by every layer of pulsenet.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the pulse vocabulary
// (Pulse, ModuleID, Kind, Signal, Declaration) the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Pulse and Kind zero values are invalid, so unset fields are detectable
//   - Signals are ordered by logical sequence numbers only, never wall-clock
//   - Circuit identity is content-addressed (CircuitHash) over canonical JSON
package ir
