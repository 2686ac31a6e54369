// Package bubble provides the core types shared by the bubble chart engine.
//
// The package defines the data that flows between the layout components:
//
//   - [Record]: one raw input row, still unparsed
//   - [Node]: a sized, colored, positioned simulation entity
//   - [Point]: a canvas coordinate, used for target centers and pointers
//
// It also owns the error taxonomy. Per-record failures are reported as
// [DataError] and per-tick failures as [NumericFault]; both unwrap to one of
// the package sentinels so callers can use errors.Is.
//
// # Ownership
//
// Once a [Node] has been handed to the force simulation, only the simulation
// writes X, Y, PX and PY. Every other component reads copies.
package bubble
