package bubble

import (
	"errors"
	"fmt"
)

// Domain errors for chart operations.
var (
	// ErrParse indicates a record whose value field is missing or not a
	// non-negative finite number.
	ErrParse = errors.New("bubble: value is not a non-negative number")

	// ErrMissingID indicates a record without an identifier.
	ErrMissingID = errors.New("bubble: record has no id")

	// ErrDuplicateID indicates a record whose identifier was already used.
	ErrDuplicateID = errors.New("bubble: duplicate record id")

	// ErrNumericInstability indicates a non-finite radius or position.
	ErrNumericInstability = errors.New("bubble: non-finite value in simulation")

	// ErrUnknownMode indicates a mode key nobody registered.
	ErrUnknownMode = errors.New("bubble: unknown layout mode")

	// ErrUnknownNode indicates a node id the simulation does not hold.
	ErrUnknownNode = errors.New("bubble: unknown node")

	// ErrAlreadyInitialized indicates a second Init on the same chart.
	ErrAlreadyInitialized = errors.New("bubble: chart already initialized")

	// ErrNotInitialized indicates an operation before Init.
	ErrNotInitialized = errors.New("bubble: chart not initialized")

	// ErrEmptyDataset indicates that no record survived parsing.
	ErrEmptyDataset = errors.New("bubble: no usable records")
)

// DataError wraps a per-record failure with the record's context.
type DataError struct {
	Index int
	ID    string
	Field string
	Raw   string
	Err   error
}

func (e *DataError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %d: %s %q: %v", e.Index, e.Field, e.Raw, e.Err)
	}
	return fmt.Sprintf("record %d (id %s): %s %q: %v", e.Index, e.ID, e.Field, e.Raw, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NumericFault wraps a per-tick failure of a single node.
type NumericFault struct {
	NodeID string
	Tick   int
	Field  string
	Err    error
}

func (e *NumericFault) Error() string {
	return fmt.Sprintf("tick %d: node %s: %s: %v", e.Tick, e.NodeID, e.Field, e.Err)
}

func (e *NumericFault) Unwrap() error {
	return e.Err
}
