package eval

import "fmt"

// The closed error taxonomy from spec §7, grounded 1:1 on the original
// Rust implementation's RuntimeError enum (original_source/interpreter/src/types.rs).
// Propagation is non-recoverable: the first error aborts the current phase.

type TypeMismatch struct{ Msg string }

func (e *TypeMismatch) Error() string { return fmt.Sprintf("TypeMismatch(%s)", e.Msg) }

type IllegalOperation struct{ Msg string }

func (e *IllegalOperation) Error() string { return fmt.Sprintf("IllegalOperation(%s)", e.Msg) }

type DivisionByZero struct{}

func (e *DivisionByZero) Error() string { return "DivisionByZero" }

type VariableNotFound struct{ Name string }

func (e *VariableNotFound) Error() string { return fmt.Sprintf("VariableNotFound(%s)", e.Name) }

type VariableUninitialized struct{ Name string }

func (e *VariableUninitialized) Error() string {
	return fmt.Sprintf("VariableUninitialized(%s)", e.Name)
}

type NameConflict struct{ Msg string }

func (e *NameConflict) Error() string { return fmt.Sprintf("NameConflict(%s)", e.Msg) }

type IllegalArgumentCount struct{ Count int }

func (e *IllegalArgumentCount) Error() string {
	return fmt.Sprintf("IllegalArgumentCount(%d)", e.Count)
}

type IllegalReturn struct{}

func (e *IllegalReturn) Error() string { return "IllegalReturn" }

type InvalidType struct{ Name string }

func (e *InvalidType) Error() string { return fmt.Sprintf("InvalidType(%s)", e.Name) }
