package vm

import (
	"fmt"

	"github.com/chazu/vibeswift/pkg/diag"
	"github.com/chazu/vibeswift/pkg/ids"
)

// The runtime error taxonomy. Each is a distinct exported type so
// callers can errors.As instead of string-matching.
type StackUnderflowError struct{ Op string }

func (e StackUnderflowError) Error() string { return "value stack underflow in " + e.Op }

type InvalidLocalIndexError struct{ Index, Count int }

func (e InvalidLocalIndexError) Error() string {
	return fmt.Sprintf("invalid local index %d (frame has %d locals)", e.Index, e.Count)
}

type InvalidConstantIndexError struct{ Index, Count int }

func (e InvalidConstantIndexError) Error() string {
	return fmt.Sprintf("invalid constant index %d (pool has %d entries)", e.Index, e.Count)
}

type UnknownFunctionError struct{ FunctionID ids.FunctionID }

func (e UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function id %d", e.FunctionID)
}

type NotAStructError struct{ Op string }

func (e NotAStructError) Error() string { return e.Op + " on a non-struct value" }

type MissingFieldError struct{ FieldID ids.FieldID }

func (e MissingFieldError) Error() string { return fmt.Sprintf("missing field %d on instance", e.FieldID) }

type EmptyCallStackReturnError struct{}

func (EmptyCallStackReturnError) Error() string { return "return with empty call stack" }

type MakeStructOperandMismatchError struct{ Got, Want int }

func (e MakeStructOperandMismatchError) Error() string {
	return fmt.Sprintf("make_struct operand mismatch: got %d field ids, wanted %d", e.Got, e.Want)
}

type InvalidOpcodeError struct{ Op byte }

func (e InvalidOpcodeError) Error() string { return fmt.Sprintf("invalid opcode %d", e.Op) }

// RuntimeError decorates an underlying error with the failing
// instruction's index, its span (if known), and the call stack
// assembled from the frames live at the moment of failure. Any
// raised error is caught at the top of the run loop and decorated
// this way before being returned to the caller.
type RuntimeError struct {
	Err                    error
	FailingInstructionIndex int
	Span                   *diag.Span
	CallStack              []diag.CallFrame
	SymbolID               *ids.SymbolID
}

func (e *RuntimeError) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%v (at instruction %d, %s)", e.Err, e.FailingInstructionIndex, e.Span)
	}
	return fmt.Sprintf("%v (at instruction %d)", e.Err, e.FailingInstructionIndex)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
