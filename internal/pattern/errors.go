package pattern

import (
	"errors"
	"fmt"
)

// Error represents a contract violation detected while validating or
// converting a pattern.
//
// The taxonomy is shared by the validation pass and the conversion engine
// so callers inspect one error shape regardless of which layer caught the
// violation first. Every Error identifies the offending command's position
// in the stream (Pos) when one exists.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Pos is the zero-based index of the offending command in the stream,
	// or -1 when the error is not attributable to a single command
	// (e.g. an unbound output detected at stream end).
	Pos int

	// Node is the offending node identifier, or -1 when not applicable.
	Node NodeID

	// Message is a human-readable description.
	Message string

	// Err holds a wrapped backend failure for ErrCodeBackendEmission.
	// The engine propagates it opaquely and never interprets it.
	Err error
}

// ErrorCode categorizes pattern and conversion errors.
type ErrorCode string

const (
	// ErrCodeStructural indicates an unknown node reference, a
	// double-Prepare, use of an unbound node, or a double measurement.
	ErrCodeStructural ErrorCode = "STRUCTURAL"

	// ErrCodeDomain indicates a correction or measurement domain naming a
	// node not yet measured at that point in the stream.
	ErrCodeDomain ErrorCode = "DOMAIN"

	// ErrCodeUnsupportedClifford indicates a Clifford index outside [0,24).
	ErrCodeUnsupportedClifford ErrorCode = "UNSUPPORTED_CLIFFORD_INDEX"

	// ErrCodeIncompleteOutput indicates a declared output node with no
	// bound wire at stream end.
	ErrCodeIncompleteOutput ErrorCode = "INCOMPLETE_OUTPUT"

	// ErrCodeBackendEmission indicates the target backend itself failed.
	ErrCodeBackendEmission ErrorCode = "BACKEND_EMISSION"
)

// Error implements the error interface. A wrapped backend cause is part
// of the formatted message, not just the unwrap chain.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	switch {
	case e.Pos >= 0 && e.Node >= 0:
		return fmt.Sprintf("%s: %s (command=%d, node=%d)", e.Code, msg, e.Pos, e.Node)
	case e.Pos >= 0:
		return fmt.Sprintf("%s: %s (command=%d)", e.Code, msg, e.Pos)
	case e.Node >= 0:
		return fmt.Sprintf("%s: %s (node=%d)", e.Code, msg, e.Node)
	default:
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
}

// Unwrap exposes the wrapped backend error, if any.
func (e *Error) Unwrap() error { return e.Err }

// IsStructural reports whether err is a structural pattern error.
// Uses errors.As to handle wrapped errors.
func IsStructural(err error) bool { return hasCode(err, ErrCodeStructural) }

// IsDomain reports whether err is a domain reference error.
func IsDomain(err error) bool { return hasCode(err, ErrCodeDomain) }

// IsUnsupportedClifford reports whether err is an out-of-range Clifford
// index error.
func IsUnsupportedClifford(err error) bool { return hasCode(err, ErrCodeUnsupportedClifford) }

// IsIncompleteOutput reports whether err is an unbound-output error.
func IsIncompleteOutput(err error) bool { return hasCode(err, ErrCodeIncompleteOutput) }

// IsBackendEmission reports whether err wraps a backend emission failure.
func IsBackendEmission(err error) bool { return hasCode(err, ErrCodeBackendEmission) }

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// NewStructuralError creates a structural Error at a command position.
func NewStructuralError(pos int, node NodeID, format string, args ...any) *Error {
	return &Error{Code: ErrCodeStructural, Pos: pos, Node: node, Message: fmt.Sprintf(format, args...)}
}

// NewDomainError creates a domain reference Error at a command position.
func NewDomainError(pos int, node NodeID, format string, args ...any) *Error {
	return &Error{Code: ErrCodeDomain, Pos: pos, Node: node, Message: fmt.Sprintf(format, args...)}
}

// NewCliffordIndexError creates an out-of-range Clifford index Error.
func NewCliffordIndexError(pos int, node NodeID, index int) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedClifford,
		Pos:     pos,
		Node:    node,
		Message: fmt.Sprintf("clifford index %d outside [0,%d)", index, CliffordOrder),
	}
}

// NewIncompleteOutputError creates an unbound-output Error. Pos is -1:
// the violation is only observable at stream end.
func NewIncompleteOutputError(node NodeID) *Error {
	return &Error{
		Code:    ErrCodeIncompleteOutput,
		Pos:     -1,
		Node:    node,
		Message: "declared output node has no live wire at stream end",
	}
}

// NewBackendEmissionError wraps a backend failure at a command position.
func NewBackendEmissionError(pos int, node NodeID, err error) *Error {
	return &Error{
		Code:    ErrCodeBackendEmission,
		Pos:     pos,
		Node:    node,
		Message: "backend emission failed",
		Err:     err,
	}
}
