package game

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures. Every kind except Internal is
// recoverable: the engine guarantees no state was mutated.
type ErrorKind uint8

const (
	KindInvalidInput ErrorKind = iota
	KindInvalidMove
	KindNotFound
	KindGameAlreadyEnded
	KindPolicyViolation
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidMove:
		return "invalid_move"
	case KindNotFound:
		return "not_found"
	case KindGameAlreadyEnded:
		return "game_already_ended"
	case KindPolicyViolation:
		return "policy_violation"
	case KindInternal:
		return "internal"
	default:
		return "?"
	}
}

// Error carries a kind plus a human-readable reason.
type Error struct {
	Kind   ErrorKind
	Reason string
	err    error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.err }

// Is matches any *Error with the same kind, so callers can compare
// against the kind sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Kind sentinels for errors.Is comparisons.
var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrInvalidMove      = &Error{Kind: KindInvalidMove}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrGameAlreadyEnded = &Error{Kind: KindGameAlreadyEnded}
	ErrPolicyViolation  = &Error{Kind: KindPolicyViolation}
	ErrInternal         = &Error{Kind: KindInternal}
)

func invalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Reason: fmt.Sprintf(format, args...)}
}

func invalidMove(format string, args ...any) error {
	return &Error{Kind: KindInvalidMove, Reason: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func policyViolation(format string, args ...any) error {
	return &Error{Kind: KindPolicyViolation, Reason: fmt.Sprintf(format, args...)}
}

func internalError(err error) error {
	return &Error{Kind: KindInternal, Reason: err.Error(), err: err}
}
