// Package ic3err defines the error taxonomy shared by every engine
// component: trivial-circuit results, budget exhaustion, internal
// invariant violations, and self-check failures.
package ic3err

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error the way the engine's callers need to branch on it.
type Kind int

const (
	// KindTrivial marks a result decided without running PDR at all
	// (empty circuit, constant constraint/bad wire, complementary literals).
	KindTrivial Kind = iota
	// KindBudget marks timeout or max-depth exhaustion.
	KindBudget
	// KindInternal marks a violated engine invariant (non-canonical clause,
	// redundancy slipping past a check, solver desync). Fail-fast.
	KindInternal
	// KindSelfCheck marks a failure of the proof or counterexample self-checker.
	KindSelfCheck
)

func (k Kind) String() string {
	switch k {
	case KindTrivial:
		return "trivial"
	case KindBudget:
		return "budget"
	case KindInternal:
		return "internal"
	case KindSelfCheck:
		return "self-check"
	default:
		return "unknown"
	}
}

// Error is the engine's uniform error type, carrying which component raised
// it, which operation was in flight, and a Kind for caller dispatch.
type Error struct {
	Component string
	Op        string
	Kind      Kind
	Message   string
	cause     error
}

func (e *Error) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s: %s.%s: %s", e.Kind, e.Component, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(component, op string, kind Kind, message string) *Error {
	return &Error{Component: component, Op: op, Kind: kind, Message: message}
}

// Wrap attaches a Kind and component/op context to a lower-layer error
// (SAT solver, BDD manager) using github.com/pkg/errors so the original
// stack trace survives.
func Wrap(cause error, component, op string, kind Kind) *Error {
	return &Error{
		Component: component,
		Op:        op,
		Kind:      kind,
		Message:   cause.Error(),
		cause:     errors.Wrap(cause, op),
	}
}

// Internal is a convenience constructor for fail-fast invariant violations.
func Internal(component, op, message string) *Error {
	return New(component, op, KindInternal, message)
}

// IsKind reports whether err is an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
