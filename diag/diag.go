// Package diag defines the fatal errors raised by the semantic passes.
//
// A pass aborts on its first error. Internally the error travels as a panic
// carrying a breakout value. Catch, deferred at the pass entry point, turns
// it back into an ordinary error return.
package diag

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/andrewchambers/cfront/cpp"
)

type Kind int

const (
	// StructuralViolation is an attempt to build a malformed tree.
	StructuralViolation Kind = iota + 1
	// UnhandledOperator is an operator token with no node mapping.
	UnhandledOperator
	// MissingRequiredChild is a node lacking a child the pass depends on.
	MissingRequiredChild
	// DuplicateSymbol is a second symbol of one name in one scope and namespace.
	DuplicateSymbol
)

var kindToStr = [...]string{
	StructuralViolation:  "structural violation",
	UnhandledOperator:    "unhandled operator",
	MissingRequiredChild: "missing required child",
	DuplicateSymbol:      "duplicate symbol",
}

func (k Kind) String() string {
	if k <= 0 || int(k) >= len(kindToStr) {
		return "unknown error"
	}
	return kindToStr[k]
}

type Error struct {
	Kind Kind
	Pos  cpp.FilePos
	Msg  string
	// Stack is the goroutine stack at the point of failure, set when
	// CCDEBUG=true.
	Stack []byte
}

func Errorf(kind Kind, pos cpp.FilePos, format string, args ...interface{}) *Error {
	e := &Error{
		Kind: kind,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
	if os.Getenv("CCDEBUG") == "true" {
		e.Stack = debug.Stack()
	}
	return e
}

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Msg, e.Pos)
}

// Position is the location the report caret points at.
func (e *Error) Position() cpp.FilePos {
	return e.Pos
}

// Is reports whether err is, or wraps, a diag error of the given kind.
func Is(err error, kind Kind) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == kind
}

type breakout struct {
	err error
}

// Abort stops the running pass with err.
func Abort(err error) {
	panic(breakout{err})
}

// Catch recovers an Abort and stores its error in *errp. Panics that did
// not come from Abort are re-raised.
func Catch(errp *error) {
	if e := recover(); e != nil {
		b, ok := e.(breakout)
		if !ok {
			panic(e)
		}
		*errp = b.err
	}
}
