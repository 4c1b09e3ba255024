package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is produced when a panic is recovered at an API boundary.
// Mismatched shapes reaching gonum, for example, panic inside mat and
// surface here instead of crashing the caller.
type PanicError struct {
	PanicValue interface{}
	StackTrace string
	Operation  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError captures the current stack for the given panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error assigned to *err. It must be
// deferred directly:
//
//	func Run() (err error) {
//	    defer errors.Recover(&err, "Run")
//	    ...
//	}
//
// An error already stored in *err is kept as the cause.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	panicErr := NewPanicError(operation, r)
	if *err != nil {
		*err = Wrapf(*err, "%s", panicErr.Error())
		return
	}
	*err = panicErr
}

// SafeExecute runs fn and turns any panic into a *PanicError.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
