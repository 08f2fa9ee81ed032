package eventbus

import (
	"errors"
	"fmt"
)

var (
	ErrNilEvent          = errors.New("nil event cannot be posted")
	ErrMultiEventPosted  = errors.New("a MultiEvent cannot be posted directly")
	ErrUnregisteredOwner = errors.New("owner has no registered handlers")
	ErrNilOwner          = errors.New("owner cannot be nil")
	ErrUncomparableOwner = errors.New("owner type is not comparable")
	ErrNilDescriptor     = errors.New("descriptor cannot be nil")
	ErrHandlerPanic      = errors.New("handler panicked")
	ErrOwnerMismatch     = errors.New("owner type does not match handler")
	ErrEventMismatch     = errors.New("event type does not match handler")
	ErrLoopStopped       = errors.New("loop is stopped")
)

// Fault is a failure raised by a handler while the [Bus] was draining.
// Faults are replayed to every [FaultObserver] after the dispatch queue empties, in the order they occurred.
type Fault struct {
	Err   error // Err is the error returned by the handler, or a *[PanicError] if it panicked.
	Owner any   // Owner is the owner of the failing handler at the time of the failure.
	Event any   // Event is the value that was being delivered.
}

func (f *Fault) Error() string {
	return fmt.Sprintf("handler for owner %T failed to handle event %T: %v", f.Owner, f.Event, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// PanicError wraps a value recovered from a panicking handler.
// It matches [ErrHandlerPanic] with [errors.Is].
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrHandlerPanic, e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
