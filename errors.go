// Package dagsched provides error types for task panics and shutdown
// admission, with cause-chain support via errors.Is/errors.As.
package dagsched

import (
	"errors"
	"fmt"
)

var (
	// ErrShutdown is the cause reported by the Future of a task that was
	// dropped because the backend's admission flag was set before its
	// prerequisites pulsed: that Future resolves with a PanicError whose
	// Unwrap returns ErrShutdown. Scheduler.AddTask and Builder.Start do
	// not return it; they return no error.
	ErrShutdown = errors.New("dagsched: scheduler is shutting down or shut down")

	// ErrNoWorkers is returned by New if WithWorkers is given a zero or
	// negative count; the runtime.NumCPU() default is never affected.
	ErrNoWorkers = errors.New("dagsched: worker pool must have at least one worker")
)

// PanicError wraps a value recovered from a task closure's panic, or the
// ErrShutdown sentinel for a task dropped during exit(Active)/exit(None).
// It is attached to the task's own Future; the task's completion signal
// still pulses (per spec.md's "Panicked ... scheduler treats as Finished
// for dependency purposes").
type PanicError struct {
	// Value is the raw value passed to panic(), or nil if this PanicError
	// instead represents a dropped-pending-task poison (see Dropped).
	Value any
	// Dropped is true when the task never ran at all, because admission
	// was refused while it was still waiting on its prerequisite signal.
	Dropped bool
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Dropped {
		return "dagsched: task dropped during shutdown"
	}
	return fmt.Sprintf("dagsched: task panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error, or
// ErrShutdown if this represents a dropped task. This enables errors.Is
// and errors.As to match through the cause chain.
func (e *PanicError) Unwrap() error {
	if e.Dropped {
		return ErrShutdown
	}
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
