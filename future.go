package dagsched

import "sync"

// Future is a signal-gated result slot bound to a task's completion
// signal, grounded on the JobResult pattern used by the sibling
// go-microbatch module: the caller is handed a value immediately, and a
// Wait-style accessor before it may be read. Here, Get plays the role
// JobResult.Wait plays there, additionally returning the task's result
// and any poison error (spec.md §4.5's "result future").
type Future[T any] struct {
	sig   Signal
	mu    sync.Mutex
	value T
	err   error
}

// newFuture creates a Future and the Pulse that resolves it.
func newFuture[T any]() (*Future[T], Pulse) {
	sig, pulse := New()
	return &Future[T]{sig: sig}, pulse
}

// PulsedValue returns a Future that is already resolved with v and a nil
// error - the result-carrying counterpart to Pulsed(), supplementing
// spec.md per SPEC_FULL.md §5 (grounded on fibe-rs's back.rs neutral
// element used when building barriers over a mix of pending and
// already-known values).
func PulsedValue[T any](v T) *Future[T] {
	return &Future[T]{sig: Pulsed(), value: v}
}

// resolve stores the task's outcome and fires pulse, waking every
// registered callback and Wait/Get caller. Called at most once, by the
// fiber runtime when the task's closure finishes or panics.
func (f *Future[T]) resolve(pulse Pulse, value T, err error) {
	f.mu.Lock()
	f.value = value
	f.err = err
	f.mu.Unlock()
	pulse.Pulse()
}

// Signal returns the Future's completion signal, e.g. for use as a
// Builder.After prerequisite or a NewBarrier input.
func (f *Future[T]) Signal() Signal {
	return f.sig
}

// Get suspends (via the fiber primitive, if called from within a task) or
// blocks (otherwise) until the task has finished, then returns its result
// and any poison error - a panic recovered from the task closure, or
// ErrShutdown-wrapped PanicError if the task was dropped during shutdown.
func (f *Future[T]) Get(sched *Scheduler) (T, error) {
	sched.Wait(f.sig)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Wait is equivalent to Get but discards the result, for callers that
// only care about completion (e.g. a root goroutine not holding a
// Scheduler handle). It always performs an OS-thread block, never a
// fiber yield; prefer Future.Get from within task code.
func (f *Future[T]) Wait() {
	f.sig.Wait()
}
