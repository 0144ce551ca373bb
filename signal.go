package dagsched

import "sync"

// Signal is a shareable reference to a single-assignment completion slot
// (spec.md §3). It is cheap to copy: all copies observe the same
// underlying state. The zero Signal is not valid; obtain one from New,
// Pulsed, or NewBarrier.
type Signal struct {
	state *signalState
}

// Pulse is the one-time write capability paired with a Signal by New. It
// is logically move-only: Pulse is statically impossible to call twice in
// the Rust original this scheduler's design is drawn from, because the
// token is consumed by value; Go has no linear types; this implementation
// enforces the same invariant at runtime and panics on a second call (see
// DESIGN.md's resolution of the "poisoned pulse" error kind).
type Pulse struct {
	state *signalState
}

type signalState struct {
	mu        sync.Mutex
	pulsed    bool
	done      chan struct{} // closed exactly once, on pulse
	callbacks []func()
}

// New creates a Signal/Pulse pair: the Signal half is cheaply cloneable
// and read-only; the Pulse half is the unique write capability.
func New() (Signal, Pulse) {
	st := &signalState{done: make(chan struct{})}
	return Signal{state: st}, Pulse{state: st}
}

// Pulsed returns a Signal that is already in the pulsed state - the
// "no prerequisite" neutral element used when a task has no dependencies
// (spec.md §4.1).
func Pulsed() Signal {
	st := &signalState{pulsed: true}
	st.done = closedChan
	return Signal{state: st}
}

// closedChan is a shared, already-closed channel used by every Pulsed()
// signal so constructing one never allocates a channel that will never be
// received from under contention.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// IsPending reports whether the signal has not yet pulsed. Non-blocking.
func (s Signal) IsPending() bool {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()
	return !st.pulsed
}

// Wait blocks the calling goroutine until the signal pulses. Per
// spec.md §4.1, this must never be called from within a fiber; doing so
// degrades to an OS-thread block that pins the calling worker (see
// SPEC_FULL.md's resolution of that Open Question) rather than yielding
// the fiber. Scheduler.Wait is the fiber-aware equivalent and should be
// preferred from task code.
func (s Signal) Wait() {
	<-s.state.done
}

// Callback registers f to run once the signal pulses. If the signal has
// already pulsed, f runs inline, synchronously, before Callback returns.
// Otherwise f is appended to the pending list and is run exactly once, by
// whichever goroutine calls Pulse, after the state transition - in
// unspecified order relative to any other callback registered on the
// same signal.
func (s Signal) Callback(f func()) {
	st := s.state
	st.mu.Lock()
	if st.pulsed {
		st.mu.Unlock()
		f()
		return
	}
	st.callbacks = append(st.callbacks, f)
	st.mu.Unlock()
}

// Pulse commits the pending→pulsed transition, closing the done channel
// so any Wait callers unblock, then drains and invokes the callback list.
// Calling Pulse a second time on the same Pulse value panics:
// a dropped Pulse (pulse() never called) instead leaves waiters blocked
// forever, which spec.md §7 documents as user error, not a reported one.
func (p Pulse) Pulse() {
	st := p.state
	st.mu.Lock()
	if st.pulsed {
		st.mu.Unlock()
		panic("dagsched: Pulse fired twice on the same Signal")
	}
	st.pulsed = true
	callbacks := st.callbacks
	st.callbacks = nil
	close(st.done)
	st.mu.Unlock()

	for _, f := range callbacks {
		f()
	}
}

// NewBarrier aggregates signals into a single output Signal that pulses
// iff every input has pulsed (spec.md §4.1). An empty barrier pulses
// immediately; a single-input barrier returns that input directly,
// avoiding an unnecessary counter allocation.
func NewBarrier(signals []Signal) Signal {
	switch len(signals) {
	case 0:
		return Pulsed()
	case 1:
		return signals[0]
	}

	out, pulse := New()
	var (
		mu        sync.Mutex
		remaining = len(signals)
	)
	for _, sig := range signals {
		sig.Callback(func() {
			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				pulse.Pulse()
			}
		})
	}
	return out
}
