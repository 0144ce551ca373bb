package dagsched

import (
	"sync/atomic"
)

// admissionBlockedBit marks the high bit of the admission word as the
// "blocked" flag (spec.md §4.2): once set, it is never cleared, and
// try_admit always fails from that point on. The remaining 63 bits hold
// the live-task count, so live can never realistically overflow them.
const admissionBlockedBit = uint64(1) << 63

// admissionState is the backend's single atomic admission word: a
// lock-free CAS state machine combining the blocked flag and the
// live-task counter into one word, so a reader always observes a
// consistent (blocked, live) pair without a lock.
//
// PERFORMANCE: pure atomic CAS, cache-line padded to avoid false sharing
// with neighboring fields on the Backend struct, mirroring the pattern
// used for hot-path state machines elsewhere in this codebase.
type admissionState struct { // betteralign:ignore
	_ [64]byte      //nolint:unused
	v atomic.Uint64 // high bit: blocked; low 63 bits: live count
	_ [56]byte      //nolint:unused
}

// newAdmissionState creates a state machine with blocked=false, live=0.
func newAdmissionState() *admissionState {
	return &admissionState{}
}

// load returns the current (blocked, live) pair, sequentially consistent.
func (s *admissionState) load() (blocked bool, live uint64) {
	w := s.v.Load()
	return w&admissionBlockedBit != 0, w &^ admissionBlockedBit
}

// tryAdmit implements spec.md §4.2's try_admit: loops on a CAS, failing if
// blocked is set, otherwise incrementing live by one. The CAS loop and the
// use of atomic.Uint64 throughout give it the required sequentially
// consistent ordering: a goroutine that observes admission granted here
// always subsequently observes its own task code running with live already
// incremented, because both go through the same atomic word.
func (s *admissionState) tryAdmit() bool {
	for {
		w := s.v.Load()
		if w&admissionBlockedBit != 0 {
			return false
		}
		if s.v.CompareAndSwap(w, w+1) {
			return true
		}
	}
}

// retire implements spec.md §4.2's retire: atomically decrements live,
// returning true iff the result is zero (the caller is then responsible
// for firing the all-quiet pulse, if one is registered).
func (s *admissionState) retire() (liveIsZero bool) {
	for {
		w := s.v.Load()
		live := w &^ admissionBlockedBit
		if live == 0 {
			panic("dagsched: retire called with live == 0")
		}
		nw := (w & admissionBlockedBit) | (live - 1)
		if s.v.CompareAndSwap(w, nw) {
			return nw&^admissionBlockedBit == 0
		}
	}
}

// setBlocked sets the blocked flag, preserving the current live count, and
// reports whether this call is the one that transitioned it (blocked is
// "set only once and never cleared", per spec.md §4.2).
func (s *admissionState) setBlocked() (transitioned bool) {
	for {
		w := s.v.Load()
		if w&admissionBlockedBit != 0 {
			return false
		}
		if s.v.CompareAndSwap(w, w|admissionBlockedBit) {
			return true
		}
	}
}

// isBlocked reports whether admission has been closed.
func (s *admissionState) isBlocked() bool {
	return s.v.Load()&admissionBlockedBit != 0
}

// liveCount returns the current live-task count, non-blocking.
func (s *admissionState) liveCount() uint64 {
	return s.v.Load() &^ admissionBlockedBit
}
