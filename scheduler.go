package dagsched

// Scheduler is the handle passed into every task closure and returned by
// Frontend.Scheduler: spec.md §3's "Scheduler trait", the capability a
// piece of running code uses to wait on a signal or submit more work.
// The zero value is not valid; every Scheduler in circulation is either
// the frontend's root handle (worker and fiber both nil) or one bound to
// a single fiber by Builder.Start, and that binding never changes.
type Scheduler struct {
	backend *Backend
	worker  *Worker // the worker that most recently drove this handle's fiber; nil for the root handle and before the first run
	fiber   *fiber  // non-nil only for a handle bound to a task's own closure
}

// Wait suspends the calling context until sig pulses (spec.md §4.1/§4.4).
// Called from within a task's own closure, it yields the fiber: the
// owning worker regains control immediately and can pop or steal other
// work while this task is parked, and the fiber resumes - on whichever
// worker pops it next, not necessarily this one - once sig pulses. Called
// from outside any fiber (fiber is nil, e.g. the frontend's root handle
// used from an ordinary goroutine), it degrades to Signal.Wait and blocks
// the calling OS thread, per SPEC_FULL.md's resolution of that Open
// Question.
func (s *Scheduler) Wait(sig Signal) {
	if s.fiber == nil {
		sig.Wait()
		return
	}
	if !sig.IsPending() {
		return
	}
	s.fiber.yield(sig)
}

// AddTask is the untyped, callback-based counterpart to Task/Builder for
// callers that don't need a result value: fn runs once every signal in
// after has pulsed, and AddTask returns a Signal that pulses when fn
// returns (spec.md §6's Scheduler trait).
func (s *Scheduler) AddTask(fn func(*Scheduler), after ...Signal) Signal {
	b := Task(func(sc *Scheduler) struct{} {
		fn(sc)
		return struct{}{}
	})
	for _, sig := range after {
		b.After(sig)
	}
	return b.Start(s).Signal()
}
