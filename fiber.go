package dagsched

// fiberOutcome is the reason a fiber handed control back to its worker.
type fiberOutcome int

const (
	// fiberPending means the task's closure called Scheduler.Wait on a
	// signal that had not yet pulsed; pendingOn names it.
	fiberPending fiberOutcome = iota
	// fiberFinished means the closure returned normally.
	fiberFinished
	// fiberPanicked means the closure's goroutine recovered a panic;
	// panicValue carries the recovered value.
	fiberPanicked
)

// fiberReport is what a fiber's goroutine sends back to whichever worker
// is currently driving it, once it either yields or terminates.
type fiberReport struct {
	outcome    fiberOutcome
	pendingOn  Signal
	panicValue any
	// dropped is set only on a synthetic report constructed by
	// fiber.dropPoison for a task whose fiber goroutine was never
	// spawned, because admission was refused while it waited on its
	// prerequisite (exit(Active)/exit(None); see SPEC_FULL.md §6).
	dropped bool
}

// fiber is a stackful coroutine wrapping one task's execution (spec.md
// §3/§4.4): the boxed closure, its bound Scheduler handle, and the
// finish callback that resolves its typed Future once it terminates. In
// this Go implementation the "stack" is a real goroutine: Go goroutines
// are already cheap, growable-stack, M:N-scheduled coroutines, so a
// task's closure runs in its own goroutine that blocks on resumeCh when
// it yields, rather than requiring a third-party stackful-coroutine
// library (none exists in this corpus; see SPEC_FULL.md §4's resolution
// of this Open Question). The goroutine is spawned on first schedule and
// exits for good on Finished/Panicked, matching "stack allocated on
// first schedule ... freed on Finished."
//
// A fiber must never be run by two workers concurrently: run is only
// ever called by the single worker currently holding the corresponding
// ReadyTask, which is the same invariant spec.md §4.4 describes as
// "must not be migrated between workers while running."
type fiber struct {
	id       uint64
	body     func(*Scheduler) // the boxed task closure, already wrapping result capture
	sched    *Scheduler        // this task's own Scheduler handle, reused across every run/resume
	finish   func(fiberReport) // resolves the typed Future and pulses completion; called by the worker
	started  bool
	resumeCh chan struct{}
	reportCh chan fiberReport
}

func newFiber(id uint64, body func(*Scheduler), sched *Scheduler) *fiber {
	return &fiber{
		id:       id,
		body:     body,
		sched:    sched,
		resumeCh: make(chan struct{}),
		reportCh: make(chan fiberReport),
	}
}

// run drives the fiber forward exactly one step: on first call it spawns
// the task's goroutine; on later calls it resumes a parked goroutine.
// Either way, run blocks only until the fiber next yields or terminates,
// never for the task's full duration - this is what lets the calling
// worker return to its own pop/steal loop without pinning an OS thread
// for the fiber's lifetime.
func (f *fiber) run() fiberReport {
	if !f.started {
		f.started = true
		go func() {
			defer func() {
				if r := recover(); r != nil {
					f.reportCh <- fiberReport{outcome: fiberPanicked, panicValue: r}
				}
			}()
			f.body(f.sched)
			f.reportCh <- fiberReport{outcome: fiberFinished}
		}()
	} else {
		f.resumeCh <- struct{}{}
	}
	return <-f.reportCh
}

// yield is called from inside the fiber's own goroutine (via
// Scheduler.Wait) to suspend until sig pulses. It reports Pending to
// whichever worker is currently driving the fiber (via run, above) and
// then parks on resumeCh until that worker - or a later one - calls run
// again.
func (f *fiber) yield(sig Signal) {
	f.reportCh <- fiberReport{outcome: fiberPending, pendingOn: sig}
	<-f.resumeCh
}

// dropPoison resolves the fiber's Future as if its task had panicked
// with ErrShutdown, without ever spawning its goroutine: used for tasks
// whose prerequisite pulsed only after admission had already closed.
func (f *fiber) dropPoison() {
	f.finish(fiberReport{outcome: fiberPanicked, dropped: true})
}
