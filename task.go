package dagsched

import "sync/atomic"

// taskIDSeq assigns a monotonically increasing id to every fiber, for
// logging and diagnostics only - it carries no scheduling meaning.
var taskIDSeq atomic.Uint64

// Builder composes a work closure with its prerequisite signals, per
// spec.md §4.5. Construct one with Task; it is consumed by Start.
type Builder[T any] struct {
	fn    func(*Scheduler) T
	after []Signal
}

// Task wraps a closure f for scheduling. f receives the Scheduler bound
// to the task's own fiber, so it can itself call Scheduler.Wait or
// submit further tasks.
func Task[T any](f func(*Scheduler) T) *Builder[T] {
	return &Builder[T]{fn: f}
}

// After appends a prerequisite signal; the task becomes schedulable only
// once every signal appended this way has pulsed (spec.md §4.5/§6).
func (b *Builder[T]) After(sig Signal) *Builder[T] {
	b.after = append(b.after, sig)
	return b
}

// Start consumes the builder, handing the task to sched's Backend, and
// returns a Future bound to the task's completion. Safe to call from any
// goroutine, whether or not it is itself a worker.
func (b *Builder[T]) Start(sched *Scheduler) *Future[T] {
	future, completionPulse := newFuture[T]()

	var result T
	taskSched := &Scheduler{backend: sched.backend}
	fb := newFiber(taskIDSeq.Add(1), func(s *Scheduler) {
		result = b.fn(s)
	}, taskSched)
	taskSched.fiber = fb

	fb.finish = func(report fiberReport) {
		switch {
		case report.dropped:
			var zero T
			future.resolve(completionPulse, zero, &PanicError{Dropped: true})
		case report.outcome == fiberFinished:
			future.resolve(completionPulse, result, nil)
		case report.outcome == fiberPanicked:
			var zero T
			future.resolve(completionPulse, zero, &PanicError{Value: report.panicValue})
		default:
			panic("dagsched: finish called with a non-terminal report")
		}
	}

	wait := NewBarrier(b.after)
	sched.backend.start(fb, wait, sched.worker)
	return future
}

// Spawn is sugar over Task(f).After(sigs...).Start(sched) for callers
// that want a single call, mirroring the ergonomic helpers the original
// implementation layers over its builder - supplementing spec.md per
// SPEC_FULL.md §5. It is not a new primitive.
func Spawn[T any](sched *Scheduler, f func(*Scheduler) T, after ...Signal) *Future[T] {
	b := Task(f)
	for _, sig := range after {
		b.After(sig)
	}
	return b.Start(sched)
}
