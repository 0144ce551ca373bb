// Package dagsched provides a dependency-tracking, work-stealing task
// scheduler: user-supplied closures are annotated with prerequisite
// completion signals and executed across a fixed pool of worker
// goroutines. Completion of every task is itself a signal that downstream
// tasks may wait on, so the scheduler forms a dynamically-extended
// dataflow DAG whose nodes are closures.
//
// # Architecture
//
// A [Frontend] constructs a [Backend] and a pool of [Worker] goroutines
// (one per runtime.NumCPU by default). Submitters build a [Builder] (a
// closure plus zero or more prerequisite [Signal] values) and call
// [Builder.Start] to hand it to the Backend, which installs a callback on
// the wait signal (the single prerequisite, or a [NewBarrier] aggregation
// over several).
// When that signal fires, admission is checked; if permitted, the task is
// pushed onto a worker's deque and runs inside a fiber (see below).
//
// # Fiber substrate
//
// Each task executes inside a goroutine that acts as its fiber: if the
// task calls [Scheduler.Wait] on a signal that has not yet pulsed, that
// goroutine parks on an internal channel and reports back to whichever
// worker is driving it, which immediately continues its own pop/steal
// loop rather than blocking. When the awaited signal later pulses, the
// task's fiber is re-armed as a ReadyTask and resumes - on any worker,
// not necessarily the one that originally ran it.
//
// # Work stealing
//
// Each Worker owns a double-ended queue: it pushes and pops its own
// bottom (LIFO, for cache locality), while other workers steal from the
// top (FIFO) when their own deque is empty. Idle workers back off with
// an additive delay, capped to a small constant, before retrying.
//
// # Thread Safety
//
// [Scheduler.AddTask] and [Builder.Start] are safe to call from any
// goroutine, whether or not it is itself a worker. [Signal.Callback] and
// [Signal.Pulse] each take a short per-signal mutex; they are not
// lock-free. The admission word is entirely lock-free. The worker
// registry is guarded by one backend mutex, taken at registration, at
// shutdown, and on every push onto the global deque (to wake the
// workers); each worker's victim list has its own mutex, taken on every
// steal attempt, and each deque has its own mutex around every push, pop
// and steal.
//
// # Usage
//
//	fe, err := dagsched.New(dagsched.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fe.Close()
//
//	sched := fe.Scheduler()
//	fut := dagsched.Task(func(s *dagsched.Scheduler) int {
//	    return 42
//	}).Start(sched)
//
//	v, err := fut.Get(sched)
//
// # Non-goals
//
// No global priorities, no fairness guarantees beyond FIFO within a
// single deque, no task cancellation, and no dependency-cycle detection:
// submitters must not create them. I/O, timers, and persistent state are
// out of scope.
package dagsched
