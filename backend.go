package dagsched

import (
	"sync"
	"sync/atomic"
)

// ExitMode selects one of the three shutdown modes spec.md §6 defines
// for Backend.exit, exposed to callers via Frontend.Die.
type ExitMode int

const (
	// ExitNone blocks admission and returns without waiting for running
	// or pending work to finish; it is the mode an idiomatic Close
	// applies implicitly, per SPEC_FULL.md §6.
	ExitNone ExitMode = iota
	// ExitActive blocks admission, then waits for every already-admitted
	// (live) task to finish, but does not wait on tasks still parked on
	// an unpulsed prerequisite - those are dropped per SPEC_FULL.md §6.
	ExitActive
	// ExitPending waits, with admission still open, until every submitted
	// task - including ones still waiting on a prerequisite, and any
	// submitted while it waits - has run to completion, and only then
	// blocks admission.
	ExitPending
)

// Backend is the admission and lifecycle controller of spec.md §4.2: the
// single source of truth for whether a task may be admitted, and the
// owner of the global deque and worker registry.
type Backend struct {
	admission   *admissionState
	globalDeque *deque
	logger      Logger

	mu      sync.Mutex
	workers []*Worker
	wg      sync.WaitGroup

	// pendingReg counts tasks that have been Start()-ed but whose
	// admission callback has not yet fired (their prerequisite barrier
	// is still pending). It lets exit(Pending) detect quiescence even
	// though such tasks are not yet reflected in admission's live count -
	// see SPEC_FULL.md §6.
	pendingReg      atomic.Int64
	quietMu         sync.Mutex
	liveZeroWaiters []Pulse // fire once live == 0, regardless of pendingReg
	quietWaiters    []Pulse // fire once live == 0 and pendingReg == 0
}

func newBackend(cfg *config) *Backend {
	b := &Backend{
		admission:   newAdmissionState(),
		globalDeque: newDeque(),
		logger:      cfg.logger,
	}
	return b
}

// start registers fb to run once wait pulses. If wait has already
// pulsed, admission (and, on success, the push onto a deque) happens
// inline, synchronously, before start returns - matching Signal.Callback.
// callerWorker is the worker driving the submitting context, if any; it
// is where fb is pushed when admitted, on the simplifying assumption
// (documented in DESIGN.md) that a long-lived worker remains a valid
// push target regardless of how much later its callback actually fires.
func (b *Backend) start(fb *fiber, wait Signal, callerWorker *Worker) {
	b.pendingReg.Add(1)
	wait.Callback(func() {
		if b.admission.tryAdmit() {
			b.push(fb, callerWorker)
		} else {
			logWith(b.logger, LevelWarn, "backend", 0, fb.id, "admission refused; task dropped", nil, nil)
			fb.dropPoison()
		}
		b.pendingReg.Add(-1)
		b.checkWaiters()
	})
}

// push hands an admitted, ready fiber to a deque: the caller's own
// worker if known, else the shared global deque that every worker treats
// as an additional stealable victim (spec.md §4.2/§4.3).
func (b *Backend) push(rt ReadyTask, w *Worker) {
	if w != nil {
		w.deque.pushBottom(rt)
		w.notify()
		return
	}
	b.globalDeque.pushBottom(rt)
	b.wakeAny()
}

func (b *Backend) wakeAny() {
	b.mu.Lock()
	workers := b.workers
	b.mu.Unlock()
	for _, w := range workers {
		w.notify()
	}
}

// retire is called by a worker once an admitted task's fiber has fully
// terminated (finished, panicked, or dropped after having already been
// admitted), decrementing the live count (spec.md §4.2).
func (b *Backend) retire() {
	b.admission.retire()
	b.checkWaiters()
}

// checkWaiters pulses registered live-zero waiters once live reaches
// zero, and registered full-quiescence waiters once live and pendingReg
// both reach zero. A task still waiting on a never-pulsing prerequisite
// holds pendingReg above zero forever - awaitLiveZero (used by
// ExitActive) never waits on that, only awaitQuiescence (used by
// ExitPending) does, matching spec.md §8's invariant 5 ("given any
// finite acyclic workload") and scenario 6 (exit(Active) must still
// return promptly even though a gating signal never pulses).
func (b *Backend) checkWaiters() {
	live := b.admission.liveCount()
	if live == 0 {
		b.quietMu.Lock()
		waiters := b.liveZeroWaiters
		b.liveZeroWaiters = nil
		b.quietMu.Unlock()
		for _, p := range waiters {
			p.Pulse()
		}
	}
	if live == 0 && b.pendingReg.Load() == 0 {
		b.quietMu.Lock()
		waiters := b.quietWaiters
		b.quietWaiters = nil
		b.quietMu.Unlock()
		for _, p := range waiters {
			p.Pulse()
		}
	}
}

// awaitLiveZero returns a Signal that pulses once the live count is next
// observed at zero (used by ExitActive - see checkWaiters).
func (b *Backend) awaitLiveZero() Signal {
	sig, pulse := New()
	b.quietMu.Lock()
	b.liveZeroWaiters = append(b.liveZeroWaiters, pulse)
	b.quietMu.Unlock()
	b.checkWaiters()
	return sig
}

// awaitQuiescence returns a Signal that pulses the next time pendingReg
// and live are both observed at zero (used by ExitPending).
func (b *Backend) awaitQuiescence() Signal {
	sig, pulse := New()
	b.quietMu.Lock()
	b.quietWaiters = append(b.quietWaiters, pulse)
	b.quietMu.Unlock()
	b.checkWaiters()
	return sig
}

// exit implements spec.md §6's three shutdown modes. It always blocks
// admission before returning and always joins every worker goroutine.
// The three modes differ only in when blocking happens relative to
// waiting for quiescence: ExitActive blocks first, so any task still
// waiting on an unpulsed prerequisite is dropped rather than admitted
// once its turn comes; ExitPending waits with admission still open, so
// those same tasks run normally, and only blocks once nothing remains
// pending or live.
func (b *Backend) exit(mode ExitMode) {
	switch mode {
	case ExitNone:
		b.admission.setBlocked()
	case ExitActive:
		b.admission.setBlocked()
		b.awaitLiveZero().Wait()
	case ExitPending:
		b.awaitQuiescence().Wait()
		b.admission.setBlocked()
	}

	b.mu.Lock()
	workers := b.workers
	b.mu.Unlock()
	for _, w := range workers {
		w.sendExit()
	}
	b.wg.Wait()
}

func (b *Backend) addWorker(w *Worker) {
	b.mu.Lock()
	b.workers = append(b.workers, w)
	peers := make([]*Worker, len(b.workers))
	copy(peers, b.workers)
	b.mu.Unlock()

	for _, existing := range peers {
		if existing == w {
			continue
		}
		existing.addPeer(w)
		w.addPeer(existing)
	}
	b.wg.Add(1)
}
