package dagsched

import (
	"math/rand"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"golang.org/x/exp/slices"
)

// Worker is one pop/steal loop of spec.md §4.3: it owns a deque, drains
// its own bottom first, then steals from a uniformly random victim among
// its peers and the backend's global deque, backing off additively and
// capped when nothing is found anywhere.
type Worker struct {
	id      int
	backend *Backend
	deque   *deque
	logger  Logger

	backoffMin time.Duration
	backoffMax time.Duration
	rng        *rand.Rand
	limiter    *catrate.Limiter

	notifyCh chan struct{}
	exitCh   chan struct{}

	peersMu sync.Mutex
	peers   []*deque // includes the backend's global deque, always present
}

func newWorker(id int, backend *Backend, cfg *config, seed uint64) *Worker {
	w := &Worker{
		id:         id,
		backend:    backend,
		deque:      newDeque(),
		logger:     cfg.logger,
		backoffMin: cfg.idleBackoffMin,
		backoffMax: cfg.idleBackoffMax,
		rng:        rand.New(rand.NewSource(int64(seed))),
		notifyCh:   make(chan struct{}, 1),
		exitCh:     make(chan struct{}),
		peers:      []*deque{backend.globalDeque},
	}
	if cfg.randSource != nil {
		w.rng = rand.New(rand.NewSource(cfg.randSource.Int63()))
	}
	if cfg.stealLogEvery > 0 {
		w.limiter = catrate.NewLimiter(map[time.Duration]int{cfg.stealLogEvery: 1})
	}
	return w
}

// addPeer registers another worker's deque as an additional steal victim,
// unless it is already registered.
func (w *Worker) addPeer(other *Worker) {
	w.peersMu.Lock()
	if !slices.Contains(w.peers, other.deque) {
		w.peers = append(w.peers, other.deque)
	}
	w.peersMu.Unlock()
}

// notify wakes the worker from an idle sleep, if it is sleeping.
func (w *Worker) notify() {
	select {
	case w.notifyCh <- struct{}{}:
	default:
	}
}

// sendExit closes exitCh, asking the worker's loop to stop the next time
// it reaches its idle path; run then returns and marks itself done on
// backend.wg, which the caller waits on separately.
func (w *Worker) sendExit() {
	close(w.exitCh)
}

// run is the worker's main loop (spec.md §4.3), executed on its own
// goroutine for the backend's lifetime.
func (w *Worker) run() {
	defer w.backend.wg.Done()
	logWith(w.logger, LevelInfo, "worker", w.id, 0, "started", nil, nil)
	defer logWith(w.logger, LevelInfo, "worker", w.id, 0, "exited", nil, nil)

	backoff := w.backoffMin
	idleStreak := 0

	for {
		if rt := w.deque.popBottom(); rt != nil {
			w.execute(rt)
			backoff = w.backoffMin
			idleStreak = 0
			continue
		}

		if rt := w.stealOnce(); rt != nil {
			w.execute(rt)
			backoff = w.backoffMin
			idleStreak = 0
			continue
		}

		idleStreak++
		victimCount := w.peerCount()
		if idleStreak < 2*victimCount {
			continue
		}

		select {
		case <-w.exitCh:
			return
		default:
		}

		allow := true
		if w.limiter != nil {
			_, allow = w.limiter.Allow(w.id)
		}
		if allow {
			logWith(w.logger, LevelDebug, "worker", w.id, 0, "entering idle backoff", nil, map[string]any{"backoff": backoff.String()})
		}

		select {
		case <-w.exitCh:
			return
		case <-w.notifyCh:
			idleStreak = 0
		case <-time.After(backoff):
			if backoff < w.backoffMax {
				backoff += time.Millisecond
				if backoff > w.backoffMax {
					backoff = w.backoffMax
				}
			}
		}
	}
}

func (w *Worker) peerCount() int {
	w.peersMu.Lock()
	defer w.peersMu.Unlock()
	return len(w.peers)
}

// stealOnce picks one uniformly random victim deque - a peer worker's or
// the backend's global deque - and attempts a single steal from its top.
func (w *Worker) stealOnce() ReadyTask {
	w.peersMu.Lock()
	n := len(w.peers)
	if n == 0 {
		w.peersMu.Unlock()
		return nil
	}
	victim := w.peers[w.rng.Intn(n)]
	w.peersMu.Unlock()
	return victim.stealTop()
}

// execute drives rt to its next yield or termination, then either parks
// it (nothing further to do until its awaited signal pulses, at which
// point the signal's own callback re-pushes it) or retires it.
func (w *Worker) execute(rt ReadyTask) {
	// rt.sched.worker reflects whichever worker is currently driving this
	// fiber; valid only for the duration of this run call, since a fiber
	// may resume on a different worker after its next yield.
	rt.sched.worker = w
	report := rt.run()
	switch report.outcome {
	case fiberPending:
		report.pendingOn.Callback(func() {
			w.backend.push(rt, w)
		})
	case fiberFinished, fiberPanicked:
		if report.outcome == fiberPanicked && !report.dropped {
			logWith(w.logger, LevelError, "task", w.id, rt.id, "task panicked", nil, map[string]any{"panic": report.panicValue})
		}
		rt.finish(report)
		w.backend.retire()
	}
}
