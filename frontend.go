package dagsched

import (
	"sync"
	"time"
)

// Frontend owns a Backend and its worker pool: the top-level handle an
// application constructs once per process (or per test) via New, and
// tears down via Close or Die (spec.md §4.6).
type Frontend struct {
	backend *Backend
	root    *Scheduler

	closeOnce sync.Once
}

// New constructs a Frontend: a Backend plus a pool of worker goroutines,
// sized and configured by opts (spec.md §4.6/§7). The pool is started
// before New returns; workers begin competing for work immediately.
func New(opts ...Option) (*Frontend, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	backend := newBackend(cfg)
	fe := &Frontend{
		backend: backend,
		root:    &Scheduler{backend: backend},
	}

	seed := uint64(time.Now().UnixNano())
	for i := 0; i < cfg.workers; i++ {
		w := newWorker(i+1, backend, cfg, seed+uint64(i))
		backend.addWorker(w)
		go w.run()
	}

	logWith(cfg.logger, LevelInfo, "backend", 0, 0, "started", nil, map[string]any{"workers": cfg.workers})
	return fe, nil
}

// Scheduler returns the root Scheduler handle: not bound to any fiber,
// so Wait on it always blocks the calling OS thread rather than
// suspending a task (spec.md §4.6's frontend entry point).
func (fe *Frontend) Scheduler() *Scheduler {
	return fe.root
}

// Die shuts the scheduler down in the given mode and blocks until every
// worker goroutine has exited (spec.md §6). Calling Die more than once
// is safe; only the first call has effect.
func (fe *Frontend) Die(mode ExitMode) {
	fe.closeOnce.Do(func() {
		fe.backend.exit(mode)
		logWith(fe.backend.logger, LevelInfo, "backend", 0, 0, "stopped", nil, map[string]any{"mode": int(mode)})
	})
}

// Close implements io.Closer, applying ExitNone: the idiomatic Go
// replacement for the original's "drop triggers implicit exit(None)"
// (spec.md §6, redesigned per SPEC_FULL.md §6 since Go has no
// destructors to run that implicitly). Prefer Die(ExitActive) or
// Die(ExitPending) for a graceful shutdown; Close is for defer.
func (fe *Frontend) Close() error {
	fe.Die(ExitNone)
	return nil
}
