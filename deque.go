package dagsched

import "sync"

// ReadyTask is a fiber handle known to be in the Ready state - the only
// type spec.md §3 permits to enter a deque. Only the worker that pops it
// may drive it; pushing it again (from a signal callback) transfers that
// right to whichever worker pops it next.
type ReadyTask = *fiber

// deque is a double-ended queue of ReadyTask: the owning worker pops its
// own bottom (the tail, giving LIFO order and cache locality for the
// owner), while thieves steal from the top (the head, giving FIFO order
// so a thief never contends with the owner on the same end). Pushes onto
// the bottom come from the owner and also from any goroutine that admits
// or re-arms a task for this worker (see Backend.push), so the deque is
// not single-producer.
//
// Grounded on the mutex-guarded slice queues used throughout the work
// stealing examples in this domain: a single mutex per deque is simpler
// than a lock-free Chase-Lev deque and is never held across a task's
// execution, only around the O(1) slice mutation - never the hot loop
// spec.md §5 calls out (the registry/command-channel mutex), matching
// the spirit of "never on the hot path" for the steal itself.
type deque struct {
	mu    sync.Mutex
	tasks []ReadyTask
}

func newDeque() *deque {
	return &deque{}
}

// pushBottom appends rt to the owner's end of the deque.
func (d *deque) pushBottom(rt ReadyTask) {
	d.mu.Lock()
	d.tasks = append(d.tasks, rt)
	d.mu.Unlock()
}

// popBottom removes and returns the most recently pushed task (LIFO), or
// nil if the deque is empty. Only the owning worker calls this.
func (d *deque) popBottom() ReadyTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.tasks)
	if n == 0 {
		return nil
	}
	rt := d.tasks[n-1]
	d.tasks[n-1] = nil
	d.tasks = d.tasks[:n-1]
	return rt
}

// stealTop removes and returns the oldest pushed task (FIFO), or nil if
// the deque is empty. Called by any worker other than the owner.
func (d *deque) stealTop() ReadyTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tasks) == 0 {
		return nil
	}
	rt := d.tasks[0]
	d.tasks[0] = nil
	d.tasks = d.tasks[1:]
	return rt
}

// len reports the current depth, for diagnostics only: callers must not
// rely on it remaining accurate after the lock is released.
func (d *deque) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}
