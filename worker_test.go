package dagsched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, id int, b *Backend) *Worker {
	t.Helper()
	cfg, err := resolveOptions([]Option{WithIdleBackoff(time.Millisecond, 2 * time.Millisecond)})
	require.NoError(t, err)
	return newWorker(id, b, cfg, uint64(id))
}

func TestWorker_AddPeer_DedupesSameDeque(t *testing.T) {
	b := newTestBackend(t)
	w1 := newTestWorker(t, 1, b)
	w2 := newTestWorker(t, 2, b)

	assert.Equal(t, 1, w1.peerCount(), "starts with only the global deque")

	w1.addPeer(w2)
	assert.Equal(t, 2, w1.peerCount())

	w1.addPeer(w2)
	assert.Equal(t, 2, w1.peerCount(), "re-adding the same peer must not duplicate it")
}

func TestWorker_StealOnce_FindsWorkOnPeerDeque(t *testing.T) {
	b := newTestBackend(t)
	w1 := newTestWorker(t, 1, b)
	w2 := newTestWorker(t, 2, b)
	w1.addPeer(w2)

	fb := &fiber{id: 42}
	w2.deque.pushBottom(fb)

	// stealOnce picks a uniformly random victim among peers; retry until
	// it happens to land on w2 (or the global deque, which is empty).
	var stolen ReadyTask
	for i := 0; i < 200 && stolen == nil; i++ {
		stolen = w1.stealOnce()
	}
	require.NotNil(t, stolen)
	assert.Same(t, fb, stolen)
}

func TestWorker_Notify_NonBlockingAndCoalesces(t *testing.T) {
	b := newTestBackend(t)
	w := newTestWorker(t, 1, b)

	w.notify()
	w.notify() // must not block even though the channel is now full

	select {
	case <-w.notifyCh:
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-w.notifyCh:
		t.Fatal("notify must coalesce, not queue")
	default:
	}
}

func TestWorker_Run_ExecutesOwnDequeThenExits(t *testing.T) {
	b := newTestBackend(t)
	w := newTestWorker(t, 1, b)
	b.wg.Add(1)

	var ran bool
	done := make(chan struct{})
	fb := newFiber(1, func(*Scheduler) { ran = true }, &Scheduler{})
	fb.finish = func(fiberReport) { close(done) }
	require.True(t, b.admission.tryAdmit(), "fiber must be admitted before it can be retired")
	w.deque.pushBottom(fb)

	go w.run()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker never ran the queued fiber")
	}
	assert.True(t, ran)

	w.sendExit()
	b.wg.Wait() // must return promptly once exitCh closes
}
