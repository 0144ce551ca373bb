package dagsched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Wait_NoFiber_BlocksOSThread(t *testing.T) {
	sched := &Scheduler{}
	sig, pulse := New()

	done := make(chan struct{})
	go func() {
		sched.Wait(sig)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Pulse")
	case <-time.After(20 * time.Millisecond):
	}

	pulse.Pulse()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Pulse")
	}
}

func TestScheduler_Wait_AlreadyPulsed_ReturnsImmediately(t *testing.T) {
	sched := &Scheduler{}
	sched.Wait(Pulsed()) // must not block
}

func TestScheduler_Wait_WithFiber_Yields(t *testing.T) {
	b := newTestBackend(t)
	rootSched := &Scheduler{backend: b}
	gate, pulse := New()

	var waited bool
	fut := Task(func(s *Scheduler) int {
		s.Wait(gate)
		waited = true
		return 5
	}).Start(rootSched)

	rt := b.globalDeque.popBottom()
	require.NotNil(t, rt)
	report := rt.run()
	require.Equal(t, fiberPending, report.outcome)
	assert.False(t, waited)

	pulse.Pulse()
	report = rt.run()
	require.Equal(t, fiberFinished, report.outcome)
	rt.finish(report)
	b.retire()

	v, err := fut.Get(rootSched)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.True(t, waited)
}

func TestScheduler_AddTask_RunsAndPulsesReturnedSignal(t *testing.T) {
	b := newTestBackend(t)
	sched := &Scheduler{backend: b}

	var ran bool
	sig := sched.AddTask(func(*Scheduler) { ran = true })

	assert.True(t, sig.IsPending())
	drainOne(t, b)
	assert.True(t, ran)
	assert.False(t, sig.IsPending())
}

func TestScheduler_AddTask_RespectsPrerequisites(t *testing.T) {
	b := newTestBackend(t)
	sched := &Scheduler{backend: b}
	gate, pulse := New()

	var ran bool
	sched.AddTask(func(*Scheduler) { ran = true }, gate)

	assert.Equal(t, 0, b.globalDeque.len())
	pulse.Pulse()
	assert.Equal(t, 1, b.globalDeque.len())
	drainOne(t, b)
	assert.True(t, ran)
}
