package dagsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	cfg, err := resolveOptions(nil)
	require.NoError(t, err)
	return newBackend(cfg)
}

// drainOne pops and fully runs a single fiber from the backend's global
// deque, driving it to completion without any Worker or stealing loop.
func drainOne(t *testing.T, b *Backend) {
	t.Helper()
	rt := b.globalDeque.popBottom()
	require.NotNil(t, rt, "expected a ready fiber on the global deque")
	report := rt.run()
	require.NotEqual(t, fiberPending, report.outcome, "test helper does not support yielding tasks")
	rt.finish(report)
	b.retire()
}

func TestBuilder_StartNoPrerequisite_RunsImmediatelyAdmitted(t *testing.T) {
	b := newTestBackend(t)
	sched := &Scheduler{backend: b}

	fut := Task(func(*Scheduler) int { return 99 }).Start(sched)

	assert.Equal(t, 1, b.globalDeque.len())
	drainOne(t, b)

	v, err := fut.Get(sched)
	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestBuilder_After_DefersUntilPrerequisitePulses(t *testing.T) {
	b := newTestBackend(t)
	sched := &Scheduler{backend: b}
	gate, pulse := New()

	fut := Task(func(*Scheduler) int { return 1 }).After(gate).Start(sched)

	assert.Equal(t, 0, b.globalDeque.len(), "must not be admitted before its prerequisite pulses")

	pulse.Pulse()
	assert.Equal(t, 1, b.globalDeque.len())

	drainOne(t, b)
	v, err := fut.Get(sched)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestBuilder_PanicIsCapturedOnFuture(t *testing.T) {
	b := newTestBackend(t)
	sched := &Scheduler{backend: b}

	fut := Task(func(*Scheduler) int { panic("oops") }).Start(sched)
	drainOne(t, b)

	_, err := fut.Get(sched)
	require.Error(t, err)
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "oops", panicErr.Value)
	assert.False(t, panicErr.Dropped)
}

func TestBuilder_DroppedAfterAdmissionBlocked(t *testing.T) {
	b := newTestBackend(t)
	sched := &Scheduler{backend: b}
	gate, pulse := New()

	fut := Task(func(*Scheduler) int { return 1 }).After(gate).Start(sched)

	b.admission.setBlocked()
	pulse.Pulse()

	assert.Equal(t, 0, b.globalDeque.len(), "a dropped task is never pushed to any deque")

	_, err := fut.Get(sched)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShutdown)
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.True(t, panicErr.Dropped)
}

func TestSpawn_AppliesAllPrerequisites(t *testing.T) {
	b := newTestBackend(t)
	sched := &Scheduler{backend: b}
	g0, p0 := New()
	g1, p1 := New()

	fut := Spawn(sched, func(*Scheduler) int { return 7 }, g0, g1)
	assert.Equal(t, 0, b.globalDeque.len())

	p0.Pulse()
	assert.Equal(t, 0, b.globalDeque.len())

	p1.Pulse()
	assert.Equal(t, 1, b.globalDeque.len())

	drainOne(t, b)
	v, err := fut.Get(sched)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
