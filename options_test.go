package dagsched

import (
	"math/rand"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptions_Defaults(t *testing.T) {
	cfg, err := resolveOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.workers)
	assert.Equal(t, time.Duration(0), cfg.idleBackoffMin)
	assert.Equal(t, 4*time.Millisecond, cfg.idleBackoffMax)
	assert.Equal(t, 250*time.Millisecond, cfg.stealLogEvery)
	assert.Nil(t, cfg.logger)
}

func TestResolveOptions_WithWorkers_ZeroOrNegative_IsError(t *testing.T) {
	_, err := resolveOptions([]Option{WithWorkers(0)})
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = resolveOptions([]Option{WithWorkers(-3)})
	assert.ErrorIs(t, err, ErrNoWorkers)
}

func TestResolveOptions_AppliesOverrides(t *testing.T) {
	logger := NewNoOpLogger()
	src := rand.NewSource(1)
	cfg, err := resolveOptions([]Option{
		WithWorkers(7),
		WithLogger(logger),
		WithIdleBackoff(time.Millisecond, 9*time.Millisecond),
		WithRandSource(src),
		WithStealLogInterval(time.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.workers)
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, time.Millisecond, cfg.idleBackoffMin)
	assert.Equal(t, 9*time.Millisecond, cfg.idleBackoffMax)
	assert.Same(t, src, cfg.randSource)
	assert.Equal(t, time.Second, cfg.stealLogEvery)
}

func TestResolveOptions_NilOptionIsSkipped(t *testing.T) {
	cfg, err := resolveOptions([]Option{nil, WithWorkers(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.workers)
}
