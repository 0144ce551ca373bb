// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package dagsched

import (
	"math/rand"
	"runtime"
	"time"
)

// config holds resolved configuration for New.
type config struct {
	workers        int
	logger         Logger
	idleBackoffMin time.Duration
	idleBackoffMax time.Duration
	randSource     rand.Source
	stealLogEvery  time.Duration
}

// --- Options ---

// Option configures a Frontend at construction.
type Option interface {
	apply(*config) error
}

// optionFunc implements Option.
type optionFunc struct {
	f func(*config) error
}

func (o *optionFunc) apply(cfg *config) error {
	return o.f(cfg)
}

// WithWorkers sets the number of worker goroutines in the pool. It defaults
// to runtime.NumCPU(). A non-positive value is an error at New time.
func WithWorkers(n int) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.workers = n
		return nil
	}}
}

// WithLogger overrides the process-wide structured logger (see
// SetStructuredLogger) for a single Frontend instance.
func WithLogger(logger Logger) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.logger = logger
		return nil
	}}
}

// WithIdleBackoff sets the additive backoff floor and ceiling applied by an
// idle worker between failed pop/steal cycles (spec.md §4.3's "backoff
// grows additively ... capped to a small constant"). Defaults to 0..4ms.
func WithIdleBackoff(min, max time.Duration) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.idleBackoffMin = min
		cfg.idleBackoffMax = max
		return nil
	}}
}

// WithRandSource seeds the per-worker PRNG used to pick a uniformly random
// steal victim (spec.md §4.3). Defaults to a source seeded from the current
// time, offset per worker. Plain math/rand suffices here - victim selection
// has no security requirement, and nothing in this corpus wraps a
// non-cryptographic PRNG more specifically than the standard library does.
func WithRandSource(src rand.Source) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.randSource = src
		return nil
	}}
}

// WithStealLogInterval rate-limits (via catrate) the "entering idle backoff"
// debug log line per worker, so a long idle spell logs at most once per d
// instead of once per sleep cycle. Defaults to 250ms; d <= 0 disables
// rate-limiting (every cycle logs, if debug logging is enabled at all).
func WithStealLogInterval(d time.Duration) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.stealLogEvery = d
		return nil
	}}
}

// resolveOptions applies Option instances over sane defaults.
func resolveOptions(opts []Option) (*config, error) {
	cfg := &config{
		workers:        runtime.NumCPU(),
		logger:         nil, // nil means "use the global logger"
		idleBackoffMin: 0,
		idleBackoffMax: 4 * time.Millisecond,
		stealLogEvery:  250 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.workers <= 0 {
		return nil, ErrNoWorkers
	}
	return cfg, nil
}
