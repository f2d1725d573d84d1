// Package config holds the small set of ambient knobs shared across the
// compiler/runtime pipeline: which LIR optimizer passes run, whether
// debug output is enabled, and the JIT's tiering threshold.
//
// Grounded on the original's JITBackend::enable_optimizations/
// set_debug_mode setter pair (original_source/src/backend/jit/jit.hh),
// generalized here into the functional-options idiom the rest of the
// pack favors for constructor configuration.
package config

import "github.com/netesy/limitly/internal/lir"

// Config is immutable once built; callers get a fresh Option-assembled
// value rather than mutating shared state.
type Config struct {
	OptimizationFlags lir.OptimizationFlags
	DebugMode         bool
	JITTierThreshold  int
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithOptimizations sets which LIR optimizer passes the pipeline runs.
func WithOptimizations(flags lir.OptimizationFlags) Option {
	return func(c *Config) { c.OptimizationFlags = flags }
}

// WithDebugMode sets DebugMode, mirroring the original's
// set_debug_mode(bool). No pipeline component reads the flag, so it
// changes no output.
func WithDebugMode(debug bool) Option {
	return func(c *Config) { c.DebugMode = debug }
}

// WithJITTierThreshold sets JITTierThreshold. No pipeline component
// reads the value: calls are not counted and no function is moved from
// the register-VM interpreter to the JIT.
func WithJITTierThreshold(n int) Option {
	return func(c *Config) { c.JITTierThreshold = n }
}

// New builds a Config, defaulting to all optimizer passes enabled, no
// debug output, and a tier threshold of 100 calls.
func New(opts ...Option) *Config {
	c := &Config{
		OptimizationFlags: lir.Peephole | lir.ConstantFold | lir.DeadCodeEliminate,
		DebugMode:         false,
		JITTierThreshold:  100,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
