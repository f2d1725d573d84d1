package config

import (
	"testing"

	"github.com/netesy/limitly/internal/lir"
)

func TestNewDefaultsEnableAllOptimizerPasses(t *testing.T) {
	c := New()
	want := lir.Peephole | lir.ConstantFold | lir.DeadCodeEliminate
	if c.OptimizationFlags != want {
		t.Fatalf("expected all passes enabled by default, got %v", c.OptimizationFlags)
	}
	if c.DebugMode {
		t.Fatalf("expected debug mode off by default")
	}
	if c.JITTierThreshold != 100 {
		t.Fatalf("expected default tier threshold 100, got %d", c.JITTierThreshold)
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	c := New(
		WithOptimizations(lir.Peephole),
		WithDebugMode(true),
		WithJITTierThreshold(5),
	)
	if c.OptimizationFlags != lir.Peephole {
		t.Fatalf("expected only Peephole enabled, got %v", c.OptimizationFlags)
	}
	if !c.DebugMode {
		t.Fatalf("expected debug mode on")
	}
	if c.JITTierThreshold != 5 {
		t.Fatalf("expected tier threshold 5, got %d", c.JITTierThreshold)
	}
}
