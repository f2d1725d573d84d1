package jit

import (
	"strings"
	"testing"

	"github.com/netesy/limitly/internal/bytecode"
	"github.com/netesy/limitly/internal/config"
	"github.com/netesy/limitly/internal/lir"
)

func buildAddFunction(name string) *lir.Function {
	p := bytecode.NewProgram()
	p.EmitInt(bytecode.PushInt, 1, 2)
	p.EmitInt(bytecode.PushInt, 1, 3)
	p.Emit(bytecode.Add, 1)
	p.Emit(bytecode.Return, 1)
	return lir.BuildFunction(name, p, 0, p.Len())
}

func TestEmitFunctionRendersLLVMIRWithExpectedFunctionName(t *testing.T) {
	e := newEmitter()
	fn := buildAddFunction("add_literals")
	if _, err := e.emitFunction(fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ir := e.module.String()
	if !strings.Contains(ir, "@add_literals") {
		t.Fatalf("expected rendered IR to declare add_literals, got:\n%s", ir)
	}
	if !strings.Contains(ir, "declare") || !strings.Contains(ir, "@printf") {
		t.Fatalf("expected external printf declaration in module, got:\n%s", ir)
	}
}

func TestProcessFunctionLeavesStatsUntouchedBeforeCompile(t *testing.T) {
	c := NewCompiler(config.WithDebugMode(true))
	c.ProcessFunction(buildAddFunction("f1"))
	c.ProcessFunction(buildAddFunction("f2"))

	if got := c.GetStats().FunctionsCompiled; got != 0 {
		t.Fatalf("functions should only be counted inside Compile, got %d before Compile", got)
	}
}

func TestEnableOptimizationsTogglesFlags(t *testing.T) {
	c := NewCompiler()
	c.EnableOptimizations(false)
	if c.cfg.OptimizationFlags != 0 {
		t.Fatalf("expected optimizations disabled, got %v", c.cfg.OptimizationFlags)
	}
	c.EnableOptimizations(true)
	if c.cfg.OptimizationFlags == 0 {
		t.Fatalf("expected optimizations re-enabled")
	}
}

func TestSetDebugModeUpdatesConfig(t *testing.T) {
	c := NewCompiler()
	c.SetDebugMode(true)
	if !c.cfg.DebugMode {
		t.Fatalf("expected debug mode enabled")
	}
}
