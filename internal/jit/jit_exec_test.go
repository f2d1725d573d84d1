//go:build jitexec

// This file exercises the real clang/lld toolchain and Go's plugin
// loader, so it's gated behind a build tag the way the teacher gates
// its own environment-heavy tests (see internal/vm/db_security_test.go
// gating on a live database) — it does not run in the default test
// suite.
package jit

import (
	"testing"

	"github.com/netesy/limitly/internal/bytecode"
	"github.com/netesy/limitly/internal/lir"
	"github.com/netesy/limitly/internal/regvm"
)

// TestSafeDivisionMatchesRegisterVMOracle runs the division of seed
// scenario 1 (10 / 2, as hand-emitted bytecode) through LIR build ->
// optimizer -> JIT compile-to-memory, and asserts the JIT-compiled
// function's result against the register-VM oracle's result for the
// same LIR (spec §8's seed scenario 1, cross-checked per the testable
// properties section; the type-checked AST form of that scenario runs
// in internal/scenarios' tests).
func TestSafeDivisionMatchesRegisterVMOracle(t *testing.T) {
	p := bytecode.NewProgram()
	p.EmitInt(bytecode.PushInt, 1, 10)
	p.EmitInt(bytecode.PushInt, 1, 2)
	p.Emit(bytecode.Divide, 1)
	p.Emit(bytecode.Return, 1)

	fn := lir.BuildFunction("safe_divide", p, 0, p.Len())
	lir.Optimize(fn, lir.Peephole|lir.ConstantFold|lir.DeadCodeEliminate)

	oracleResult, err := regvm.New().Run(fn)
	if err != nil {
		t.Fatalf("oracle run failed: %v", err)
	}

	c := NewCompiler()
	c.ProcessFunction(fn)
	result, err := c.Compile(ToMemory, "")
	if err != nil || !result.Success {
		t.Fatalf("jit compile failed: %v (result=%+v)", err, result)
	}

	native, ok := result.CompiledFunction.(func() int64)
	if !ok {
		t.Fatalf("unexpected compiled function signature")
	}
	if native() != oracleResult {
		t.Fatalf("jit result %v disagreed with oracle result %v", native(), oracleResult)
	}
}
