package scenarios

import (
	"testing"

	"github.com/netesy/limitly/internal/bytecode"
	"github.com/netesy/limitly/internal/lir"
	"github.com/netesy/limitly/internal/regvm"
	"github.com/netesy/limitly/internal/symbols"
	"github.com/netesy/limitly/internal/typecheck"
)

func runScenario(t *testing.T, name string) interface{} {
	t.Helper()
	scenario, ok := Get(name)
	if !ok {
		t.Fatalf("unknown scenario %q", name)
	}

	table := symbols.NewTable()
	checker := typecheck.NewChecker(table)
	checker.CheckProgram(scenario.Program)
	if diags := checker.Diagnostics(); len(diags) > 0 {
		t.Fatalf("expected a clean type-check, got %v", diags)
	}

	gen := bytecode.NewGenerator(table)
	prog := gen.GenerateProgram(scenario.Program)
	if diags := gen.Diagnostics(); len(diags) > 0 {
		t.Fatalf("expected clean bytecode generation, got %v", diags)
	}

	fn := lir.BuildFunction(name, prog, 0, prog.Len())
	lir.Optimize(fn, lir.Peephole|lir.ConstantFold|lir.DeadCodeEliminate)

	result, err := regvm.New().Run(fn)
	if err != nil {
		t.Fatalf("regvm run failed: %v", err)
	}
	return result
}

func TestSafeDivisionReturnsQuotientWhenDivisorNonZero(t *testing.T) {
	if got := runScenario(t, "safe_division"); got != int64(5) {
		t.Fatalf("expected 10/2=5, got %v", got)
	}
}

func TestConstantFoldReturnsFive(t *testing.T) {
	if got := runScenario(t, "constant_fold"); got != int64(5) {
		t.Fatalf("expected 2+3=5, got %v", got)
	}
}

func TestNamesListsBothScenarios(t *testing.T) {
	names := Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 scenarios, got %v", names)
	}
}
