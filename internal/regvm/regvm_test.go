package regvm

import (
	"testing"

	"github.com/netesy/limitly/internal/bytecode"
	"github.com/netesy/limitly/internal/lir"
)

func TestRunAddAndReturnMatchesBytecode(t *testing.T) {
	p := bytecode.NewProgram()
	p.EmitInt(bytecode.PushInt, 1, 2)
	p.EmitInt(bytecode.PushInt, 1, 3)
	p.Emit(bytecode.Add, 1)
	p.Emit(bytecode.Return, 1)

	fn := lir.BuildFunction("add_literals", p, 0, p.Len())
	got, err := New().Run(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != int64(5) {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestRunBranchTakesFalseSide(t *testing.T) {
	p := bytecode.NewProgram()
	p.EmitBool(bytecode.PushBool, 1, false)
	jif := p.Emit(bytecode.JumpIfFalse, 1)
	p.EmitInt(bytecode.PushInt, 1, 1)
	p.Emit(bytecode.Return, 1)
	elseTarget := p.Len()
	p.PatchJumpTarget(jif, int64(elseTarget-jif-1))
	p.EmitInt(bytecode.PushInt, 1, 0)
	p.Emit(bytecode.Return, 1)

	fn := lir.BuildFunction("branch", p, 0, p.Len())
	got, err := New().Run(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != int64(0) {
		t.Fatalf("expected the false branch's 0, got %v", got)
	}
}

func TestRunDivideByZeroReportsError(t *testing.T) {
	p := bytecode.NewProgram()
	p.EmitInt(bytecode.PushInt, 1, 1)
	p.EmitInt(bytecode.PushInt, 1, 0)
	p.Emit(bytecode.Divide, 1)
	p.Emit(bytecode.Return, 1)

	fn := lir.BuildFunction("div_zero", p, 0, p.Len())
	if _, err := New().Run(fn); err == nil {
		t.Fatalf("expected a division-by-zero error")
	}
}

func TestRunPrintRecordsOutput(t *testing.T) {
	p := bytecode.NewProgram()
	p.EmitInt(bytecode.PushInt, 1, 42)
	p.Emit(bytecode.Print, 1)
	p.Emit(bytecode.Halt, 1)

	fn := lir.BuildFunction("printer", p, 0, p.Len())
	vm := New()
	if _, err := vm.Run(fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	printed := vm.Printed()
	if len(printed) != 1 || printed[0] != "42" {
		t.Fatalf("expected printed output [42], got %v", printed)
	}
}

func TestRunRejectsInvalidCFG(t *testing.T) {
	fn := &lir.Function{CFG: lir.NewCFG()}
	b := fn.CFG.CreateBlock("entry")
	b.IsEntry = true
	b.Instructions = []lir.Inst{{Op: lir.LoadConst, Dst: 0, Const: int64(1)}}
	// no terminator and not marked exit: Validate must reject this.

	if _, err := New().Run(fn); err == nil {
		t.Fatalf("expected Validate to reject an unterminated non-exit block")
	}
}
