package lir

import (
	"testing"

	"github.com/netesy/limitly/internal/bytecode"
)

func TestBuildFunctionFromAddAndReturn(t *testing.T) {
	p := bytecode.NewProgram()
	p.EmitInt(bytecode.PushInt, 1, 2)
	p.EmitInt(bytecode.PushInt, 1, 3)
	p.Emit(bytecode.Add, 1)
	p.Emit(bytecode.Return, 1)

	fn := BuildFunction("add_literals", p, 0, p.Len())
	if err := fn.CFG.Validate(); err != nil {
		t.Fatalf("invalid CFG: %v", err)
	}
	foundAdd, foundReturn := false, false
	for _, b := range fn.CFG.Blocks {
		for _, inst := range b.Instructions {
			if inst.Op == Add {
				foundAdd = true
			}
			if inst.Op == Return {
				foundReturn = true
			}
		}
	}
	if !foundAdd || !foundReturn {
		t.Fatalf("expected Add and Return in lowered LIR")
	}
}

func TestBuildFunctionWithBranchTerminatesEveryBlock(t *testing.T) {
	p := bytecode.NewProgram()
	p.EmitBool(bytecode.PushBool, 1, true)
	jif := p.Emit(bytecode.JumpIfFalse, 1)
	p.EmitInt(bytecode.PushInt, 1, 1)
	p.Emit(bytecode.Return, 1)
	elseTarget := p.Len()
	p.PatchJumpTarget(jif, int64(elseTarget-jif-1))
	p.EmitInt(bytecode.PushInt, 1, 0)
	p.Emit(bytecode.Return, 1)

	fn := BuildFunction("branch", p, 0, p.Len())
	if err := fn.CFG.Validate(); err != nil {
		t.Fatalf("invalid CFG: %v", err)
	}
}

func TestConstantFoldReplacesKnownArithmetic(t *testing.T) {
	fn := &Function{CFG: NewCFG()}
	b := fn.CFG.CreateBlock("entry")
	b.IsEntry = true
	b.Instructions = []Inst{
		{Op: LoadConst, Dst: 0, Const: int64(2)},
		{Op: LoadConst, Dst: 1, Const: int64(3)},
		{Op: Add, Dst: 2, A: 0, B: 1},
		{Op: Return, A: 2},
	}
	b.IsExit = true
	Optimize(fn, ConstantFold)
	if b.Instructions[2].Op != LoadConst || b.Instructions[2].Const != int64(5) {
		t.Fatalf("expected constant-folded Add to become LoadConst(5), got %+v", b.Instructions[2])
	}
}

func TestDeadCodeEliminationDropsUnreadPureInstruction(t *testing.T) {
	fn := &Function{CFG: NewCFG()}
	b := fn.CFG.CreateBlock("entry")
	b.IsEntry, b.IsExit = true, true
	b.Instructions = []Inst{
		{Op: LoadConst, Dst: 0, Const: int64(1)},
		{Op: LoadConst, Dst: 1, Const: int64(2)}, // never read
		{Op: Return, A: 0},
	}
	Optimize(fn, DeadCodeEliminate)
	for _, inst := range b.Instructions {
		if inst.Dst == 1 {
			t.Fatalf("expected the unread register-1 instruction to be eliminated, got %+v", b.Instructions)
		}
	}
}

func TestPeepholeDropsSelfMov(t *testing.T) {
	b := &BasicBlock{Instructions: []Inst{
		{Op: Mov, Dst: 3, A: 3},
		{Op: Return, A: 3},
	}}
	peephole(b)
	if len(b.Instructions) != 1 {
		t.Fatalf("expected self-Mov to be dropped, got %+v", b.Instructions)
	}
}
