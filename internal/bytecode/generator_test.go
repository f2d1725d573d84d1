package bytecode

import (
	"testing"

	"github.com/netesy/limitly/internal/ast"
	"github.com/netesy/limitly/internal/symbols"
)

func genFor(t *testing.T, stmts []ast.Stmt) *Program {
	t.Helper()
	g := NewGenerator(symbols.NewTable())
	p := g.GenerateProgram(stmts)
	if len(g.Diagnostics()) > 0 {
		t.Fatalf("unexpected diagnostics: %v", g.Diagnostics())
	}
	return p
}

func TestIfStatementPatchesJumpsPastElse(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.IfStmt{
			Condition: &ast.Literal{Value: true},
			Then:      []ast.Stmt{&ast.ExprStmt{Expr: &ast.Literal{Value: int64(1)}}},
			Else:      []ast.Stmt{&ast.ExprStmt{Expr: &ast.Literal{Value: int64(2)}}},
		},
	}
	p := genFor(t, stmts)
	// condition, JUMP_IF_FALSE, then-push, POP, JUMP, else-push, POP, HALT
	foundJIF, foundJ := false, false
	for _, inst := range p.Instructions {
		if inst.Op == JumpIfFalse {
			foundJIF = true
		}
		if inst.Op == Jump {
			foundJ = true
		}
	}
	if !foundJIF || !foundJ {
		t.Fatalf("expected both JUMP_IF_FALSE and JUMP in if-else codegen, got %v", p.Instructions)
	}
	// JUMP_IF_FALSE (index 1) lands on the else push; JUMP (index 4) on HALT
	if got := 1 + int(p.Instructions[1].IntImm) + 1; got != 5 {
		t.Fatalf("expected JUMP_IF_FALSE to target the else branch at 5, got %d", got)
	}
	if got := 4 + int(p.Instructions[4].IntImm) + 1; got != 7 {
		t.Fatalf("expected JUMP to target HALT at 7, got %d", got)
	}
	if p.Instructions[len(p.Instructions)-1].Op != Halt {
		t.Fatalf("expected program to terminate with HALT")
	}
}

func TestBreakOutsideLoopReportsDiagnostic(t *testing.T) {
	g := NewGenerator(symbols.NewTable())
	g.GenerateProgram([]ast.Stmt{&ast.BreakStmt{}})
	if len(g.Diagnostics()) == 0 {
		t.Fatal("expected a diagnostic for break outside a loop")
	}
}

func TestWhileLoopPatchesBreakPastLoopEnd(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.WhileStmt{
			Condition: &ast.Literal{Value: true},
			Body:      []ast.Stmt{&ast.BreakStmt{}},
		},
	}
	p := genFor(t, stmts)
	var breakJumpIdx = -1
	for i, inst := range p.Instructions {
		if inst.Op == Jump && inst.HasInt && i > 0 {
			breakJumpIdx = i
			break
		}
	}
	if breakJumpIdx == -1 {
		t.Fatal("expected to find the break's JUMP instruction")
	}
	target := breakJumpIdx + int(p.Instructions[breakJumpIdx].IntImm) + 1
	if target <= breakJumpIdx {
		t.Fatalf("expected break to jump forward past the loop, target=%d idx=%d", target, breakJumpIdx)
	}
}

func TestTupleDestructuringEmitsGetIndexPerName(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.LetStmt{Names: []string{"a", "b"}, Value: &ast.Variable{Name: "pair"}},
	}
	p := genFor(t, stmts)
	count := 0
	for _, inst := range p.Instructions {
		if inst.Op == GetIndex {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 GET_INDEX for a 2-name tuple destructure, got %d", count)
	}
}

func TestErrConstructCarriesArgcAndErrorType(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.ErrConstruct{ErrorType: "DivisionByZero", Args: []ast.Expr{&ast.Literal{Value: int64(1)}}}},
	}
	p := genFor(t, stmts)
	found := false
	for _, inst := range p.Instructions {
		if inst.Op == ConstructError {
			found = true
			if inst.StrImm != "DivisionByZero" || inst.IntImm != 1 {
				t.Fatalf("expected CONSTRUCT_ERROR(1, DivisionByZero), got %+v", inst)
			}
		}
	}
	if !found {
		t.Fatal("expected a CONSTRUCT_ERROR instruction")
	}
}

func TestPropagateWithoutHandlerEmitsPropagateError(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.Propagate{Value: &ast.Variable{Name: "x"}}},
	}
	p := genFor(t, stmts)
	found := false
	for _, inst := range p.Instructions {
		if inst.Op == PropagateError {
			found = true
		}
	}
	if !found {
		t.Fatal("expected PROPAGATE_ERROR when no else-handler is present")
	}
}

func TestLambdaEmitsCaptureForFreeVariableOnly(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.Lambda{
			Params: []ast.Param{{Name: "x"}},
			Body: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.Binary{
					Left:     &ast.Variable{Name: "x"},
					Operator: "+",
					Right:    &ast.Variable{Name: "captured"},
				}},
			},
		}},
	}
	p := genFor(t, stmts)
	captures := 0
	for _, inst := range p.Instructions {
		if inst.Op == CaptureVar {
			captures++
			if inst.StrImm != "captured" {
				t.Fatalf("expected only 'captured' to be captured, got %s", inst.StrImm)
			}
		}
	}
	if captures != 1 {
		t.Fatalf("expected exactly 1 capture (param x excluded), got %d", captures)
	}
}
