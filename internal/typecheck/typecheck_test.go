package typecheck

import (
	"testing"

	"github.com/netesy/limitly/internal/ast"
	"github.com/netesy/limitly/internal/symbols"
	"github.com/netesy/limitly/internal/types"
)

func newChecker() *Checker {
	return NewChecker(symbols.NewTable())
}

func TestLetInfersInitializerType(t *testing.T) {
	c := newChecker()
	c.CheckProgram([]ast.Stmt{
		&ast.LetStmt{Names: []string{"x"}, Value: &ast.Literal{Value: int64(1)}},
	})
	if len(c.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", c.Diagnostics())
	}
	v, ok := c.table.FindVariable("x")
	if !ok || v.Type.Tag != types.Int {
		t.Fatalf("expected x inferred as int, got %v ok=%v", v, ok)
	}
}

func TestUnhandledFallibleExpressionIsReported(t *testing.T) {
	c := newChecker()
	fn := &ast.FunctionDecl{
		Name:       "f",
		ReturnType: types.CreateErrorUnion(types.IntType, []string{"DivisionByZero"}, false),
		Throws:     []string{"DivisionByZero"},
		Body: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.ErrConstruct{ErrorType: "DivisionByZero"}},
		},
	}
	c.CheckProgram([]ast.Stmt{fn})
	found := false
	for _, d := range c.Diagnostics() {
		if d.Message == "unhandled fallible expression" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unhandled-fallible-expression diagnostic, got %v", c.Diagnostics())
	}
}

func TestUnhandledFallibleCallNamesTheCallee(t *testing.T) {
	c := newChecker()
	errTy := types.CreateErrorUnion(types.IntType, []string{"DivisionByZero"}, false)
	c.table.DeclareFunction(&symbols.Signature{
		Name:           "divide",
		ReturnType:     errTy,
		CanFail:        true,
		DeclaredErrors: []string{"DivisionByZero"},
	})
	c.CheckProgram([]ast.Stmt{
		&ast.ExprStmt{Expr: &ast.Call{Callee: &ast.Variable{Name: "divide"}}},
	})
	found := false
	for _, d := range c.Diagnostics() {
		if d.Message == "unhandled fallible expression from call to `divide`" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the diagnostic to name `divide`, got %v", c.Diagnostics())
	}
}

func TestErrConstructOfUnknownErrorTypeIsReported(t *testing.T) {
	c := newChecker()
	c.CheckProgram([]ast.Stmt{
		&ast.ExprStmt{Expr: &ast.Propagate{Value: &ast.ErrConstruct{ErrorType: "NotARealError"}}},
	})
	found := false
	for _, d := range c.Diagnostics() {
		if d.Message == "unknown error type" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unknown-error-type diagnostic, got %v", c.Diagnostics())
	}
}

func TestThrowsFunctionMustHaveErrorUnionReturnType(t *testing.T) {
	c := newChecker()
	fn := &ast.FunctionDecl{
		Name:       "f",
		ReturnType: types.IntType,
		Throws:     []string{"DivisionByZero"},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.ErrConstruct{ErrorType: "DivisionByZero"}},
		},
	}
	c.CheckProgram([]ast.Stmt{fn})
	found := false
	for _, d := range c.Diagnostics() {
		if d.Message == "a function declaring throws must have an error-union return type" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error-union-return-type diagnostic, got %v", c.Diagnostics())
	}
}

func TestMatchExhaustivenessOverErrorUnion(t *testing.T) {
	c := newChecker()
	c.table.DeclareVariable("r", types.CreateErrorUnion(types.IntType, []string{"DivisionByZero", "IndexOutOfBounds"}, false), symbols.Location{})
	c.CheckProgram([]ast.Stmt{
		&ast.MatchStmt{
			Value: &ast.Variable{Name: "r"},
			Arms: []ast.Arm{
				{Kind: ast.ArmValue, BindName: "v"},
				{Kind: ast.ArmError, ErrorType: "DivisionByZero"},
			},
		},
	})
	found := false
	for _, d := range c.Diagnostics() {
		if d.Message == "non-exhaustive match" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected non-exhaustive match diagnostic for missing IndexOutOfBounds arm, got %v", c.Diagnostics())
	}
}

func TestMatchWithGenericErrorArmIsExhaustive(t *testing.T) {
	c := newChecker()
	c.table.DeclareVariable("r", types.CreateErrorUnion(types.IntType, []string{"DivisionByZero", "IndexOutOfBounds"}, false), symbols.Location{})
	c.CheckProgram([]ast.Stmt{
		&ast.MatchStmt{
			Value: &ast.Variable{Name: "r"},
			Arms: []ast.Arm{
				{Kind: ast.ArmValue, BindName: "v"},
				{Kind: ast.ArmErrorGeneric},
			},
		},
	})
	for _, d := range c.Diagnostics() {
		if d.Message == "non-exhaustive match" {
			t.Fatalf("did not expect non-exhaustive match with a generic err arm present: %v", c.Diagnostics())
		}
	}
}

func TestCallArgCountValidatesAgainstSignature(t *testing.T) {
	c := newChecker()
	fn := &ast.FunctionDecl{
		Name:       "add",
		ReturnType: types.IntType,
		Params:     []ast.Param{{Name: "a", Type: types.IntType}, {Name: "b", Type: types.IntType}},
		Body:       []ast.Stmt{&ast.ReturnStmt{Value: &ast.Binary{Left: &ast.Variable{Name: "a"}, Operator: "+", Right: &ast.Variable{Name: "b"}}}},
	}
	call := &ast.ExprStmt{Expr: &ast.Call{Callee: &ast.Variable{Name: "add"}, Args: []ast.Expr{&ast.Literal{Value: int64(1)}}}}
	c.CheckProgram([]ast.Stmt{fn, call})
	found := false
	for _, d := range c.Diagnostics() {
		if d.Message == "wrong number of arguments" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected wrong-number-of-arguments diagnostic, got %v", c.Diagnostics())
	}
}
