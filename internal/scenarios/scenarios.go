// Package scenarios holds hand-built internal/ast fixtures for the
// seed end-to-end scenarios of spec §8's testable-properties section,
// trimmed to the opcode families the LIR builder, optimizer, and
// register-VM oracle actually lower and execute (arithmetic,
// comparisons, control flow, return) — match/error-union execution is
// bytecode-VM territory the core's LIR/JIT layer doesn't cover (spec
// §4.7 names its supported subset explicitly), so those constructs
// are exercised by internal/typecheck and internal/bytecode's own
// tests rather than run end-to-end here.
package scenarios

import "github.com/netesy/limitly/internal/ast"

// Scenario is one runnable fixture: a small program. cmd/limitly lowers
// the whole program into one LIR function named after the scenario.
type Scenario struct {
	Program []ast.Stmt
}

var registry = map[string]Scenario{
	"safe_division": safeDivision(),
	"constant_fold": constantFold(),
}

// Names returns the registered scenario names in a stable order.
func Names() []string {
	return []string{"safe_division", "constant_fold"}
}

// Get looks up a scenario by name.
func Get(name string) (Scenario, bool) {
	s, ok := registry[name]
	return s, ok
}

// safeDivision is a call-free rendition of spec §8 seed scenario 1: it
// guards the division by zero with a plain conditional return rather
// than `err`/`ok`/`match`, since the LIR/regvm/JIT layer's supported
// subset doesn't include match-family bytecode (MATCH_PATTERN,
// STORE_TEMP/LOAD_TEMP) — that construct is validated directly at the
// bytecode-generation and type-checking layers instead.
//
//	fn main(): int {
//	  var b = 2;
//	  if (b == 0) { return -1; }
//	  return 10 / b;
//	}
func safeDivision() Scenario {
	pos := ast.Position{File: "safe_division", Line: 1}
	body := []ast.Stmt{
		&ast.LetStmt{Position: pos, Names: []string{"b"}, Value: &ast.Literal{Position: pos, Value: int64(2)}},
		&ast.IfStmt{
			Position: pos,
			Condition: &ast.Binary{
				Position: pos,
				Left:     &ast.Variable{Position: pos, Name: "b"},
				Operator: "==",
				Right:    &ast.Literal{Position: pos, Value: int64(0)},
			},
			Then: []ast.Stmt{
				&ast.ReturnStmt{Position: pos, Value: &ast.Literal{Position: pos, Value: int64(-1)}},
			},
		},
		&ast.ReturnStmt{Position: pos, Value: &ast.Binary{
			Position: pos,
			Left:     &ast.Literal{Position: pos, Value: int64(10)},
			Operator: "/",
			Right:    &ast.Variable{Position: pos, Name: "b"},
		}},
	}
	return Scenario{Program: []ast.Stmt{
		&ast.FunctionDecl{Position: pos, Name: "main", ReturnType: nil, Body: body},
	}}
}

// constantFold is spec §8 seed scenario 6: the constant-fold pass turns
// `2 + 3` into a LoadConst of 5, and dead-code elimination then drops
// the two operand loads.
//
//	fn main(): int { return 2 + 3; }
func constantFold() Scenario {
	pos := ast.Position{File: "constant_fold", Line: 1}
	body := []ast.Stmt{
		&ast.ReturnStmt{Position: pos, Value: &ast.Binary{
			Position: pos,
			Left:     &ast.Literal{Position: pos, Value: int64(2)},
			Operator: "+",
			Right:    &ast.Literal{Position: pos, Value: int64(3)},
		}},
	}
	return Scenario{Program: []ast.Stmt{
		&ast.FunctionDecl{Position: pos, Name: "main", ReturnType: nil, Body: body},
	}}
}
