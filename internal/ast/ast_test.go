package ast

import (
	"testing"

	"github.com/netesy/limitly/internal/types"
)

// countingVisitor exercises every Accept method to catch wiring
// mistakes (wrong Visit method called) without needing a real checker.
type countingVisitor struct{ n int }

func (c *countingVisitor) VisitLiteral(*Literal) interface{}                     { c.n++; return nil }
func (c *countingVisitor) VisitVariable(*Variable) interface{}                   { c.n++; return nil }
func (c *countingVisitor) VisitBinary(*Binary) interface{}                       { c.n++; return nil }
func (c *countingVisitor) VisitUnary(*Unary) interface{}                         { c.n++; return nil }
func (c *countingVisitor) VisitLogical(*Logical) interface{}                     { c.n++; return nil }
func (c *countingVisitor) VisitCall(*Call) interface{}                           { c.n++; return nil }
func (c *countingVisitor) VisitLambda(*Lambda) interface{}                       { c.n++; return nil }
func (c *countingVisitor) VisitIndex(*Index) interface{}                        { c.n++; return nil }
func (c *countingVisitor) VisitProperty(*Property) interface{}                   { c.n++; return nil }
func (c *countingVisitor) VisitListLit(*ListLit) interface{}                     { c.n++; return nil }
func (c *countingVisitor) VisitDictLit(*DictLit) interface{}                     { c.n++; return nil }
func (c *countingVisitor) VisitTupleLit(*TupleLit) interface{}                   { c.n++; return nil }
func (c *countingVisitor) VisitErrConstruct(*ErrConstruct) interface{}           { c.n++; return nil }
func (c *countingVisitor) VisitOkConstruct(*OkConstruct) interface{}             { c.n++; return nil }
func (c *countingVisitor) VisitPropagate(*Propagate) interface{}                 { c.n++; return nil }
func (c *countingVisitor) VisitMatchExpr(*MatchExpr) interface{}                 { c.n++; return nil }
func (c *countingVisitor) VisitTupleDestructure(*TupleDestructure) interface{}   { c.n++; return nil }
func (c *countingVisitor) VisitInterpolation(*Interpolation) interface{}         { c.n++; return nil }

func TestExprNodesDispatchToTheirOwnVisitMethod(t *testing.T) {
	nodes := []Expr{
		&Literal{Value: 1},
		&Variable{Name: "x"},
		&Binary{Operator: "+"},
		&Unary{Operator: "-"},
		&Logical{Operator: "&&"},
		&Call{},
		&Lambda{},
		&Index{},
		&Property{Property: "f"},
		&ListLit{},
		&DictLit{},
		&TupleLit{},
		&ErrConstruct{ErrorType: "DivisionByZero"},
		&OkConstruct{},
		&Propagate{},
		&MatchExpr{},
		&TupleDestructure{Names: []string{"a", "b"}},
		&Interpolation{},
	}
	cv := &countingVisitor{}
	for _, n := range nodes {
		n.Accept(cv)
	}
	if cv.n != len(nodes) {
		t.Fatalf("expected every node to dispatch exactly once, got %d for %d nodes", cv.n, len(nodes))
	}
}

func TestSignatureShapesCarryThrowsAndOptionalParams(t *testing.T) {
	fn := &FunctionDecl{
		Name: "safeDivide",
		Params: []Param{
			{Name: "a", Type: types.IntType},
			{Name: "b", Type: types.IntType},
			{Name: "onError", Type: types.StringType, Optional: true},
		},
		ReturnType: types.IntType,
		Throws:     []string{"DivisionByZero"},
	}
	if len(fn.Params) != 3 || !fn.Params[2].Optional {
		t.Fatalf("expected trailing optional param, got %+v", fn.Params)
	}
	if len(fn.Throws) != 1 || fn.Throws[0] != "DivisionByZero" {
		t.Fatalf("expected throws set to carry DivisionByZero, got %v", fn.Throws)
	}
}
