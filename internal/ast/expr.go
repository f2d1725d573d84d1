// Package ast is the canonical AST the core pipeline (typecheck ->
// bytecode generator -> LIR -> regvm/JIT) consumes. Node shapes extend
// what a recursive-descent surface parser would naturally produce with
// the constructs spec.md's core actually needs: error-union
// construction/propagation, match over result/error patterns, throws
// clauses, assert/contract, lambda capture lists, and tuple
// destructuring. The surface lexer/parser are the external collaborator
// named in spec §6 and out of this module's scope (see DESIGN.md);
// this package is the contract a future front end would target.
package ast

import "github.com/netesy/limitly/internal/types"

// Expr is any expression node.
type Expr interface {
	Accept(v ExprVisitor) interface{}
	Pos() Position
}

// Position is a source location, independent of internal/symbols.Location
// so this package has no dependency on the symbol table.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) Pos() Position { return p }

// Literal is a literal of any primitive kind.
type Literal struct {
	Position
	Value interface{}
	Type  *types.Type // optional explicit type; the checker reads it and never sets it
}

func (l *Literal) Accept(v ExprVisitor) interface{} { return v.VisitLiteral(l) }

// Variable is a name reference.
type Variable struct {
	Position
	Name string
}

func (n *Variable) Accept(v ExprVisitor) interface{} { return v.VisitVariable(n) }

// Binary is a binary operator expression.
type Binary struct {
	Position
	Left, Right Expr
	Operator    string
}

func (b *Binary) Accept(v ExprVisitor) interface{} { return v.VisitBinary(b) }

// Unary is a prefix unary expression.
type Unary struct {
	Position
	Operator string
	Operand  Expr
}

func (u *Unary) Accept(v ExprVisitor) interface{} { return v.VisitUnary(u) }

// Logical is a short-circuiting && / || expression.
type Logical struct {
	Position
	Left, Right Expr
	Operator    string
}

func (l *Logical) Accept(v ExprVisitor) interface{} { return v.VisitLogical(l) }

// Call is a function/method call, supporting named arguments (spec
// §4.4's "calls, including higher-order/named-args").
type Call struct {
	Position
	Callee    Expr
	Args      []Expr
	ArgNames  []string // parallel to Args; "" for positional
}

func (c *Call) Accept(v ExprVisitor) interface{} { return v.VisitCall(c) }

// Lambda is an anonymous function literal. Captures is filled in by
// free-variable analysis during bytecode generation (spec §4.4).
type Lambda struct {
	Position
	Params     []Param
	ReturnType *types.Type
	Body       []Stmt
	Captures   []string
}

func (l *Lambda) Accept(v ExprVisitor) interface{} { return v.VisitLambda(l) }

// Param is a function/lambda parameter.
type Param struct {
	Name     string
	Type     *types.Type
	Optional bool
	Default  Expr
}

// Index is a container index/subscript expression.
type Index struct {
	Position
	Object, Index Expr
}

func (i *Index) Accept(v ExprVisitor) interface{} { return v.VisitIndex(i) }

// Property is a field/member access.
type Property struct {
	Position
	Object   Expr
	Property string
}

func (p *Property) Accept(v ExprVisitor) interface{} { return v.VisitProperty(p) }

// ListLit is a list literal: [e1, e2, ...].
type ListLit struct {
	Position
	Elements []Expr
}

func (l *ListLit) Accept(v ExprVisitor) interface{} { return v.VisitListLit(l) }

// DictLit is a dict literal: {k1: v1, ...}.
type DictLit struct {
	Position
	Keys, Values []Expr
}

func (d *DictLit) Accept(v ExprVisitor) interface{} { return v.VisitDictLit(d) }

// TupleLit is a tuple literal: (e1, e2, ...).
type TupleLit struct {
	Position
	Elements []Expr
}

func (t *TupleLit) Accept(v ExprVisitor) interface{} { return v.VisitTupleLit(t) }

// ErrConstruct is `err(E, args...)`, building an ErrorValue of the
// named error type (spec §4.4).
type ErrConstruct struct {
	Position
	ErrorType string
	Args      []Expr
}

func (e *ErrConstruct) Accept(v ExprVisitor) interface{} { return v.VisitErrConstruct(e) }

// OkConstruct is `ok(e)`, wrapping a success value into an error-union.
type OkConstruct struct {
	Position
	Value Expr
}

func (o *OkConstruct) Accept(v ExprVisitor) interface{} { return v.VisitOkConstruct(o) }

// Propagate is `e?`: unwrap the success value of a fallible expression
// or propagate its error to the enclosing function, which must declare
// it in its throws set (spec §4.3, §4.4).
type Propagate struct {
	Position
	Value Expr
	// Else, if non-nil, is evaluated (binding the error under ElseVar)
	// instead of propagating — `e? else |err| { ... }`.
	Else   []Stmt
	ElseVar string
}

func (p *Propagate) Accept(v ExprVisitor) interface{} { return v.VisitPropagate(p) }

// MatchExpr is a match used in expression position; MatchStmt (stmt.go)
// is the statement form. Both share Arm.
type MatchExpr struct {
	Position
	Value Expr
	Arms  []Arm
}

func (m *MatchExpr) Accept(v ExprVisitor) interface{} { return v.VisitMatchExpr(m) }

// Arm is one match arm. Kind selects how Pattern/ErrorType/BindName are
// interpreted (spec §4.4's "pattern markers": value pattern, `err E`
// pattern, generic `err _` pattern).
type ArmKind int

const (
	ArmValue ArmKind = iota
	ArmError
	ArmErrorGeneric
	ArmWildcard
)

type Arm struct {
	Kind      ArmKind
	Pattern   Expr   // for ArmValue
	ErrorType string // for ArmError
	BindName  string // binds the matched value/error under this name
	Guard     Expr   // optional `if` guard
	Body      []Stmt
}

// TupleDestructure appears as an expression target for destructuring
// assignment/declaration: `let (a, b) = pair`.
type TupleDestructure struct {
	Position
	Names []string
	Value Expr
}

func (t *TupleDestructure) Accept(v ExprVisitor) interface{} { return v.VisitTupleDestructure(t) }

// Interpolation is a string with embedded expressions.
type Interpolation struct {
	Position
	Parts []Expr
}

func (i *Interpolation) Accept(v ExprVisitor) interface{} { return v.VisitInterpolation(i) }

// ExprVisitor dispatches over every expression node kind.
type ExprVisitor interface {
	VisitLiteral(e *Literal) interface{}
	VisitVariable(e *Variable) interface{}
	VisitBinary(e *Binary) interface{}
	VisitUnary(e *Unary) interface{}
	VisitLogical(e *Logical) interface{}
	VisitCall(e *Call) interface{}
	VisitLambda(e *Lambda) interface{}
	VisitIndex(e *Index) interface{}
	VisitProperty(e *Property) interface{}
	VisitListLit(e *ListLit) interface{}
	VisitDictLit(e *DictLit) interface{}
	VisitTupleLit(e *TupleLit) interface{}
	VisitErrConstruct(e *ErrConstruct) interface{}
	VisitOkConstruct(e *OkConstruct) interface{}
	VisitPropagate(e *Propagate) interface{}
	VisitMatchExpr(e *MatchExpr) interface{}
	VisitTupleDestructure(e *TupleDestructure) interface{}
	VisitInterpolation(e *Interpolation) interface{}
}
