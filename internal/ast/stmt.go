package ast

import "github.com/netesy/limitly/internal/types"

// Stmt is any statement node.
type Stmt interface {
	Accept(v StmtVisitor) interface{}
	Pos() Position
}

// LetStmt declares one or more names, supporting tuple destructuring
// (Names has len > 1 when the source wrote `let (a, b) = pair`).
type LetStmt struct {
	Position
	Names []string
	Type  *types.Type // nil when inferred
	Value Expr
}

func (l *LetStmt) Accept(v StmtVisitor) interface{} { return v.VisitLetStmt(l) }

// AssignStmt is `name = value`.
type AssignStmt struct {
	Position
	Name  string
	Value Expr
}

func (a *AssignStmt) Accept(v StmtVisitor) interface{} { return v.VisitAssignStmt(a) }

// IndexAssignStmt is `obj[idx] = value`.
type IndexAssignStmt struct {
	Position
	Object, Index, Value Expr
}

func (i *IndexAssignStmt) Accept(v StmtVisitor) interface{} { return v.VisitIndexAssignStmt(i) }

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Position
	Expr Expr
}

func (e *ExprStmt) Accept(v StmtVisitor) interface{} { return v.VisitExprStmt(e) }

// FunctionDecl is a top-level or nested function declaration. Throws
// names the error set this function may propagate via `?`
// (spec §4.3); ThrowsGeneric marks `throws any`.
type FunctionDecl struct {
	Position
	Name          string
	Params        []Param
	ReturnType    *types.Type
	Throws        []string
	ThrowsGeneric bool
	Body          []Stmt
}

func (f *FunctionDecl) Accept(v StmtVisitor) interface{} { return v.VisitFunctionDecl(f) }

// ReturnStmt returns an optional value from the enclosing function.
type ReturnStmt struct {
	Position
	Value Expr // nil for a bare `return`
}

func (r *ReturnStmt) Accept(v StmtVisitor) interface{} { return v.VisitReturnStmt(r) }

// IfStmt is a conditional with optional else.
type IfStmt struct {
	Position
	Condition  Expr
	Then, Else []Stmt
}

func (i *IfStmt) Accept(v StmtVisitor) interface{} { return v.VisitIfStmt(i) }

// WhileStmt is a condition-checked loop.
type WhileStmt struct {
	Position
	Condition Expr
	Body      []Stmt
}

func (w *WhileStmt) Accept(v StmtVisitor) interface{} { return v.VisitWhileStmt(w) }

// ForStmt is a C-style three-clause loop.
type ForStmt struct {
	Position
	Init      Stmt
	Condition Expr
	Update    Stmt
	Body      []Stmt
}

func (f *ForStmt) Accept(v StmtVisitor) interface{} { return v.VisitForStmt(f) }

// ForInStmt iterates a container or range, destructuring into one or
// two bound names (value, or index+value).
type ForInStmt struct {
	Position
	Names      []string
	Collection Expr
	Body       []Stmt
}

func (f *ForInStmt) Accept(v StmtVisitor) interface{} { return v.VisitForInStmt(f) }

// BreakStmt / ContinueStmt end or restart the nearest enclosing loop.
type BreakStmt struct{ Position }

func (b *BreakStmt) Accept(v StmtVisitor) interface{} { return v.VisitBreakStmt(b) }

type ContinueStmt struct{ Position }

func (c *ContinueStmt) Accept(v StmtVisitor) interface{} { return v.VisitContinueStmt(c) }

// MatchStmt is a match used as a statement; exhaustiveness over the
// scrutinee's error-union variants is enforced by internal/typecheck
// (spec §4.3's exhaustiveness rule).
type MatchStmt struct {
	Position
	Value Expr
	Arms  []Arm
}

func (m *MatchStmt) Accept(v StmtVisitor) interface{} { return v.VisitMatchStmt(m) }

// AssertStmt checks a boolean condition at runtime, raising a
// diagnostic-backed failure if false (spec §4.3 "assert/contract
// typing").
type AssertStmt struct {
	Position
	Condition Expr
	Message   Expr // optional
}

func (a *AssertStmt) Accept(v StmtVisitor) interface{} { return v.VisitAssertStmt(a) }

// ContractStmt declares a pre/postcondition on the enclosing function.
type ContractKind int

const (
	ContractRequires ContractKind = iota
	ContractEnsures
)

type ContractStmt struct {
	Position
	Kind      ContractKind
	Condition Expr
	Message   Expr
}

func (c *ContractStmt) Accept(v StmtVisitor) interface{} { return v.VisitContractStmt(c) }

// EnumDecl declares a plain enum (spec §3.1 Enum type).
type EnumDecl struct {
	Position
	Name     string
	Variants []string
}

func (e *EnumDecl) Accept(v StmtVisitor) interface{} { return v.VisitEnumDecl(e) }

// SumDecl declares a tagged-union sum type, each variant carrying an
// optional payload type.
type SumVariant struct {
	Name    string
	Payload *types.Type // nil for a unit variant
}

type SumDecl struct {
	Position
	Name     string
	Variants []SumVariant
}

func (s *SumDecl) Accept(v StmtVisitor) interface{} { return v.VisitSumDecl(s) }

// ErrorDecl declares a user-defined error type with named fields
// (spec §3.1, §4.3). The checker does not register it: only the names
// in types.BuiltinErrorTypes are known error types, so `err(...)` of a
// declared name is reported as an unknown error type.
type ErrorDecl struct {
	Position
	Name   string
	Fields []types.FieldDecl
}

func (e *ErrorDecl) Accept(v StmtVisitor) interface{} { return v.VisitErrorDecl(e) }

// ClassDecl declares a user-defined class (spec's UserDefined type).
type ClassDecl struct {
	Position
	Name       string
	Superclass string
	Fields     []types.FieldDecl
	Methods    []*FunctionDecl
}

func (c *ClassDecl) Accept(v StmtVisitor) interface{} { return v.VisitClassDecl(c) }

// StmtVisitor dispatches over every statement node kind.
type StmtVisitor interface {
	VisitLetStmt(s *LetStmt) interface{}
	VisitAssignStmt(s *AssignStmt) interface{}
	VisitIndexAssignStmt(s *IndexAssignStmt) interface{}
	VisitExprStmt(s *ExprStmt) interface{}
	VisitFunctionDecl(s *FunctionDecl) interface{}
	VisitReturnStmt(s *ReturnStmt) interface{}
	VisitIfStmt(s *IfStmt) interface{}
	VisitWhileStmt(s *WhileStmt) interface{}
	VisitForStmt(s *ForStmt) interface{}
	VisitForInStmt(s *ForInStmt) interface{}
	VisitBreakStmt(s *BreakStmt) interface{}
	VisitContinueStmt(s *ContinueStmt) interface{}
	VisitMatchStmt(s *MatchStmt) interface{}
	VisitAssertStmt(s *AssertStmt) interface{}
	VisitContractStmt(s *ContractStmt) interface{}
	VisitEnumDecl(s *EnumDecl) interface{}
	VisitSumDecl(s *SumDecl) interface{}
	VisitErrorDecl(s *ErrorDecl) interface{}
	VisitClassDecl(s *ClassDecl) interface{}
}
