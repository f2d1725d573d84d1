// Package typecheck walks the AST twice per spec §4.3: first to
// collect every function signature into the top scope, then to check
// every statement and expression, computing each expression's type and
// reporting diagnostics for every rule violation. The computed types
// are returned within the walk only; they are not stored on the AST.
//
// Grounded on the teacher's compile flow (its single-pass Compiler's
// Scope/locals stack informed the Checker's scope-stack shape, see
// DESIGN.md) and on original_source/src/backend/types.hh for the exact
// convertibility and error-union rules, already ported into internal/types.
package typecheck

import (
	"fmt"

	"github.com/netesy/limitly/internal/ast"
	"github.com/netesy/limitly/internal/diagnostics"
	"github.com/netesy/limitly/internal/symbols"
	"github.com/netesy/limitly/internal/types"
)

// Checker is the two-pass type checker. One Checker checks one
// compilation unit.
type Checker struct {
	table *symbols.Table
	diags []*diagnostics.Diagnostic

	// currentFn is nil at top level; while inside a function body it
	// points at that function's signature so error-handling rules
	// (throws/propagation) can be validated against it.
	currentFn *symbols.Signature

	// producedErrors tracks, per function currently being checked,
	// which error types were actually produced by `err(...)` or `?`,
	// to compare against the signature's declared `throws` — spec §4.3's
	// cross-check ("every declared error type must be reachable ...
	// conversely every error type that could be produced must be
	// declared").
	producedErrors map[string]bool
}

func NewChecker(table *symbols.Table) *Checker {
	return &Checker{table: table, producedErrors: map[string]bool{}}
}

func (c *Checker) Diagnostics() []*diagnostics.Diagnostic { return c.diags }

func (c *Checker) report(line int, msg string) {
	d := diagnostics.Get().Report(diagnostics.Semantic, msg, "", line, 0, "", "")
	c.diags = append(c.diags, d)
}

func (c *Checker) reportWithLexeme(line int, msg, lexeme, expected string) {
	d := diagnostics.Get().Report(diagnostics.Semantic, msg, "", line, 0, lexeme, expected)
	c.diags = append(c.diags, d)
}

// CheckProgram runs both passes over stmts.
func (c *Checker) CheckProgram(stmts []ast.Stmt) {
	c.collectSignatures(stmts)
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

// ---- pass 1: signature collection ----

func (c *Checker) collectSignatures(stmts []ast.Stmt) {
	for _, s := range stmts {
		fn, ok := s.(*ast.FunctionDecl)
		if !ok {
			continue
		}
		sig := &symbols.Signature{
			Name:           fn.Name,
			ReturnType:     fn.ReturnType,
			CanFail:        len(fn.Throws) > 0 || fn.ThrowsGeneric,
			DeclaredErrors: fn.Throws,
			ErrorsGeneric:  fn.ThrowsGeneric,
		}
		for _, p := range fn.Params {
			sig.ParamTypes = append(sig.ParamTypes, p.Type)
			sig.ParamOptional = append(sig.ParamOptional, p.Optional)
		}
		c.table.DeclareFunction(sig)
	}
}

// ---- pass 2: statements ----

func (c *Checker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		c.checkLet(st)
	case *ast.AssignStmt:
		entry, ok := c.table.FindVariable(st.Name)
		valTy := c.checkExpr(st.Value)
		if ok && !types.IsCompatible(valTy, entry.Type) {
			c.reportWithLexeme(st.Position.Line, "assignment is not convertible to the variable's type", st.Name, entry.Type.String())
		}
	case *ast.IndexAssignStmt:
		c.checkExpr(st.Object)
		c.checkExpr(st.Index)
		c.checkExpr(st.Value)
	case *ast.ExprStmt:
		c.checkFallible(st.Expr)
	case *ast.FunctionDecl:
		c.checkFunctionDecl(st)
	case *ast.ReturnStmt:
		if st.Value != nil {
			c.checkExpr(st.Value)
		}
	case *ast.IfStmt:
		c.checkExpr(st.Condition)
		c.table.PushScope()
		for _, s2 := range st.Then {
			c.checkStmt(s2)
		}
		c.table.PopScope()
		c.table.PushScope()
		for _, s2 := range st.Else {
			c.checkStmt(s2)
		}
		c.table.PopScope()
	case *ast.WhileStmt:
		c.checkExpr(st.Condition)
		c.table.PushScope()
		for _, s2 := range st.Body {
			c.checkStmt(s2)
		}
		c.table.PopScope()
	case *ast.ForStmt:
		c.table.PushScope()
		if st.Init != nil {
			c.checkStmt(st.Init)
		}
		if st.Condition != nil {
			c.checkExpr(st.Condition)
		}
		for _, s2 := range st.Body {
			c.checkStmt(s2)
		}
		if st.Update != nil {
			c.checkStmt(st.Update)
		}
		c.table.PopScope()
	case *ast.ForInStmt:
		c.table.PushScope()
		c.checkExpr(st.Collection)
		for _, n := range st.Names {
			c.table.DeclareVariable(n, types.AnyType, symbols.Location{Line: st.Position.Line})
		}
		for _, s2 := range st.Body {
			c.checkStmt(s2)
		}
		c.table.PopScope()
	case *ast.MatchStmt:
		c.checkMatch(st.Value, st.Arms, st.Position.Line)
	case *ast.AssertStmt:
		if ty := c.checkExpr(st.Condition); ty != nil && ty.Tag != types.Bool {
			c.report(st.Position.Line, "assert condition must be Bool")
		}
		if st.Message != nil {
			if ty := c.checkExpr(st.Message); ty != nil && ty.Tag != types.String {
				c.report(st.Position.Line, "assert message must be String")
			}
		}
	case *ast.ContractStmt:
		if ty := c.checkExpr(st.Condition); ty != nil && ty.Tag != types.Bool {
			c.report(st.Position.Line, "contract condition must be Bool")
		}
	case *ast.EnumDecl, *ast.SumDecl, *ast.ErrorDecl, *ast.BreakStmt, *ast.ContinueStmt:
		// no expression to check
	case *ast.ClassDecl:
		for _, m := range st.Methods {
			c.checkFunctionDecl(m)
		}
	default:
		c.report(0, fmt.Sprintf("unsupported statement kind %T", s))
	}
}

func (c *Checker) checkLet(st *ast.LetStmt) {
	valTy := c.checkFallible(st.Value)
	if len(st.Names) > 1 {
		if valTy != nil && valTy.Tag != types.Tuple {
			c.report(st.Position.Line, "tuple destructuring requires a Tuple-typed initializer")
		}
		for i, n := range st.Names {
			var elemTy *types.Type = types.AnyType
			if valTy != nil && valTy.Tag == types.Tuple && i < len(valTy.Elems) {
				elemTy = valTy.Elems[i]
			}
			c.table.DeclareVariable(n, elemTy, symbols.Location{Line: st.Position.Line})
		}
		return
	}
	declTy := st.Type
	if declTy == nil {
		declTy = valTy
	} else if valTy != nil && !types.IsCompatible(valTy, declTy) {
		c.reportWithLexeme(st.Position.Line, "initializer is not convertible to the declared type", st.Names[0], declTy.String())
	}
	c.table.DeclareVariable(st.Names[0], declTy, symbols.Location{Line: st.Position.Line})
}

// checkFallible checks e and, if it is an unhandled fallible
// expression (an ErrorUnion-typed expression used directly, neither
// unwrapped by `?` nor matched), reports spec §4.3's
// "unhandled fallible expression" diagnostic.
func (c *Checker) checkFallible(e ast.Expr) *types.Type {
	ty := c.checkExpr(e)
	switch e.(type) {
	case *ast.Propagate, *ast.MatchExpr:
		return ty
	}
	if ty != nil && ty.Tag == types.ErrorUnion {
		c.report(e.Pos().Line, fmt.Sprintf("unhandled fallible expression%s", fallibleSource(e)))
	}
	return ty
}

// fallibleSource names the call behind an unhandled fallible
// expression, e.g. " from call to `divide`" (spec §8 scenario 2 expects
// the diagnostic to name the offending call), or "" when e isn't a
// plain named call.
func fallibleSource(e ast.Expr) string {
	call, ok := e.(*ast.Call)
	if !ok {
		return ""
	}
	if name, ok := call.Callee.(*ast.Variable); ok {
		return fmt.Sprintf(" from call to `%s`", name.Name)
	}
	return ""
}

func (c *Checker) checkFunctionDecl(fn *ast.FunctionDecl) {
	sig, _ := c.table.FindFunction(fn.Name)
	prevFn := c.currentFn
	prevProduced := c.producedErrors
	c.currentFn = sig
	c.producedErrors = map[string]bool{}

	c.table.PushScope()
	for _, p := range fn.Params {
		c.table.DeclareVariable(p.Name, p.Type, symbols.Location{Line: fn.Position.Line})
	}
	for _, s := range fn.Body {
		c.checkStmt(s)
	}
	c.table.PopScope()

	if len(fn.Throws) > 0 {
		if fn.ReturnType == nil || fn.ReturnType.Tag != types.ErrorUnion {
			c.report(fn.Position.Line, "a function declaring throws must have an error-union return type")
		} else if !sameErrorSet(fn.ReturnType.Errors, fn.Throws) {
			c.report(fn.Position.Line, "declared throws set must match the return type's error set exactly")
		}
		for _, declared := range fn.Throws {
			if !c.producedErrors[declared] {
				c.reportWithLexeme(fn.Position.Line, "declared error type is never produced in the function body", declared, "")
			}
		}
	}
	for produced := range c.producedErrors {
		if !fn.ThrowsGeneric && !containsStr(fn.Throws, produced) {
			c.reportWithLexeme(fn.Position.Line, "function produces an error type it does not declare in throws", produced, "")
		}
	}

	c.currentFn = prevFn
	c.producedErrors = prevProduced
}

func sameErrorSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]bool{}
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			return false
		}
	}
	return true
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// checkMatch enforces exhaustiveness over an error union's variants
// (spec §4.3): patterns must cover the success variant and every
// declared error; a generic `err` arm covers every error.
func (c *Checker) checkMatch(scrutinee ast.Expr, arms []ast.Arm, line int) {
	ty := c.checkExpr(scrutinee)

	coveredVal := false
	coveredErrors := map[string]bool{}
	genericErrCovered := false
	for _, arm := range arms {
		c.table.PushScope()
		switch arm.Kind {
		case ast.ArmValue, ast.ArmWildcard:
			coveredVal = true
			if arm.Pattern != nil {
				c.checkExpr(arm.Pattern)
			}
		case ast.ArmError:
			coveredErrors[arm.ErrorType] = true
		case ast.ArmErrorGeneric:
			genericErrCovered = true
		}
		if arm.BindName != "" {
			var bindTy *types.Type = types.AnyType
			if ty != nil && ty.Tag == types.ErrorUnion {
				bindTy = ty.Success
			}
			c.table.DeclareVariable(arm.BindName, bindTy, symbols.Location{Line: line})
		}
		if arm.Guard != nil {
			c.checkExpr(arm.Guard)
		}
		for _, s := range arm.Body {
			c.checkStmt(s)
		}
		c.table.PopScope()
	}

	if ty == nil || ty.Tag != types.ErrorUnion {
		return
	}
	if !coveredVal {
		c.report(line, "non-exhaustive match: missing a pattern for the success value")
	}
	if !genericErrCovered {
		for _, e := range ty.Errors {
			if !coveredErrors[e] {
				c.reportWithLexeme(line, "non-exhaustive match", "", e)
			}
		}
	}
}

// ---- expressions ----

func (c *Checker) checkExpr(e ast.Expr) *types.Type {
	switch ex := e.(type) {
	case *ast.Literal:
		if ex.Type != nil {
			return ex.Type
		}
		return literalType(ex.Value)
	case *ast.Variable:
		if v, ok := c.table.FindVariable(ex.Name); ok {
			return v.Type
		}
		if sig, ok := c.table.FindFunction(ex.Name); ok {
			return types.NewFunction(sig.ParamTypes, sig.ReturnType)
		}
		c.reportWithLexeme(ex.Position.Line, "undeclared identifier", ex.Name, "")
		return types.AnyType
	case *ast.Binary:
		l := c.checkExpr(ex.Left)
		r := c.checkExpr(ex.Right)
		switch ex.Operator {
		case "==", "!=", "<", "<=", ">", ">=":
			return types.BoolType
		default:
			return types.GetCommonType(l, r)
		}
	case *ast.Unary:
		return c.checkExpr(ex.Operand)
	case *ast.Logical:
		c.checkExpr(ex.Left)
		c.checkExpr(ex.Right)
		return types.BoolType
	case *ast.Call:
		return c.checkCall(ex)
	case *ast.Lambda:
		c.table.PushScope()
		var params []*types.Type
		for _, p := range ex.Params {
			c.table.DeclareVariable(p.Name, p.Type, symbols.Location{Line: ex.Position.Line})
			params = append(params, p.Type)
		}
		for _, s := range ex.Body {
			c.checkStmt(s)
		}
		c.table.PopScope()
		return types.NewFunction(params, ex.ReturnType)
	case *ast.Index:
		obj := c.checkExpr(ex.Object)
		c.checkExpr(ex.Index)
		if obj != nil && obj.Tag == types.List {
			return obj.Elem
		}
		if obj != nil && obj.Tag == types.Dict {
			return obj.Value
		}
		return types.AnyType
	case *ast.Property:
		c.checkExpr(ex.Object)
		return types.AnyType
	case *ast.ListLit:
		var elemTy *types.Type
		for _, el := range ex.Elements {
			t := c.checkExpr(el)
			if elemTy == nil {
				elemTy = t
			}
		}
		if elemTy == nil {
			elemTy = types.AnyType
		}
		return types.NewList(elemTy)
	case *ast.DictLit:
		var kTy, vTy *types.Type
		for i := range ex.Keys {
			kTy = c.checkExpr(ex.Keys[i])
			vTy = c.checkExpr(ex.Values[i])
		}
		if kTy == nil {
			kTy = types.AnyType
		}
		if vTy == nil {
			vTy = types.AnyType
		}
		return types.NewDict(kTy, vTy)
	case *ast.TupleLit:
		var elems []*types.Type
		for _, el := range ex.Elements {
			elems = append(elems, c.checkExpr(el))
		}
		return types.NewTuple(elems...)
	case *ast.ErrConstruct:
		return c.checkErrConstruct(ex)
	case *ast.OkConstruct:
		valTy := c.checkExpr(ex.Value)
		if c.currentFn != nil && c.currentFn.ReturnType != nil && c.currentFn.ReturnType.Tag == types.ErrorUnion {
			return c.currentFn.ReturnType
		}
		return types.CreateErrorUnion(valTy, nil, true)
	case *ast.Propagate:
		return c.checkPropagate(ex)
	case *ast.MatchExpr:
		c.checkMatch(ex.Value, ex.Arms, ex.Position.Line)
		return types.AnyType
	case *ast.TupleDestructure:
		ty := c.checkExpr(ex.Value)
		for i, n := range ex.Names {
			var elemTy *types.Type = types.AnyType
			if ty != nil && ty.Tag == types.Tuple && i < len(ty.Elems) {
				elemTy = ty.Elems[i]
			}
			c.table.DeclareVariable(n, elemTy, symbols.Location{Line: ex.Position.Line})
		}
		return nil
	case *ast.Interpolation:
		for _, p := range ex.Parts {
			c.checkExpr(p)
		}
		return types.StringType
	default:
		c.report(0, fmt.Sprintf("unsupported expression kind %T", e))
		return types.AnyType
	}
}

func (c *Checker) checkErrConstruct(ex *ast.ErrConstruct) *types.Type {
	for _, a := range ex.Args {
		c.checkExpr(a)
	}
	if !types.IsKnownErrorType(ex.ErrorType, nil) {
		c.reportWithLexeme(ex.Position.Line, "unknown error type", ex.ErrorType, "")
	}
	if c.currentFn != nil && !c.currentFn.ErrorsGeneric && len(c.currentFn.DeclaredErrors) > 0 {
		if !containsStr(c.currentFn.DeclaredErrors, ex.ErrorType) {
			c.reportWithLexeme(ex.Position.Line, "error type cannot be produced by function: not in its throws set", ex.ErrorType, c.currentFn.Name)
		}
	}
	c.producedErrors[ex.ErrorType] = true
	if c.currentFn != nil && c.currentFn.ReturnType != nil && c.currentFn.ReturnType.Tag == types.ErrorUnion {
		return c.currentFn.ReturnType
	}
	return types.CreateErrorUnion(types.AnyType, []string{ex.ErrorType}, false)
}

func (c *Checker) checkPropagate(ex *ast.Propagate) *types.Type {
	valTy := c.checkExpr(ex.Value)
	if valTy == nil || valTy.Tag != types.ErrorUnion {
		c.report(ex.Position.Line, "'?' requires an ErrorUnion-typed expression")
		return types.AnyType
	}
	if ex.Else != nil {
		c.table.PushScope()
		if ex.ElseVar != "" {
			c.table.DeclareVariable(ex.ElseVar, types.AnyType, symbols.Location{Line: ex.Position.Line})
		}
		for _, s := range ex.Else {
			c.checkStmt(s)
		}
		c.table.PopScope()
		return valTy.Success
	}
	for _, e := range valTy.Errors {
		c.producedErrors[e] = true
	}
	if c.currentFn == nil || !c.currentFn.CanFail {
		c.report(ex.Position.Line, "'?' without an else handler requires the enclosing function to declare throws")
	} else if !c.currentFn.ErrorsGeneric && !types.ErrorSetSubset(valTy.Errors, c.currentFn.ErrorsGeneric, c.currentFn.DeclaredErrors) {
		c.report(ex.Position.Line, "propagated error set is not a subset of the enclosing function's declared errors")
	}
	return valTy.Success
}

func (c *Checker) checkCall(call *ast.Call) *types.Type {
	var args []*types.Type
	for _, a := range call.Args {
		args = append(args, c.checkExpr(a))
	}
	name, isName := call.Callee.(*ast.Variable)
	if isName {
		if sig, ok := c.table.FindFunction(name.Name); ok {
			if !sig.IsValidArgCount(len(call.Args)) {
				c.reportWithLexeme(call.Position.Line, "wrong number of arguments", name.Name, fmt.Sprintf("%d", sig.MinRequiredArgs()))
			}
			for i, argTy := range args {
				if i < len(sig.ParamTypes) && argTy != nil && !types.IsCompatible(argTy, sig.ParamTypes[i]) {
					c.reportWithLexeme(call.Position.Line, "argument is not convertible to the parameter's type", name.Name, sig.ParamTypes[i].String())
				}
			}
			if sig.CanFail && c.currentFn != nil && c.currentFn.CanFail {
				if !c.currentFn.ErrorsGeneric && !types.ErrorSetSubset(sig.DeclaredErrors, c.currentFn.ErrorsGeneric, c.currentFn.DeclaredErrors) {
					c.report(call.Position.Line, "callee's error set is not a subset of the caller's declared errors")
				}
			}
			return sig.ReturnType
		}
	}
	calleeTy := c.checkExpr(call.Callee)
	if calleeTy != nil && calleeTy.Tag == types.Function {
		for i, argTy := range args {
			if i < len(calleeTy.Params) && argTy != nil && !types.IsCompatible(argTy, calleeTy.Params[i]) {
				c.report(call.Position.Line, "argument is not convertible to the higher-order parameter's type")
			}
		}
		return calleeTy.Return
	}
	return types.AnyType
}

func literalType(v interface{}) *types.Type {
	switch v.(type) {
	case int64:
		return types.IntType
	case uint64:
		return types.UInt64Type
	case float32, float64:
		return types.Float64Type
	case bool:
		return types.BoolType
	case string:
		return types.StringType
	case nil:
		return types.NilType
	default:
		return types.AnyType
	}
}
