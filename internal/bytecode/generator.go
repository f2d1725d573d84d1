package bytecode

import (
	"fmt"

	"github.com/netesy/limitly/internal/ast"
	"github.com/netesy/limitly/internal/diagnostics"
	"github.com/netesy/limitly/internal/symbols"
)

// loopContext tracks one loop's pending break- and continue-jump patch
// lists (spec §4.4 "a stack of loop contexts"). Both break and continue
// emit their jump before the target instruction they resolve to is
// known — break targets the loop's end, continue targets the loop's
// start (or, for a traditional `for`, its increment block) — so both
// are recorded here and patched once that target is reached.
type loopContext struct {
	breakPatchList    []int
	continuePatchList []int
}

// Generator tree-walks an AST and emits a Program. It owns the state
// spec §4.4 names: the instruction vector, a loop-context stack, a
// temp counter, the current class context, and the symbol table's set
// of declared function names. Grounded on internal/compregister's
// Compiler (loopStack/Scope shape), adapted from register allocation
// to stack-VM emission.
type Generator struct {
	prog *Program

	loopStack []loopContext
	tempCount int

	inClass      bool
	currentClass string

	symbols *symbols.Table
	diags   []*diagnostics.Diagnostic

	lambdaCount int
}

func NewGenerator(tbl *symbols.Table) *Generator {
	return &Generator{prog: NewProgram(), symbols: tbl}
}

func (g *Generator) Program() *Program                       { return g.prog }
func (g *Generator) Diagnostics() []*diagnostics.Diagnostic   { return g.diags }

func (g *Generator) fail(line int, msg string) {
	d := diagnostics.Get().Report(diagnostics.Bytecode, msg, "", line, 0, "", "")
	g.diags = append(g.diags, d)
}

func (g *Generator) newTemp() int {
	t := g.tempCount
	g.tempCount++
	return t
}

// GenerateProgram compiles a whole unit: top-level statements followed
// by HALT.
func (g *Generator) GenerateProgram(stmts []ast.Stmt) *Program {
	for _, s := range stmts {
		g.genStmt(s)
	}
	g.prog.Emit(Halt, 0)
	return g.prog
}

// ---- statements ----

func (g *Generator) genStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		g.genLet(st)
	case *ast.AssignStmt:
		g.genExpr(st.Value)
		g.prog.EmitString(StoreVar, st.Position.Line, st.Name)
	case *ast.IndexAssignStmt:
		g.genExpr(st.Object)
		g.genExpr(st.Index)
		g.genExpr(st.Value)
		g.prog.Emit(SetIndex, st.Position.Line)
	case *ast.ExprStmt:
		g.genExpr(st.Expr)
		g.prog.Emit(Pop, st.Position.Line)
	case *ast.FunctionDecl:
		g.genFunctionDecl(st)
	case *ast.ReturnStmt:
		if st.Value != nil {
			g.genExpr(st.Value)
		} else {
			g.prog.Emit(PushNull, st.Position.Line)
		}
		g.prog.Emit(Return, st.Position.Line)
	case *ast.IfStmt:
		g.genIf(st)
	case *ast.WhileStmt:
		g.genWhile(st)
	case *ast.ForStmt:
		g.genFor(st)
	case *ast.ForInStmt:
		g.genForIn(st)
	case *ast.BreakStmt:
		g.genBreak(st.Position.Line)
	case *ast.ContinueStmt:
		g.genContinue(st.Position.Line)
	case *ast.MatchStmt:
		g.genMatch(st.Value, st.Arms, st.Position.Line)
	case *ast.AssertStmt:
		g.genExpr(st.Condition)
		if st.Message != nil {
			g.genExpr(st.Message)
		} else {
			g.prog.EmitString(PushString, st.Position.Line, "assertion failed")
		}
		g.prog.Emit(Contract, st.Position.Line)
	case *ast.ContractStmt:
		g.genExpr(st.Condition)
		if st.Message != nil {
			g.genExpr(st.Message)
		} else {
			g.prog.EmitString(PushString, st.Position.Line, "contract violated")
		}
		g.prog.Emit(Contract, st.Position.Line)
	case *ast.EnumDecl:
		g.genEnumDecl(st)
	case *ast.ClassDecl:
		g.genClassDecl(st)
	case *ast.SumDecl, *ast.ErrorDecl:
		// type-only declarations; no bytecode is emitted, and the
		// checker does not record them either.
	default:
		g.fail(0, fmt.Sprintf("unsupported statement kind %T", s))
	}
}

func (g *Generator) genLet(st *ast.LetStmt) {
	if len(st.Names) > 1 {
		// Tuple destructuring (spec §4.4): evaluate RHS once, then per
		// target index DUP, PUSH_INT i, GET_INDEX, DECLARE_VAR name;
		// finally POP the tuple itself.
		g.genExpr(st.Value)
		for i, name := range st.Names {
			g.prog.Emit(Dup, st.Position.Line)
			g.prog.EmitInt(PushInt, st.Position.Line, int64(i))
			g.prog.Emit(GetIndex, st.Position.Line)
			g.prog.EmitString(DeclareVar, st.Position.Line, name)
		}
		g.prog.Emit(Pop, st.Position.Line)
		return
	}
	g.genExpr(st.Value)
	g.prog.EmitString(DeclareVar, st.Position.Line, st.Names[0])
}

func (g *Generator) genIf(st *ast.IfStmt) {
	g.genExpr(st.Condition)
	elseJump := g.prog.Emit(JumpIfFalse, st.Position.Line)
	for _, s := range st.Then {
		g.genStmt(s)
	}
	endJump := g.prog.Emit(Jump, st.Position.Line)
	elseTarget := g.prog.Len()
	g.prog.PatchJumpTarget(elseJump, int64(elseTarget-elseJump-1))
	for _, s := range st.Else {
		g.genStmt(s)
	}
	endTarget := g.prog.Len()
	g.prog.PatchJumpTarget(endJump, int64(endTarget-endJump-1))
}

func (g *Generator) genWhile(st *ast.WhileStmt) {
	start := g.prog.Len()
	g.loopStack = append(g.loopStack, loopContext{})
	g.genExpr(st.Condition)
	exitJump := g.prog.Emit(JumpIfFalse, st.Position.Line)
	for _, s := range st.Body {
		g.genStmt(s)
	}
	backJump := g.prog.Emit(Jump, st.Position.Line)
	g.prog.PatchJumpTarget(backJump, int64(start-backJump-1))
	end := g.prog.Len()
	g.prog.PatchJumpTarget(exitJump, int64(end-exitJump-1))
	g.patchContinues(start)
	g.patchBreaks(end)
}

func (g *Generator) genFor(st *ast.ForStmt) {
	if st.Init != nil {
		g.genStmt(st.Init)
	}
	start := g.prog.Len()
	var exitJump int
	hasCond := st.Condition != nil
	if hasCond {
		g.genExpr(st.Condition)
		exitJump = g.prog.Emit(JumpIfFalse, st.Position.Line)
	}
	g.loopStack = append(g.loopStack, loopContext{})
	for _, s := range st.Body {
		g.genStmt(s)
	}
	// continue re-uses the increment block, not the loop start (spec
	// §4.4): any `continue` jump emitted while generating the body above
	// is still unpatched at this point, so patching against this target
	// now is safe regardless of emission order.
	continueTarget := g.prog.Len()
	if st.Update != nil {
		g.genStmt(st.Update)
	}
	backJump := g.prog.Emit(Jump, st.Position.Line)
	g.prog.PatchJumpTarget(backJump, int64(start-backJump-1))
	end := g.prog.Len()
	if hasCond {
		g.prog.PatchJumpTarget(exitJump, int64(end-exitJump-1))
	}
	g.patchContinues(continueTarget)
	g.patchBreaks(end)
}

func (g *Generator) genForIn(st *ast.ForInStmt) {
	g.prog.Emit(BeginScope, st.Position.Line)
	for _, name := range st.Names {
		g.prog.Emit(PushNull, st.Position.Line)
		g.prog.EmitString(DeclareVar, st.Position.Line, name)
	}
	g.genExpr(st.Collection)
	g.prog.Emit(GetIterator, st.Position.Line)
	headerStart := g.prog.Len()
	g.loopStack = append(g.loopStack, loopContext{})
	g.prog.Emit(IteratorHasNext, st.Position.Line)
	exitJump := g.prog.Emit(JumpIfFalse, st.Position.Line)
	g.prog.Emit(IteratorNext, st.Position.Line)
	for _, name := range st.Names {
		g.prog.EmitString(StoreVar, st.Position.Line, name)
	}
	for _, s := range st.Body {
		g.genStmt(s)
	}
	backJump := g.prog.Emit(Jump, st.Position.Line)
	g.prog.PatchJumpTarget(backJump, int64(headerStart-backJump-1))
	end := g.prog.Len()
	g.prog.PatchJumpTarget(exitJump, int64(end-exitJump-1))
	g.patchContinues(headerStart)
	g.patchBreaks(end)
	g.prog.Emit(EndScope, st.Position.Line)
}

func (g *Generator) patchBreaks(target int) {
	if len(g.loopStack) == 0 {
		return
	}
	top := g.loopStack[len(g.loopStack)-1]
	for _, at := range top.breakPatchList {
		g.prog.PatchJumpTarget(at, int64(target-at-1))
	}
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

func (g *Generator) patchContinues(target int) {
	if len(g.loopStack) == 0 {
		return
	}
	top := g.loopStack[len(g.loopStack)-1]
	for _, at := range top.continuePatchList {
		g.prog.PatchJumpTarget(at, int64(target-at-1))
	}
}

func (g *Generator) genBreak(line int) {
	if len(g.loopStack) == 0 {
		g.fail(line, "break outside loop")
		return
	}
	at := g.prog.Emit(Jump, line)
	top := len(g.loopStack) - 1
	g.loopStack[top].breakPatchList = append(g.loopStack[top].breakPatchList, at)
}

func (g *Generator) genContinue(line int) {
	if len(g.loopStack) == 0 {
		g.fail(line, "continue outside loop")
		return
	}
	at := g.prog.Emit(Jump, line)
	top := len(g.loopStack) - 1
	g.loopStack[top].continuePatchList = append(g.loopStack[top].continuePatchList, at)
}

func (g *Generator) genFunctionDecl(st *ast.FunctionDecl) {
	g.prog.EmitString(BeginFunction, st.Position.Line, st.Name)
	for _, p := range st.Params {
		if p.Optional {
			g.prog.EmitString(DefineOptionalParam, st.Position.Line, p.Name)
			if p.Default != nil {
				g.genExpr(p.Default)
				g.prog.Emit(SetDefaultValue, st.Position.Line)
			}
		} else {
			g.prog.EmitString(DefineParam, st.Position.Line, p.Name)
		}
	}
	for _, s := range st.Body {
		g.genStmt(s)
	}
	g.prog.Emit(EndFunction, st.Position.Line)
}

func (g *Generator) genEnumDecl(st *ast.EnumDecl) {
	g.prog.EmitString(BeginEnum, st.Position.Line, st.Name)
	for _, v := range st.Variants {
		g.prog.EmitString(DefineEnumVariant, st.Position.Line, v)
	}
	g.prog.Emit(EndEnum, st.Position.Line)
}

func (g *Generator) genClassDecl(st *ast.ClassDecl) {
	wasInClass, wasClass := g.inClass, g.currentClass
	g.inClass, g.currentClass = true, st.Name
	g.prog.EmitString(BeginClass, st.Position.Line, st.Name)
	if st.Superclass != "" {
		g.prog.EmitString(SetSuperclass, st.Position.Line, st.Superclass)
	}
	for _, f := range st.Fields {
		g.prog.EmitString(DefineField, st.Position.Line, f.Name)
	}
	for _, m := range st.Methods {
		g.genFunctionDecl(m)
	}
	g.prog.Emit(EndClass, st.Position.Line)
	g.inClass, g.currentClass = wasInClass, wasClass
}

// ---- expressions ----

func (g *Generator) genExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Literal:
		g.genLiteral(ex)
	case *ast.Variable:
		if g.symbols != nil && g.symbols.IsDeclaredFunctionName(ex.Name) {
			g.prog.EmitString(PushFunctionRef, ex.Position.Line, ex.Name)
		} else {
			g.prog.EmitString(LoadVar, ex.Position.Line, ex.Name)
		}
	case *ast.Binary:
		g.genExpr(ex.Left)
		g.genExpr(ex.Right)
		g.prog.Emit(binaryOp(ex.Operator), ex.Position.Line)
	case *ast.Unary:
		g.genExpr(ex.Operand)
		if ex.Operator == "-" {
			g.prog.Emit(Negate, ex.Position.Line)
		} else {
			g.prog.Emit(Not, ex.Position.Line)
		}
	case *ast.Logical:
		g.genLogical(ex)
	case *ast.Call:
		g.genCall(ex)
	case *ast.Lambda:
		g.genLambda(ex)
	case *ast.Index:
		g.genExpr(ex.Object)
		g.genExpr(ex.Index)
		g.prog.Emit(GetIndex, ex.Position.Line)
	case *ast.Property:
		g.genExpr(ex.Object)
		g.prog.EmitString(GetProperty, ex.Position.Line, ex.Property)
	case *ast.ListLit:
		for _, el := range ex.Elements {
			g.genExpr(el)
		}
		g.prog.EmitInt(CreateList, ex.Position.Line, int64(len(ex.Elements)))
	case *ast.DictLit:
		for i := range ex.Keys {
			g.genExpr(ex.Keys[i])
			g.genExpr(ex.Values[i])
		}
		g.prog.EmitInt(CreateDict, ex.Position.Line, int64(len(ex.Keys)))
	case *ast.TupleLit:
		for _, el := range ex.Elements {
			g.genExpr(el)
		}
		g.prog.EmitInt(CreateTuple, ex.Position.Line, int64(len(ex.Elements)))
	case *ast.ErrConstruct:
		for _, a := range ex.Args {
			g.genExpr(a)
		}
		g.prog.EmitString(ConstructError, ex.Position.Line, ex.ErrorType)
		g.prog.Instructions[g.prog.Len()-1].IntImm = int64(len(ex.Args))
		g.prog.Instructions[g.prog.Len()-1].HasInt = true
	case *ast.OkConstruct:
		g.genExpr(ex.Value)
		g.prog.Emit(ConstructOk, ex.Position.Line)
	case *ast.Propagate:
		g.genPropagate(ex)
	case *ast.MatchExpr:
		g.genMatch(ex.Value, ex.Arms, ex.Position.Line)
	case *ast.TupleDestructure:
		g.genExpr(ex.Value)
		for i, name := range ex.Names {
			g.prog.Emit(Dup, ex.Position.Line)
			g.prog.EmitInt(PushInt, ex.Position.Line, int64(i))
			g.prog.Emit(GetIndex, ex.Position.Line)
			g.prog.EmitString(DeclareVar, ex.Position.Line, name)
		}
		g.prog.Emit(Pop, ex.Position.Line)
	case *ast.Interpolation:
		for _, p := range ex.Parts {
			g.genExpr(p)
		}
		g.prog.EmitInt(InterpolateString, ex.Position.Line, int64(len(ex.Parts)))
	default:
		g.fail(0, fmt.Sprintf("unsupported expression kind %T", e))
	}
}

func (g *Generator) genLiteral(l *ast.Literal) {
	line := l.Position.Line
	switch v := l.Value.(type) {
	case int64:
		g.prog.EmitInt(PushInt, line, v)
	case uint64:
		g.prog.EmitUint(PushUint64, line, v)
	case float32:
		g.prog.EmitFloat(PushFloat, line, v)
	case float64:
		g.prog.EmitFloat(PushFloat, line, float32(v))
	case bool:
		g.prog.EmitBool(PushBool, line, v)
	case string:
		g.prog.EmitString(PushString, line, v)
	case nil:
		g.prog.Emit(PushNull, line)
	default:
		g.fail(line, fmt.Sprintf("unsupported literal value type %T", v))
	}
}

// genLogical implements short-circuit && / || (spec §4.4): evaluate
// left, duplicate, jump past the right operand on the short-circuiting
// outcome, otherwise pop and evaluate right.
func (g *Generator) genLogical(l *ast.Logical) {
	g.genExpr(l.Left)
	g.prog.Emit(Dup, l.Position.Line)
	var shortCircuitJump int
	if l.Operator == "&&" {
		shortCircuitJump = g.prog.Emit(JumpIfFalse, l.Position.Line)
	} else {
		shortCircuitJump = g.prog.Emit(JumpIfTrue, l.Position.Line)
	}
	g.prog.Emit(Pop, l.Position.Line)
	g.genExpr(l.Right)
	end := g.prog.Len()
	g.prog.PatchJumpTarget(shortCircuitJump, int64(end-shortCircuitJump-1))
}

func (g *Generator) genCall(c *ast.Call) {
	if prop, ok := c.Callee.(*ast.Property); ok {
		g.genExpr(prop.Object)
		g.prog.EmitString(GetProperty, c.Position.Line, prop.Property)
		for _, a := range c.Args {
			g.genExpr(a)
		}
		g.prog.EmitInt(Call, c.Position.Line, int64(len(c.Args)))
		return
	}
	for i, a := range c.Args {
		if i < len(c.ArgNames) && c.ArgNames[i] != "" {
			g.prog.EmitString(PushString, c.Position.Line, c.ArgNames[i])
		}
		g.genExpr(a)
	}
	name := ""
	if v, ok := c.Callee.(*ast.Variable); ok {
		name = v.Name
	} else {
		g.genExpr(c.Callee)
	}
	if name != "" {
		inst := Instruction{Op: Call, Line: c.Position.Line, IntImm: int64(len(c.Args)), HasInt: true, StrImm: name, HasStr: true}
		g.prog.Instructions = append(g.prog.Instructions, inst)
		g.prog.Debug = append(g.prog.Debug, DebugInfo{Line: c.Position.Line})
	} else {
		g.prog.Emit(CallHigherOrder, c.Position.Line)
	}
}

// genLambda emits the lambda body as a top-level function, then a
// PUSH_LAMBDA/CAPTURE_VAR/CREATE_CLOSURE sequence at the use site
// (spec §4.4).
func (g *Generator) genLambda(l *ast.Lambda) {
	name := fmt.Sprintf("__lambda_%d", g.lambdaCount)
	g.lambdaCount++
	captures := freeVariables(l)
	l.Captures = captures

	g.prog.EmitString(BeginFunction, l.Position.Line, name)
	for _, p := range l.Params {
		g.prog.EmitString(DefineParam, l.Position.Line, p.Name)
	}
	for _, s := range l.Body {
		g.genStmt(s)
	}
	g.prog.Emit(EndFunction, l.Position.Line)

	g.prog.EmitString(PushLambda, l.Position.Line, name)
	for _, cap := range captures {
		g.prog.EmitString(CaptureVar, l.Position.Line, cap)
	}
	g.prog.EmitInt(PushInt, l.Position.Line, int64(len(captures)))
	g.prog.EmitString(CreateClosure, l.Position.Line, name)
}

// freeVariables traverses a lambda body collecting Variable references
// not bound by a parameter or a local declaration within the body
// (spec §4.4's generator state note).
func freeVariables(l *ast.Lambda) []string {
	bound := map[string]bool{}
	for _, p := range l.Params {
		bound[p.Name] = true
	}
	seen := map[string]bool{}
	var order []string
	var walkStmt func(ast.Stmt)
	var walkExpr func(ast.Expr)
	walkExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch ex := e.(type) {
		case *ast.Variable:
			if !bound[ex.Name] && !seen[ex.Name] {
				seen[ex.Name] = true
				order = append(order, ex.Name)
			}
		case *ast.Binary:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *ast.Unary:
			walkExpr(ex.Operand)
		case *ast.Logical:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *ast.Call:
			walkExpr(ex.Callee)
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ast.Index:
			walkExpr(ex.Object)
			walkExpr(ex.Index)
		case *ast.Property:
			walkExpr(ex.Object)
		case *ast.ListLit:
			for _, e2 := range ex.Elements {
				walkExpr(e2)
			}
		case *ast.TupleLit:
			for _, e2 := range ex.Elements {
				walkExpr(e2)
			}
		case *ast.DictLit:
			for i := range ex.Keys {
				walkExpr(ex.Keys[i])
				walkExpr(ex.Values[i])
			}
		case *ast.OkConstruct:
			walkExpr(ex.Value)
		case *ast.ErrConstruct:
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ast.Propagate:
			walkExpr(ex.Value)
		case *ast.Interpolation:
			for _, p := range ex.Parts {
				walkExpr(p)
			}
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.LetStmt:
			walkExpr(st.Value)
			for _, n := range st.Names {
				bound[n] = true
			}
		case *ast.ExprStmt:
			walkExpr(st.Expr)
		case *ast.ReturnStmt:
			walkExpr(st.Value)
		case *ast.IfStmt:
			walkExpr(st.Condition)
			for _, s2 := range st.Then {
				walkStmt(s2)
			}
			for _, s2 := range st.Else {
				walkStmt(s2)
			}
		case *ast.WhileStmt:
			walkExpr(st.Condition)
			for _, s2 := range st.Body {
				walkStmt(s2)
			}
		case *ast.ForInStmt:
			for _, n := range st.Names {
				bound[n] = true
			}
			walkExpr(st.Collection)
			for _, s2 := range st.Body {
				walkStmt(s2)
			}
		}
	}
	for _, s := range l.Body {
		walkStmt(s)
	}
	return order
}

// genPropagate implements `e?` lowering (spec §4.4).
func (g *Generator) genPropagate(p *ast.Propagate) {
	g.genExpr(p.Value)
	g.prog.Emit(CheckError, p.Position.Line)
	if p.Else != nil {
		handlerJump := g.prog.Emit(JumpIfTrue, p.Position.Line)
		g.prog.Emit(UnwrapValue, p.Position.Line)
		skipHandler := g.prog.Emit(Jump, p.Position.Line)
		handlerStart := g.prog.Len()
		g.prog.PatchJumpTarget(handlerJump, int64(handlerStart-handlerJump-1))
		if p.ElseVar != "" {
			g.prog.EmitString(DeclareVar, p.Position.Line, p.ElseVar)
		} else {
			g.prog.Emit(Pop, p.Position.Line)
		}
		for _, s := range p.Else {
			g.genStmt(s)
		}
		end := g.prog.Len()
		g.prog.PatchJumpTarget(skipHandler, int64(end-skipHandler-1))
		return
	}
	pastPropagate := g.prog.Emit(JumpIfFalse, p.Position.Line)
	g.prog.Emit(PropagateError, p.Position.Line)
	target := g.prog.Len()
	g.prog.PatchJumpTarget(pastPropagate, int64(target-pastPropagate-1))
	g.prog.Emit(UnwrapValue, p.Position.Line)
}

// genMatch implements match generation (spec §4.4): evaluate the
// scrutinee into a fresh temp (STORE_TEMP), then per arm reload
// (LOAD_TEMP), evaluate the pattern, MATCH_PATTERN, JUMP_IF_FALSE to
// the next arm; an optional guard is evaluated with bindings in scope.
func (g *Generator) genMatch(scrutinee ast.Expr, arms []ast.Arm, line int) {
	g.genExpr(scrutinee)
	temp := g.newTemp()
	g.prog.EmitInt(StoreTemp, line, int64(temp))

	var endJumps []int
	for _, arm := range arms {
		g.prog.EmitInt(LoadTemp, line, int64(temp))
		switch arm.Kind {
		case ast.ArmValue:
			g.genExpr(arm.Pattern)
		case ast.ArmError:
			g.prog.EmitString(PushString, line, "err")
			g.prog.EmitString(PushString, line, arm.ErrorType)
		case ast.ArmErrorGeneric:
			g.prog.EmitString(PushString, line, "err")
			g.prog.EmitString(PushString, line, "_")
		case ast.ArmWildcard:
			g.prog.EmitString(PushString, line, "_")
		}
		g.prog.Emit(MatchPattern, line)
		nextArm := g.prog.Emit(JumpIfFalse, line)

		if arm.BindName != "" {
			g.prog.EmitInt(LoadTemp, line, int64(temp))
			g.prog.EmitString(DeclareVar, line, arm.BindName)
		}
		if arm.Guard != nil {
			g.genExpr(arm.Guard)
			guardNext := g.prog.Emit(JumpIfFalse, line)
			for _, s := range arm.Body {
				g.genStmt(s)
			}
			endJumps = append(endJumps, g.prog.Emit(Jump, line))
			guardTarget := g.prog.Len()
			g.prog.PatchJumpTarget(guardNext, int64(guardTarget-guardNext-1))
			g.prog.PatchJumpTarget(nextArm, int64(guardTarget-nextArm-1))
			continue
		}
		for _, s := range arm.Body {
			g.genStmt(s)
		}
		endJumps = append(endJumps, g.prog.Emit(Jump, line))
		armEnd := g.prog.Len()
		g.prog.PatchJumpTarget(nextArm, int64(armEnd-nextArm-1))
	}
	end := g.prog.Len()
	for _, at := range endJumps {
		g.prog.PatchJumpTarget(at, int64(end-at-1))
	}
	g.prog.EmitInt(ClearTemp, line, int64(temp))
}

func binaryOp(operator string) OpCode {
	switch operator {
	case "+":
		return Add
	case "-":
		return Subtract
	case "*":
		return Multiply
	case "/":
		return Divide
	case "%":
		return Modulo
	case "**":
		return Power
	case "==":
		return Equal
	case "!=":
		return NotEqual
	case "<":
		return Less
	case "<=":
		return LessEqual
	case ">":
		return Greater
	case ">=":
		return GreaterEqual
	default:
		return Add
	}
}
