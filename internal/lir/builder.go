package lir

import "github.com/netesy/limitly/internal/bytecode"

// Builder lowers a bytecode.Program into LIR functions. The spec
// allows building from either the AST or the bytecode; this builder
// takes the bytecode path since the generator has already resolved
// scoping, jump targets, and error-handling lowering into a flat
// instruction vector — the builder's job is purely to retarget stack
// operations onto registers and flatten control flow into a CFG.
type Builder struct {
	ctx *FunctionContext
	cfg *CFG

	// stack simulates the bytecode VM's operand stack at LIR-build
	// time: each stack slot maps to the register currently holding its
	// value, so consecutive stack ops become register moves instead of
	// re-pushing.
	stack []Reg

	current *BasicBlock
	// blockAt maps a bytecode instruction index to the LIR block that
	// must begin there, for jump targets discovered by a pre-scan.
	blockAt map[int]*BasicBlock
}

// BuildFunction lowers the bytecode instructions between [start, end)
// (a BEGIN_FUNCTION..END_FUNCTION span, or the whole program for the
// top-level unit) into one LIR Function.
func BuildFunction(name string, prog *bytecode.Program, start, end int) *Function {
	b := &Builder{
		ctx:     NewFunctionContext(),
		cfg:     NewCFG(),
		blockAt: map[int]*BasicBlock{},
	}
	b.preScanJumpTargets(prog, start, end)

	entry := b.cfg.CreateBlock("entry")
	entry.IsEntry = true
	b.current = entry
	b.blockAt[start] = entry

	for ip := start; ip < end; ip++ {
		if blk, ok := b.blockAt[ip]; ok && blk != b.current {
			if !b.current.HasTerminator() {
				b.cfg.AddEdge(b.current.ID, blk.ID)
			}
			b.current = blk
		}
		b.lowerOne(prog, ip, start)
	}
	if !b.current.HasTerminator() {
		b.current.Instructions = append(b.current.Instructions, Inst{Op: Return, ResultType: Void})
	}
	b.current.IsExit = true

	return &Function{Name: name, RegCount: b.ctx.RegisterCount(), CFG: b.cfg}
}

// preScanJumpTargets finds every JUMP/JUMP_IF_* target in range and
// eagerly creates its block, per spec §4.5's CFG construction rule.
func (b *Builder) preScanJumpTargets(prog *bytecode.Program, start, end int) {
	for ip := start; ip < end; ip++ {
		inst := prog.Instructions[ip]
		switch inst.Op {
		case bytecode.Jump, bytecode.JumpIfFalse, bytecode.JumpIfTrue:
			target := ip + int(inst.IntImm) + 1
			if target >= start && target < end {
				if _, ok := b.blockAt[target]; !ok {
					b.blockAt[target] = b.cfg.CreateBlock("")
				}
			}
		}
	}
}

// getOrCreateBlock returns the block reserved for bytecode index ip,
// creating one on demand for targets outside the pre-scanned range
// (e.g. a jump to just past the function's last instruction).
func (b *Builder) getOrCreateBlock(ip int) *BasicBlock {
	if blk, ok := b.blockAt[ip]; ok {
		return blk
	}
	blk := b.cfg.CreateBlock("")
	b.blockAt[ip] = blk
	return blk
}

func (b *Builder) push(r Reg)  { b.stack = append(b.stack, r) }
func (b *Builder) pop() Reg {
	if len(b.stack) == 0 {
		return b.ctx.Alloc(I64)
	}
	r := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return r
}

func (b *Builder) emit(i Inst) {
	b.current.Instructions = append(b.current.Instructions, i)
}

func (b *Builder) lowerOne(prog *bytecode.Program, ip, funcStart int) {
	inst := prog.Instructions[ip]
	loc := SourceLoc{Line: uint32(inst.Line)}

	switch inst.Op {
	case bytecode.PushInt:
		dst := b.ctx.Alloc(I64)
		b.emit(Inst{Op: LoadConst, ResultType: I64, Dst: dst, Const: inst.IntImm, Loc: loc})
		b.push(dst)
	case bytecode.PushFloat:
		dst := b.ctx.Alloc(F64)
		b.emit(Inst{Op: LoadConst, ResultType: F64, Dst: dst, Const: inst.FloatImm, Loc: loc})
		b.push(dst)
	case bytecode.PushBool:
		dst := b.ctx.Alloc(Bool)
		b.emit(Inst{Op: LoadConst, ResultType: Bool, Dst: dst, Const: inst.BoolImm, Loc: loc})
		b.push(dst)
	case bytecode.PushString:
		dst := b.ctx.Alloc(Ptr)
		b.emit(Inst{Op: LoadConst, ResultType: Ptr, Dst: dst, Const: inst.StrImm, Loc: loc})
		b.push(dst)
	case bytecode.PushNull:
		dst := b.ctx.Alloc(Ptr)
		b.emit(Inst{Op: LoadConst, ResultType: Ptr, Dst: dst, Const: nil, Loc: loc})
		b.push(dst)
	case bytecode.Pop:
		b.pop()
	case bytecode.Dup:
		top := b.pop()
		b.push(top)
		b.push(top)

	case bytecode.Add, bytecode.Subtract, bytecode.Multiply, bytecode.Divide, bytecode.Modulo:
		rhs, lhs := b.pop(), b.pop()
		// spec §4.6: if either operand is F64, the result is F64.
		resultType := I64
		if b.ctx.TypeOf(lhs) == F64 || b.ctx.TypeOf(rhs) == F64 {
			resultType = F64
		}
		dst := b.ctx.Alloc(resultType)
		b.emit(Inst{Op: arithOp(inst.Op), ResultType: resultType, Dst: dst, A: lhs, B: rhs, Loc: loc})
		b.push(dst)
	case bytecode.Negate:
		src := b.pop()
		resultType := b.ctx.TypeOf(src)
		if resultType != F64 {
			resultType = I64
		}
		dst := b.ctx.Alloc(resultType)
		b.emit(Inst{Op: Neg, ResultType: resultType, Dst: dst, A: src, Loc: loc})
		b.push(dst)
	case bytecode.Equal, bytecode.NotEqual, bytecode.Less, bytecode.LessEqual, bytecode.Greater, bytecode.GreaterEqual:
		rhs, lhs := b.pop(), b.pop()
		dst := b.ctx.Alloc(Bool)
		b.emit(Inst{Op: cmpOp(inst.Op), ResultType: Bool, Dst: dst, A: lhs, B: rhs, Loc: loc})
		b.push(dst)

	case bytecode.LoadVar:
		r, ok := b.ctx.LookupVar(inst.StrImm)
		if !ok {
			r = b.ctx.Alloc(I64)
			b.ctx.BindVar(inst.StrImm, r)
		}
		b.push(r)
	case bytecode.StoreVar, bytecode.DeclareVar:
		v := b.pop()
		b.ctx.BindVar(inst.StrImm, v)
		b.emit(Inst{Op: Store, ResultType: Void, A: v, Comment: inst.StrImm, Loc: loc})

	case bytecode.Jump:
		target := ip + int(inst.IntImm) + 1
		targetBlk := b.getOrCreateBlock(target)
		b.emit(Inst{Op: Jump, ResultType: Void, Imm: int64(targetBlk.ID), Loc: loc})
		b.cfg.AddEdge(b.current.ID, targetBlk.ID)
	case bytecode.JumpIfFalse, bytecode.JumpIfTrue:
		cond := b.pop()
		target := ip + int(inst.IntImm) + 1
		targetBlk := b.getOrCreateBlock(target)
		op := JumpIfFalse
		if inst.Op == bytecode.JumpIfTrue {
			op = JumpIf
		}
		b.emit(Inst{Op: op, ResultType: Void, A: cond, Imm: int64(targetBlk.ID), Loc: loc})
		b.cfg.AddEdge(b.current.ID, targetBlk.ID)
		cont := b.getOrCreateBlock(ip + 1)
		b.cfg.AddEdge(b.current.ID, cont.ID)

	case bytecode.Return:
		v := b.pop()
		b.emit(Inst{Op: Return, ResultType: I64, A: v, Loc: loc})

	case bytecode.Print:
		v := b.pop()
		b.emit(Inst{Op: PrintInt, ResultType: Void, A: v, Loc: loc})

	case bytecode.Concat:
		rhs, lhs := b.pop(), b.pop()
		dst := b.ctx.Alloc(Ptr)
		b.emit(Inst{Op: StrConcat, ResultType: Ptr, Dst: dst, A: lhs, B: rhs, Loc: loc})
		b.push(dst)
	case bytecode.InterpolateString:
		n := int(inst.IntImm)
		for i := 0; i < n; i++ {
			b.pop()
		}
		dst := b.ctx.Alloc(Ptr)
		b.emit(Inst{Op: StrFormat, ResultType: Ptr, Dst: dst, Loc: loc})
		b.push(dst)

	case bytecode.ConstructError:
		n := int(inst.IntImm)
		for i := 0; i < n; i++ {
			b.pop()
		}
		dst := b.ctx.Alloc(Ptr)
		b.emit(Inst{Op: ConstructError, ResultType: Ptr, Dst: dst, Comment: inst.StrImm, Loc: loc})
		b.push(dst)
	case bytecode.ConstructOk:
		v := b.pop()
		dst := b.ctx.Alloc(Ptr)
		b.emit(Inst{Op: ConstructOk, ResultType: Ptr, Dst: dst, A: v, Loc: loc})
		b.push(dst)
	case bytecode.CheckError:
		v := b.pop()
		dst := b.ctx.Alloc(Bool)
		b.emit(Inst{Op: IsError, ResultType: Bool, Dst: dst, A: v, Loc: loc})
		b.push(v)
		b.push(dst)
	case bytecode.UnwrapValue:
		// the conditional jump between CheckError and UnwrapValue has
		// already consumed CheckError's flag; the value is on top.
		v := b.pop()
		dst := b.ctx.Alloc(I64)
		b.emit(Inst{Op: Unwrap, ResultType: I64, Dst: dst, A: v, Loc: loc})
		b.push(dst)
	case bytecode.PropagateError:
		v := b.pop()
		b.emit(Inst{Op: Return, ResultType: Ptr, A: v, Loc: loc})
		// the instruction after PROPAGATE_ERROR is reached only by the
		// jump taken when there is no error, with the value still on
		// the stack.
		b.push(v)

	case bytecode.Call:
		argc := int(inst.IntImm)
		for i := 0; i < argc; i++ {
			b.pop()
		}
		dst := b.ctx.Alloc(I64)
		b.emit(Inst{Op: Call, ResultType: I64, Dst: dst, Comment: inst.StrImm, Loc: loc})
		b.push(dst)

	case bytecode.Halt, bytecode.BeginFunction, bytecode.EndFunction, bytecode.BeginScope, bytecode.EndScope:
		// structural markers; no LIR instruction

	default:
		b.emit(Inst{Op: Mov, ResultType: Void, Comment: inst.Op.String(), Loc: loc})
	}
}

func arithOp(op bytecode.OpCode) Op {
	switch op {
	case bytecode.Add:
		return Add
	case bytecode.Subtract:
		return Sub
	case bytecode.Multiply:
		return Mul
	case bytecode.Divide:
		return Div
	case bytecode.Modulo:
		return Mod
	default:
		return Add
	}
}

func cmpOp(op bytecode.OpCode) Op {
	switch op {
	case bytecode.Equal:
		return CmpEQ
	case bytecode.NotEqual:
		return CmpNEQ
	case bytecode.Less:
		return CmpLT
	case bytecode.LessEqual:
		return CmpLE
	case bytecode.Greater:
		return CmpGT
	case bytecode.GreaterEqual:
		return CmpGE
	default:
		return CmpEQ
	}
}
