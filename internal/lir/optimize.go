package lir

// OptimizationFlags selects which passes Optimize runs, matching the
// "small and opt-in per function" posture of spec §4.5.
type OptimizationFlags uint8

const (
	Peephole OptimizationFlags = 1 << iota
	ConstantFold
	DeadCodeEliminate
)

// Optimize runs the enabled passes over every block of fn's CFG, in
// the order peephole -> constant-fold -> dead-code-elimination (each
// pass can expose opportunities for the next).
func Optimize(fn *Function, flags OptimizationFlags) {
	if flags&Peephole != 0 {
		for _, b := range fn.CFG.Blocks {
			peephole(b)
		}
	}
	if flags&ConstantFold != 0 {
		for _, b := range fn.CFG.Blocks {
			constantFold(b)
		}
	}
	if flags&DeadCodeEliminate != 0 {
		deadCodeEliminate(fn)
	}
}

// peephole removes `Mov r, r` and folds `Add r, r0, 0` / `Mul r, r0, 1`
// into a plain Mov (spec §4.5). The second source register counts as 0
// or 1 when an earlier LoadConst in the same block set it to that int64.
func peephole(b *BasicBlock) {
	known := map[Reg]interface{}{}
	out := b.Instructions[:0]
	for _, inst := range b.Instructions {
		switch inst.Op {
		case Mov:
			if inst.Dst == inst.A {
				continue
			}
		case Add:
			if known[inst.B] == int64(0) {
				inst.Op = Mov
			}
		case Mul:
			if known[inst.B] == int64(1) {
				inst.Op = Mov
			}
		}
		if inst.Op == LoadConst {
			known[inst.Dst] = inst.Const
		} else {
			delete(known, inst.Dst)
		}
		out = append(out, inst)
	}
	b.Instructions = out
}

// constantFold replaces an arithmetic/comparison instruction whose
// both source registers are known-constant with a LoadConst, per spec
// §4.5. "Known constant" here means the defining instruction in the
// same block was itself a LoadConst — a block-local, not whole-function,
// constant-propagation analysis (sufficient for the straight-line runs
// the generator emits within one basic block).
func constantFold(b *BasicBlock) {
	known := map[Reg]interface{}{}
	out := make([]Inst, 0, len(b.Instructions))
	for _, inst := range b.Instructions {
		if inst.Op == LoadConst {
			known[inst.Dst] = inst.Const
			out = append(out, inst)
			continue
		}
		av, aok := known[inst.A]
		bv, bok := known[inst.B]
		if aok && bok && isFoldable(inst.Op) {
			if folded, ok := foldConst(inst.Op, av, bv); ok {
				out = append(out, Inst{Op: LoadConst, ResultType: inst.ResultType, Dst: inst.Dst, Const: folded, Loc: inst.Loc})
				known[inst.Dst] = folded
				continue
			}
		}
		delete(known, inst.Dst)
		out = append(out, inst)
	}
	b.Instructions = out
}

func isFoldable(op Op) bool {
	switch op {
	case Add, Sub, Mul, Div, Mod, CmpEQ, CmpNEQ, CmpLT, CmpLE, CmpGT, CmpGE:
		return true
	default:
		return false
	}
}

func foldConst(op Op, a, b interface{}) (interface{}, bool) {
	ai, aok := a.(int64)
	bi, bok := b.(int64)
	if !aok || !bok {
		return nil, false
	}
	switch op {
	case Add:
		return ai + bi, true
	case Sub:
		return ai - bi, true
	case Mul:
		return ai * bi, true
	case Div:
		if bi == 0 {
			return nil, false
		}
		return ai / bi, true
	case Mod:
		if bi == 0 {
			return nil, false
		}
		return ai % bi, true
	case CmpEQ:
		return ai == bi, true
	case CmpNEQ:
		return ai != bi, true
	case CmpLT:
		return ai < bi, true
	case CmpLE:
		return ai <= bi, true
	case CmpGT:
		return ai > bi, true
	case CmpGE:
		return ai >= bi, true
	default:
		return nil, false
	}
}

// deadCodeEliminate marks every register read anywhere in fn, then
// deletes instructions whose destination is never read and whose
// opcode has no side effect (spec §4.5). Only the operand fields an
// opcode reads count: LoadConst, Jump and Label read none, and the
// single-operand opcodes read only A.
func deadCodeEliminate(fn *Function) {
	read := map[Reg]bool{}
	for _, b := range fn.CFG.Blocks {
		for _, inst := range b.Instructions {
			switch inst.Op {
			case LoadConst, Jump, Label:
			case Mov, Neg, JumpIfFalse, JumpIf, Return, Load, Store, Cast, ToString,
				PrintInt, PrintUint, PrintFloat, PrintBool, PrintString,
				ConstructOk, IsError, Unwrap:
				read[inst.A] = true
			default:
				read[inst.A] = true
				read[inst.B] = true
			}
		}
	}
	for _, b := range fn.CFG.Blocks {
		out := b.Instructions[:0]
		for _, inst := range b.Instructions {
			if !inst.Op.hasSideEffect() && !read[inst.Dst] {
				continue
			}
			out = append(out, inst)
		}
		b.Instructions = out
	}
}
