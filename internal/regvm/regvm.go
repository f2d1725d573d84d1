// Package regvm is the reference register-VM interpreter of spec §4.5:
// it executes a lir.Function by stepping a program counter over its
// instruction vector, supporting the minimum subset the spec names
// (moves, constants, arithmetic, comparisons, jumps, return, print,
// concat, cast). It exists to validate LIR correctness independently
// of the JIT — the two backends are run side by side in tests and must
// agree.
//
// Grounded on the teacher's vmregister.VM execution-loop shape (fetch,
// dispatch on opcode, mutate a register file) adapted from stack slots
// to the LIR's flat register file, and on
// original_source/src/lir/lir.hh's documented instruction semantics.
package regvm

import (
	"fmt"
	"strings"

	"github.com/netesy/limitly/internal/lir"
)

// VM executes one lir.Function at a time. Registers hold interface{}
// so the same VM runs I64/F64/Bool/Ptr values without a tagged-union
// wrapper — acceptable for a correctness oracle, not a performance path.
type VM struct {
	regs    []interface{}
	printed []string
}

func New() *VM { return &VM{} }

// Printed returns everything written by Print* instructions during the
// last Run, for tests to assert against.
func (vm *VM) Printed() []string { return vm.printed }

// Run executes fn's CFG starting at its entry block, returning the
// value of the register named by the final Return instruction.
func (vm *VM) Run(fn *lir.Function) (interface{}, error) {
	if err := fn.CFG.Validate(); err != nil {
		return nil, err
	}
	vm.regs = make([]interface{}, fn.RegCount+1)
	vm.printed = nil

	var entry *lir.BasicBlock
	for _, b := range fn.CFG.Blocks {
		if b.IsEntry {
			entry = b
			break
		}
	}
	if entry == nil && len(fn.CFG.Blocks) > 0 {
		entry = fn.CFG.Blocks[0]
	}
	if entry == nil {
		return nil, fmt.Errorf("regvm: function %s has no blocks", fn.Name)
	}

	block := entry
	for {
		next, result, done, err := vm.runBlock(fn, block)
		if err != nil {
			return nil, err
		}
		if done {
			return result, nil
		}
		block = next
	}
}

func (vm *VM) reg(r lir.Reg) interface{} {
	if int(r) < len(vm.regs) {
		return vm.regs[r]
	}
	return nil
}

func (vm *VM) setReg(r lir.Reg, v interface{}) {
	for int(r) >= len(vm.regs) {
		vm.regs = append(vm.regs, nil)
	}
	vm.regs[r] = v
}

// runBlock executes every instruction in block. It returns the next
// block to run (for Jump/JumpIf/JumpIfFalse), or done=true with the
// function's result (for Return).
func (vm *VM) runBlock(fn *lir.Function, block *lir.BasicBlock) (*lir.BasicBlock, interface{}, bool, error) {
	for _, inst := range block.Instructions {
		switch inst.Op {
		case lir.Mov:
			vm.setReg(inst.Dst, vm.reg(inst.A))
		case lir.LoadConst:
			vm.setReg(inst.Dst, inst.Const)

		case lir.Add, lir.Sub, lir.Mul, lir.Div, lir.Mod:
			res, err := arith(inst.Op, vm.reg(inst.A), vm.reg(inst.B))
			if err != nil {
				return nil, nil, false, err
			}
			vm.setReg(inst.Dst, res)
		case lir.Neg:
			switch a := vm.reg(inst.A).(type) {
			case int64:
				vm.setReg(inst.Dst, -a)
			case float64:
				vm.setReg(inst.Dst, -a)
			default:
				vm.setReg(inst.Dst, a)
			}

		case lir.CmpEQ, lir.CmpNEQ, lir.CmpLT, lir.CmpLE, lir.CmpGT, lir.CmpGE:
			vm.setReg(inst.Dst, compare(inst.Op, vm.reg(inst.A), vm.reg(inst.B)))

		case lir.Jump:
			return fn.CFG.GetBlock(int(inst.Imm)), nil, false, nil
		case lir.JumpIfFalse:
			if !truthy(vm.reg(inst.A)) {
				return fn.CFG.GetBlock(int(inst.Imm)), nil, false, nil
			}
		case lir.JumpIf:
			if truthy(vm.reg(inst.A)) {
				return fn.CFG.GetBlock(int(inst.Imm)), nil, false, nil
			}

		case lir.Return:
			return nil, vm.reg(inst.A), true, nil

		case lir.PrintInt, lir.PrintUint, lir.PrintFloat, lir.PrintBool, lir.PrintString:
			vm.printed = append(vm.printed, fmt.Sprintf("%v", vm.reg(inst.A)))

		case lir.Concat, lir.StrConcat:
			vm.setReg(inst.Dst, fmt.Sprintf("%v%v", vm.reg(inst.A), vm.reg(inst.B)))
		case lir.StrFormat:
			vm.setReg(inst.Dst, "")
		case lir.ToString:
			vm.setReg(inst.Dst, fmt.Sprintf("%v", vm.reg(inst.A)))
		case lir.Cast:
			vm.setReg(inst.Dst, castValue(vm.reg(inst.A), inst.ResultType))

		case lir.Store:
			// values already live in registers; nothing further to do
			// for this reference interpreter.
		case lir.Load:
			vm.setReg(inst.Dst, vm.reg(inst.A))

		case lir.IsError:
			_, isErr := vm.reg(inst.A).(errValue)
			vm.setReg(inst.Dst, isErr)
		case lir.ConstructOk:
			vm.setReg(inst.Dst, vm.reg(inst.A))
		case lir.ConstructError:
			vm.setReg(inst.Dst, errValue{kind: inst.Comment})
		case lir.Unwrap:
			vm.setReg(inst.Dst, vm.reg(inst.A))
		case lir.UnwrapOr:
			if _, isErr := vm.reg(inst.A).(errValue); isErr {
				vm.setReg(inst.Dst, vm.reg(inst.B))
			} else {
				vm.setReg(inst.Dst, vm.reg(inst.A))
			}

		case lir.Label, lir.Call:
			// Call has no callee resolution in this minimal oracle
			// (spec §4.5: "the minimum subset") and writes no
			// register; the JIT emits no code for Call either.

		default:
			// instructions outside the documented minimum subset are
			// silently no-ops in the reference interpreter.
		}
	}
	if block.IsExit {
		return nil, nil, true, nil
	}
	if len(block.Successors) > 0 {
		return fn.CFG.GetBlock(block.Successors[0]), nil, false, nil
	}
	return nil, nil, true, nil
}

// errValue is the oracle's minimal stand-in for an error-union in its
// error state; internal/types.ErrorValue is the real runtime shape.
type errValue struct{ kind string }

func truthy(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}

func arith(op lir.Op, a, b interface{}) (interface{}, error) {
	af, aIsFloat := toFloat(a)
	bf, bIsFloat := toFloat(b)
	if aIsFloat || bIsFloat {
		switch op {
		case lir.Add:
			return af + bf, nil
		case lir.Sub:
			return af - bf, nil
		case lir.Mul:
			return af * bf, nil
		case lir.Div:
			if bf == 0 {
				return nil, fmt.Errorf("regvm: division by zero")
			}
			return af / bf, nil
		}
	}
	ai, _ := a.(int64)
	bi, _ := b.(int64)
	switch op {
	case lir.Add:
		return ai + bi, nil
	case lir.Sub:
		return ai - bi, nil
	case lir.Mul:
		return ai * bi, nil
	case lir.Div:
		if bi == 0 {
			return nil, fmt.Errorf("regvm: division by zero")
		}
		return ai / bi, nil
	case lir.Mod:
		if bi == 0 {
			return nil, fmt.Errorf("regvm: division by zero")
		}
		return ai % bi, nil
	}
	return nil, fmt.Errorf("regvm: unsupported arithmetic op %v", op)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func compare(op lir.Op, a, b interface{}) bool {
	switch op {
	case lir.CmpEQ:
		return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
	case lir.CmpNEQ:
		return fmt.Sprintf("%v", a) != fmt.Sprintf("%v", b)
	}
	ai, aok := a.(int64)
	bi, bok := b.(int64)
	if aok && bok {
		switch op {
		case lir.CmpLT:
			return ai < bi
		case lir.CmpLE:
			return ai <= bi
		case lir.CmpGT:
			return ai > bi
		case lir.CmpGE:
			return ai >= bi
		}
	}
	return false
}

func castValue(v interface{}, to lir.ABIType) interface{} {
	switch to {
	case lir.I32, lir.I64:
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int64:
			return n
		}
	case lir.F64:
		switch n := v.(type) {
		case int64:
			return float64(n)
		case float64:
			return n
		}
	case lir.Ptr:
		return fmt.Sprintf("%v", v)
	}
	return v
}

// Disassemble renders fn's blocks for debugging/test output.
func Disassemble(fn *lir.Function) string {
	var sb strings.Builder
	for _, b := range fn.CFG.Blocks {
		fmt.Fprintf(&sb, "block %d (%s):\n", b.ID, b.Label)
		for _, inst := range b.Instructions {
			fmt.Fprintf(&sb, "  %+v\n", inst)
		}
	}
	return sb.String()
}
