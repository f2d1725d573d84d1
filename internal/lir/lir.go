// Package lir is the Linear IR: typed, three-address, register-based
// instructions organized into a per-function control-flow graph (spec
// §3.2, §4.5). It sits between the stack-based bytecode generator and
// the two backends that consume it, the register-VM reference
// interpreter (internal/regvm) and the JIT (internal/jit).
//
// Grounded on original_source/src/lir/lir.hh (LIR_Op, LIR_Inst,
// LIR_BasicBlock, LIR_CFG, LIR_FunctionContext) and, for the register
// allocation shape, the teacher's stack-VM RegisterAllocator/LoopInfo
// (see DESIGN.md: absorbed here rather than kept as its own package —
// that allocator assigns registers to a stack-VM's locals, while here
// allocation is the LIR builder's own monotonic register id counter
// feeding three-address instructions instead).
package lir

import "fmt"

// Reg identifies a virtual register, unique within one LIR function.
type Reg uint32

// ABIType is the closed set of types instructions operate on after
// language types are lowered at LIR build time (spec §3.2).
type ABIType uint8

const (
	I32 ABIType = iota
	I64
	F64
	Bool
	Ptr
	Void
)

func (t ABIType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case Ptr:
		return "ptr"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// Op is the LIR instruction opcode set (spec §4.5).
type Op uint8

const (
	Mov Op = iota
	LoadConst

	Add
	Sub
	Mul
	Div
	Mod
	Neg

	And
	Or
	Xor

	CmpEQ
	CmpNEQ
	CmpLT
	CmpLE
	CmpGT
	CmpGE

	Jump
	JumpIfFalse
	JumpIf
	Label
	Call
	Return

	PrintInt
	PrintUint
	PrintFloat
	PrintBool
	PrintString

	Load
	Store

	Cast
	ToString

	Concat
	StrConcat
	StrFormat

	ConstructError
	ConstructOk
	IsError
	Unwrap
	UnwrapOr

	AtomicLoad
	AtomicStore
	AtomicFetchAdd

	Await
	AsyncCall

	TaskContextAlloc
	TaskContextInit
	TaskGetState
	TaskSetState

	ChannelAlloc
	ChannelPush
	ChannelPop
	ChannelHasData

	SchedulerInit
	SchedulerRun
	SchedulerTick

	WorkQueueAlloc
	WorkQueuePush
	WorkQueuePop

	ListCreate
	ListAppend
	ListIndex

	NewObject
	GetField
	SetField
)

// hasSideEffect reports whether op must never be deleted by dead-code
// elimination even if its destination register is unread (spec §4.5:
// "excludes Store, Return, Print*, Call").
func (op Op) hasSideEffect() bool {
	switch op {
	case Store, Return, PrintInt, PrintUint, PrintFloat, PrintBool, PrintString, Call,
		ConstructError, ConstructOk, Await, AsyncCall,
		ChannelPush, ChannelPop, WorkQueuePush, WorkQueuePop,
		SchedulerRun, SchedulerTick, SetField, AtomicStore, AtomicFetchAdd,
		Jump, JumpIfFalse, JumpIf, Label:
		return true
	default:
		return false
	}
}

// SourceLoc is a debug location carried on every instruction.
type SourceLoc struct {
	File   string
	Line   uint32
	Column uint32
}

func (l SourceLoc) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Inst is one LIR instruction: up to two source registers, an
// immediate, and an optional constant payload, per LIR_Inst.
type Inst struct {
	Op         Op
	ResultType ABIType
	Dst, A, B  Reg
	Imm        int64
	Const      interface{} // non-nil only for LoadConst
	Comment    string
	Loc        SourceLoc
}

// BasicBlock is a straight-line instruction run with CFG edges.
type BasicBlock struct {
	ID           int
	Label        string
	Instructions []Inst
	Successors   []int
	Predecessors []int
	IsEntry      bool
	IsExit       bool
	Terminated   bool
}

// HasTerminator reports whether the block's last instruction is a
// jump, conditional jump, or return (spec §4.5/§8 invariant).
func (b *BasicBlock) HasTerminator() bool {
	if len(b.Instructions) == 0 {
		return false
	}
	switch b.Instructions[len(b.Instructions)-1].Op {
	case Jump, JumpIfFalse, JumpIf, Return:
		return true
	default:
		return false
	}
}

// CFG is a function's control-flow graph: blocks keyed by id, built
// incrementally as the builder walks the source (bytecode or AST).
type CFG struct {
	Blocks []*BasicBlock
	byID   map[int]*BasicBlock
	nextID int
}

func NewCFG() *CFG {
	return &CFG{byID: map[int]*BasicBlock{}}
}

// CreateBlock allocates a new block with an eagerly-chosen id, for
// forward jump targets that are reserved before being filled in (spec
// §4.5 "create an empty block eagerly and patch the edge on arrival").
func (c *CFG) CreateBlock(label string) *BasicBlock {
	b := &BasicBlock{ID: c.nextID, Label: label}
	c.nextID++
	c.Blocks = append(c.Blocks, b)
	c.byID[b.ID] = b
	return b
}

func (c *CFG) GetBlock(id int) *BasicBlock { return c.byID[id] }

// AddEdge records a successor/predecessor relationship between blocks.
func (c *CFG) AddEdge(fromID, toID int) {
	from, to := c.byID[fromID], c.byID[toID]
	if from == nil || to == nil {
		return
	}
	from.Successors = append(from.Successors, toID)
	to.Predecessors = append(to.Predecessors, fromID)
}

// Validate checks the two structural invariants of spec §3.3/§8:
// every non-terminal block ends with a terminator, and every jump
// target references an existing block id.
func (c *CFG) Validate() error {
	for _, b := range c.Blocks {
		if !b.IsExit && !b.HasTerminator() {
			return fmt.Errorf("lir: block %d (%s) is not terminated", b.ID, b.Label)
		}
		for _, succ := range b.Successors {
			if _, ok := c.byID[succ]; !ok {
				return fmt.Errorf("lir: block %d references missing successor %d", b.ID, succ)
			}
		}
	}
	return nil
}

// FunctionContext tracks a function's register allocation state while
// the builder is constructing it: the next fresh register id, a
// variable-name-to-register map, and a per-register ABI type map.
// Monotonic allocation only — no SSA, no physical-register constraint
// at build time (spec §4.5).
type FunctionContext struct {
	nextReg   Reg
	varToReg  map[string]Reg
	regTypes  map[Reg]ABIType
}

func NewFunctionContext() *FunctionContext {
	return &FunctionContext{
		varToReg: map[string]Reg{},
		regTypes: map[Reg]ABIType{},
	}
}

// Alloc returns a fresh register of the given ABI type.
func (fc *FunctionContext) Alloc(t ABIType) Reg {
	r := fc.nextReg
	fc.nextReg++
	fc.regTypes[r] = t
	return r
}

// BindVar associates a source-level variable name with a register.
func (fc *FunctionContext) BindVar(name string, r Reg) { fc.varToReg[name] = r }

// LookupVar returns the register bound to name, if any.
func (fc *FunctionContext) LookupVar(name string) (Reg, bool) {
	r, ok := fc.varToReg[name]
	return r, ok
}

// TypeOf returns the ABI type of a previously allocated register.
func (fc *FunctionContext) TypeOf(r Reg) ABIType { return fc.regTypes[r] }

// RegisterCount reports how many registers have been allocated.
func (fc *FunctionContext) RegisterCount() int { return int(fc.nextReg) }

// Function is a complete LIR function: its name, arity, total register
// count, and CFG.
type Function struct {
	Name       string
	ParamCount int
	RegCount   int
	CFG        *CFG
}
