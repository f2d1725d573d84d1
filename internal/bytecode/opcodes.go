package bytecode

// OpCode is the stack-VM instruction set emitted by the generator
// (spec §4.4). Groupings mirror the spec's own grouping comment; names
// are kept close to the spec's illustrative names so the generator and
// the register-VM oracle read the same vocabulary.
type OpCode byte

const (
	// Stack/value
	PushInt OpCode = iota
	PushUint64
	PushFloat
	PushString
	PushBool
	PushNull
	Pop
	Dup

	// Variable/scope
	DeclareVar
	LoadVar
	StoreVar
	BeginScope
	EndScope
	StoreTemp
	LoadTemp
	ClearTemp

	// Arithmetic / comparison / logic
	Add
	Subtract
	Multiply
	Divide
	Modulo
	Power
	Negate
	Not
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual

	// Control
	Jump
	JumpIfFalse
	JumpIfTrue
	Return
	Call
	CallHigherOrder
	Halt

	// Containers
	CreateList
	CreateTuple
	CreateDict
	GetIndex
	SetIndex
	GetProperty
	SetProperty
	CreateRange
	SetRangeStep
	GetIterator
	IteratorHasNext
	IteratorNext

	// Classes
	BeginClass
	EndClass
	SetSuperclass
	DefineField
	LoadThis
	LoadSuper

	// Functions
	BeginFunction
	EndFunction
	DefineParam
	DefineOptionalParam
	SetDefaultValue
	PushFunction
	PushFunctionRef
	PushLambda
	CaptureVar
	CreateClosure

	// Enums / sums
	BeginEnum
	EndEnum
	DefineEnumVariant
	DefineEnumVariantWithType
	MatchPattern

	// Strings
	Concat
	InterpolateString

	// Errors
	ConstructError
	ConstructOk
	CheckError
	UnwrapValue
	PropagateError

	// Concurrency boundary
	BeginParallel
	EndParallel
	BeginConcurrent
	EndConcurrent
	BeginTask
	EndTask
	BeginWorker
	EndWorker
	StoreIterable
	Await
	DefineAtomic

	// Miscellaneous
	Print
	Contract
)

var opNames = map[OpCode]string{
	PushInt: "PUSH_INT", PushUint64: "PUSH_UINT64", PushFloat: "PUSH_FLOAT",
	PushString: "PUSH_STRING", PushBool: "PUSH_BOOL", PushNull: "PUSH_NULL",
	Pop: "POP", Dup: "DUP",
	DeclareVar: "DECLARE_VAR", LoadVar: "LOAD_VAR", StoreVar: "STORE_VAR",
	BeginScope: "BEGIN_SCOPE", EndScope: "END_SCOPE",
	StoreTemp: "STORE_TEMP", LoadTemp: "LOAD_TEMP", ClearTemp: "CLEAR_TEMP",
	Add: "ADD", Subtract: "SUBTRACT", Multiply: "MULTIPLY", Divide: "DIVIDE",
	Modulo: "MODULO", Power: "POWER", Negate: "NEGATE", Not: "NOT",
	Equal: "EQUAL", NotEqual: "NOT_EQUAL", Less: "LESS", LessEqual: "LESS_EQUAL",
	Greater: "GREATER", GreaterEqual: "GREATER_EQUAL",
	Jump: "JUMP", JumpIfFalse: "JUMP_IF_FALSE", JumpIfTrue: "JUMP_IF_TRUE",
	Return: "RETURN", Call: "CALL", CallHigherOrder: "CALL_HIGHER_ORDER", Halt: "HALT",
	CreateList: "CREATE_LIST", CreateTuple: "CREATE_TUPLE", CreateDict: "CREATE_DICT",
	GetIndex: "GET_INDEX", SetIndex: "SET_INDEX",
	GetProperty: "GET_PROPERTY", SetProperty: "SET_PROPERTY",
	CreateRange: "CREATE_RANGE", SetRangeStep: "SET_RANGE_STEP",
	GetIterator: "GET_ITERATOR", IteratorHasNext: "ITERATOR_HAS_NEXT", IteratorNext: "ITERATOR_NEXT",
	BeginClass: "BEGIN_CLASS", EndClass: "END_CLASS", SetSuperclass: "SET_SUPERCLASS",
	DefineField: "DEFINE_FIELD", LoadThis: "LOAD_THIS", LoadSuper: "LOAD_SUPER",
	BeginFunction: "BEGIN_FUNCTION", EndFunction: "END_FUNCTION",
	DefineParam: "DEFINE_PARAM", DefineOptionalParam: "DEFINE_OPTIONAL_PARAM",
	SetDefaultValue: "SET_DEFAULT_VALUE", PushFunction: "PUSH_FUNCTION",
	PushFunctionRef: "PUSH_FUNCTION_REF", PushLambda: "PUSH_LAMBDA",
	CaptureVar: "CAPTURE_VAR", CreateClosure: "CREATE_CLOSURE",
	BeginEnum: "BEGIN_ENUM", EndEnum: "END_ENUM",
	DefineEnumVariant: "DEFINE_ENUM_VARIANT", DefineEnumVariantWithType: "DEFINE_ENUM_VARIANT_WITH_TYPE",
	MatchPattern: "MATCH_PATTERN",
	Concat:       "CONCAT", InterpolateString: "INTERPOLATE_STRING",
	ConstructError: "CONSTRUCT_ERROR", ConstructOk: "CONSTRUCT_OK",
	CheckError: "CHECK_ERROR", UnwrapValue: "UNWRAP_VALUE", PropagateError: "PROPAGATE_ERROR",
	BeginParallel: "BEGIN_PARALLEL", EndParallel: "END_PARALLEL",
	BeginConcurrent: "BEGIN_CONCURRENT", EndConcurrent: "END_CONCURRENT",
	BeginTask: "BEGIN_TASK", EndTask: "END_TASK",
	BeginWorker: "BEGIN_WORKER", EndWorker: "END_WORKER",
	StoreIterable: "STORE_ITERABLE", Await: "AWAIT", DefineAtomic: "DEFINE_ATOMIC",
	Print: "PRINT", Contract: "CONTRACT",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN_OP"
}
