// Package types owns the canonical type descriptors for the Limitly core:
// numeric-conversion policy, union/error-union algebra, and zero-value
// construction. Every other core package (symbols, typecheck, bytecode,
// lir, jit) consumes this package rather than rolling its own notion of
// type identity.
package types

import "fmt"

// Tag identifies the shape of a Type. Composite tags (List, Dict, Tuple,
// Function, Enum, Sum, Union, ErrorUnion, UserDefined) carry their payload
// in the Type struct's matching fields; all others are singletons.
type Tag uint8

const (
	Nil Tag = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Int
	UInt
	Float32
	Float64
	String
	List
	Dict
	Tuple
	Function
	Enum
	Sum
	Union
	ErrorUnion
	UserDefined
	Any
	Range
)

func (t Tag) String() string {
	switch t {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	case List:
		return "list"
	case Dict:
		return "dict"
	case Tuple:
		return "tuple"
	case Function:
		return "fn"
	case Enum:
		return "enum"
	case Sum:
		return "sum"
	case Union:
		return "union"
	case ErrorUnion:
		return "error-union"
	case UserDefined:
		return "user-defined"
	case Any:
		return "any"
	case Range:
		return "range"
	default:
		return "unknown"
	}
}

// Type is a tagged type descriptor. Only the fields matching Tag are
// meaningful; the zero value of every other field is ignored.
type Type struct {
	Tag Tag

	// List
	Elem *Type

	// Dict
	Key, Value *Type

	// Tuple
	Elems []*Type

	// Function
	Params []*Type
	Return *Type

	// Enum: ordered variant names
	Variants []string

	// Sum: ordered variant types, tagged by index
	SumVariants []*Type

	// Union: flattened, de-duplicated set of variants (order preserved
	// from first occurrence; see CreateUnion for canonicalisation rules)
	UnionVariants []*Type

	// ErrorUnion
	Success   *Type
	Errors    []string // declared error type names, empty if IsGeneric
	IsGeneric bool

	// UserDefined
	Name   string
	Fields map[string][]FieldDecl // per-variant named fields
}

// FieldDecl is one field of a UserDefined type variant.
type FieldDecl struct {
	Name string
	Type *Type
}

var (
	NilType     = &Type{Tag: Nil}
	BoolType    = &Type{Tag: Bool}
	Int8Type    = &Type{Tag: Int8}
	Int16Type   = &Type{Tag: Int16}
	Int32Type   = &Type{Tag: Int32}
	Int64Type   = &Type{Tag: Int64}
	UInt8Type   = &Type{Tag: UInt8}
	UInt16Type  = &Type{Tag: UInt16}
	UInt32Type  = &Type{Tag: UInt32}
	UInt64Type  = &Type{Tag: UInt64}
	IntType     = &Type{Tag: Int}
	UIntType    = &Type{Tag: UInt}
	Float32Type = &Type{Tag: Float32}
	Float64Type = &Type{Tag: Float64}
	StringType  = &Type{Tag: String}
	AnyType     = &Type{Tag: Any}
	RangeType   = &Type{Tag: Range}
)

// GetType returns the singleton for a named primitive; unknown names
// yield Nil, matching TypeSystem::getType in the original source.
func GetType(name string) *Type {
	switch name {
	case "int":
		return IntType
	case "int8":
		return Int8Type
	case "int16":
		return Int16Type
	case "int32":
		return Int32Type
	case "int64":
		return Int64Type
	case "uint":
		return UIntType
	case "uint8":
		return UInt8Type
	case "uint16":
		return UInt16Type
	case "uint32":
		return UInt32Type
	case "uint64":
		return UInt64Type
	case "float", "float64":
		return Float64Type
	case "float32":
		return Float32Type
	case "string":
		return StringType
	case "bool":
		return BoolType
	case "any":
		return AnyType
	case "range":
		return RangeType
	default:
		return NilType
	}
}

func isNumeric(tag Tag) bool {
	switch tag {
	case Int8, Int16, Int32, Int64, Int, UInt8, UInt16, UInt32, UInt64, UInt, Float32, Float64:
		return true
	default:
		return false
	}
}

// NewList, NewDict, NewTuple, NewFunction are convenience constructors;
// they do not canonicalise (that is Union/ErrorUnion's job).
func NewList(elem *Type) *Type { return &Type{Tag: List, Elem: elem} }
func NewDict(key, value *Type) *Type {
	return &Type{Tag: Dict, Key: key, Value: value}
}
func NewTuple(elems ...*Type) *Type { return &Type{Tag: Tuple, Elems: elems} }
func NewFunction(params []*Type, ret *Type) *Type {
	return &Type{Tag: Function, Params: params, Return: ret}
}
func NewEnum(variants ...string) *Type { return &Type{Tag: Enum, Variants: variants} }
func NewSum(variants ...*Type) *Type   { return &Type{Tag: Sum, SumVariants: variants} }
func NewUserDefined(name string, fields map[string][]FieldDecl) *Type {
	return &Type{Tag: UserDefined, Name: name, Fields: fields}
}

// Equal reports structural equality. For UserDefined types, equality is
// by name (matching areTypesEqual in the original TypeSystem).
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case UserDefined:
		return a.Name == b.Name
	case List:
		return Equal(a.Elem, b.Elem)
	case Dict:
		return Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case Tuple:
		return equalSlice(a.Elems, b.Elems)
	case Function:
		return Equal(a.Return, b.Return) && equalSlice(a.Params, b.Params)
	case Sum:
		return equalSlice(a.SumVariants, b.SumVariants)
	case Union:
		return equalSlice(a.UnionVariants, b.UnionVariants)
	case ErrorUnion:
		return Equal(a.Success, b.Success) && a.IsGeneric == b.IsGeneric && equalStrSet(a.Errors, b.Errors)
	case Enum:
		return equalStrSlice(a.Variants, b.Variants)
	default:
		return true
	}
}

func equalSlice(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalStrSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
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

func (t *Type) String() string {
	if t == nil {
		return "<nil-type>"
	}
	switch t.Tag {
	case List:
		return fmt.Sprintf("[%s]", t.Elem)
	case Dict:
		return fmt.Sprintf("{%s: %s}", t.Key, t.Value)
	case Tuple:
		return fmt.Sprintf("tuple%v", t.Elems)
	case Function:
		return fmt.Sprintf("fn(%v) -> %s", t.Params, t.Return)
	case UserDefined:
		return t.Name
	case Union:
		return fmt.Sprintf("union%v", t.UnionVariants)
	case ErrorUnion:
		if t.IsGeneric {
			return fmt.Sprintf("%s?error", t.Success)
		}
		return fmt.Sprintf("%s?%v", t.Success, t.Errors)
	default:
		return t.Tag.String()
	}
}
