package types

// Value is (type, data): the closed payload set described in spec §3.2.
// Data holds one of: int64/uint64 (by declared width), float64 (by
// declared width), bool, string, []*Value (list/tuple), map entries for
// Dict, *Closure, *SumValue, *UserValue, *ErrorValue, or nil.
type Value struct {
	Type *Type
	Data any

	// RefCount models the reference-counted, region-owned contract of
	// spec §3.2: values are not individually freed, only their owning
	// Region releases them in bulk. RefCount tracks additional *weak*
	// holders beyond the single owner so tooling can assert the
	// at-most-one-owner invariant in tests.
	RefCount int
}

// Closure pairs a function reference with its captured environment.
type Closure struct {
	FuncName string
	Captures map[string]*Value
}

// SumValue is a tagged index into a Sum type plus its inner value.
type SumValue struct {
	VariantIndex int
	Inner        *Value
}

// UserValue is a UserDefined value: which variant, and its named fields.
type UserValue struct {
	Variant string
	Fields  map[string]*Value
}

// ErrorValue is the error-variant payload of an ErrorUnion: the error
// type name plus its constructor arguments (spec §4.3, `err(E, args…)`).
type ErrorValue struct {
	ErrorType string
	Args      []*Value
}

// CreateValue materialises a zero value of t: composites get empty
// containers, Sum/Enum pick the first variant, everything else gets its
// language zero. Mirrors TypeSystem::createValue.
func CreateValue(t *Type) *Value {
	switch t.Tag {
	case Nil:
		return &Value{Type: t, Data: nil}
	case Bool:
		return &Value{Type: t, Data: false}
	case Int8, Int16, Int32, Int64, Int, UInt8, UInt16, UInt32, UInt64, UInt:
		return &Value{Type: t, Data: int64(0)}
	case Float32, Float64:
		return &Value{Type: t, Data: float64(0)}
	case String:
		return &Value{Type: t, Data: ""}
	case List:
		return &Value{Type: t, Data: []*Value{}}
	case Dict:
		return &Value{Type: t, Data: map[string]*Value{}}
	case Tuple:
		elems := make([]*Value, len(t.Elems))
		for i, et := range t.Elems {
			elems[i] = CreateValue(et)
		}
		return &Value{Type: t, Data: elems}
	case Enum:
		if len(t.Variants) == 0 {
			return &Value{Type: t, Data: ""}
		}
		return &Value{Type: t, Data: t.Variants[0]}
	case Sum:
		var inner *Value
		if len(t.SumVariants) > 0 {
			inner = CreateValue(t.SumVariants[0])
		}
		return &Value{Type: t, Data: &SumValue{VariantIndex: 0, Inner: inner}}
	case UserDefined:
		fields := map[string]*Value{}
		return &Value{Type: t, Data: &UserValue{Fields: fields}}
	case Function:
		return &Value{Type: t, Data: nil}
	default:
		return &Value{Type: t, Data: nil}
	}
}

// CheckType reports whether v's declared type equals t; CreateValue
// followed by CheckType is always true (spec §8 round-trip property).
func CheckType(v *Value, t *Type) bool {
	return Equal(v.Type, t)
}
