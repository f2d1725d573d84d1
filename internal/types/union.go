package types

// CreateUnion flattens nested Union variants, removes structural
// duplicates, and collapses a single-variant result to that variant —
// the canonicalisation invariant of spec §3.1/§8.
func CreateUnion(variants []*Type) *Type {
	flat := flattenUnion(variants)
	deduped := dedupeTypes(flat)
	if len(deduped) == 1 {
		return deduped[0]
	}
	return &Type{Tag: Union, UnionVariants: deduped}
}

func flattenUnion(variants []*Type) []*Type {
	var out []*Type
	for _, v := range variants {
		if v == nil {
			continue
		}
		if v.Tag == Union {
			out = append(out, flattenUnion(v.UnionVariants)...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

func dedupeTypes(in []*Type) []*Type {
	var out []*Type
	for _, t := range in {
		dup := false
		for _, seen := range out {
			if Equal(seen, t) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// CreateErrorUnion constructs an ErrorUnion(success, errors). When
// isGeneric is set the error set is opaque (accepts any error); this is
// distinct from an ErrorUnion over an explicit, possibly-identical, set
// of error names even when both carry the same success type (spec §3.1).
func CreateErrorUnion(success *Type, errors []string, isGeneric bool) *Type {
	return &Type{
		Tag:       ErrorUnion,
		Success:   success,
		Errors:    append([]string(nil), errors...),
		IsGeneric: isGeneric,
	}
}

// BuiltinErrorTypes are registered at startup, matching
// TypeSystem::registerBuiltinErrors in the original source.
var BuiltinErrorTypes = []string{
	"DivisionByZero",
	"IndexOutOfBounds",
	"NullReference",
	"TypeConversion",
	"IOError",
	"ParseError",
	"NetworkError",
}

// IsKnownErrorType reports whether name is a built-in or a registered
// user-defined error type.
func IsKnownErrorType(name string, userErrors map[string]bool) bool {
	for _, b := range BuiltinErrorTypes {
		if b == name {
			return true
		}
	}
	return userErrors[name]
}

// ErrorSetSubset reports whether every name in sub is present in super,
// or super accepts anything generically. Used by the type checker to
// validate propagation across function boundaries (spec §4.3).
func ErrorSetSubset(sub []string, superGeneric bool, super []string) bool {
	if superGeneric {
		return true
	}
	set := make(map[string]bool, len(super))
	for _, s := range super {
		set[s] = true
	}
	for _, s := range sub {
		if !set[s] {
			return false
		}
	}
	return true
}
