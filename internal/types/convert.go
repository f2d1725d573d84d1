package types

// IsCompatible reports whether a value of type `from` may convert to
// `to`, per spec: identity; target is Any; numeric widening; element/
// key/value convertibility for containers; existential conversion for
// unions. Ported rule-for-rule from the original TypeSystem::canConvert.
func IsCompatible(from, to *Type) bool {
	if from == nil || to == nil {
		return from == to
	}
	if Equal(from, to) || to.Tag == Any {
		return true
	}
	if from.Tag == Bool && to.Tag == Bool {
		return true
	}
	if isNumeric(from.Tag) && isNumeric(to.Tag) {
		return isSafeNumericConversion(from.Tag, to.Tag)
	}
	if from.Tag == List && to.Tag == List {
		return IsCompatible(from.Elem, to.Elem)
	}
	if from.Tag == Dict && to.Tag == Dict {
		return IsCompatible(from.Key, to.Key) && IsCompatible(from.Value, to.Value)
	}
	if from.Tag == Union && to.Tag == Union {
		for _, ft := range from.UnionVariants {
			ok := false
			for _, tt := range to.UnionVariants {
				if IsCompatible(ft, tt) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		return true
	}
	if from.Tag == Union {
		for _, v := range from.UnionVariants {
			if IsCompatible(v, to) {
				return true
			}
		}
		return false
	}
	if to.Tag == Union {
		for _, v := range to.UnionVariants {
			if IsCompatible(from, v) {
				return true
			}
		}
		return false
	}
	return false
}

// isSafeNumericConversion is the exhaustive widening matrix of §4.1/§8:
// signed widens to signed of >= width; unsigned widens to unsigned of
// >= width and to signed of strictly greater width; any integer widens
// to a float of sufficient range; Float32 -> Float64 only (never the
// reverse, never Int64 -> Float32).
func isSafeNumericConversion(from, to Tag) bool {
	switch from {
	case Int8:
		switch to {
		case Int8, Int16, Int32, Int64, Int, Float32, Float64:
			return true
		}
	case Int16:
		switch to {
		case Int16, Int32, Int64, Int, Float32, Float64:
			return true
		}
	case Int32:
		switch to {
		case Int32, Int64, Int, Float32, Float64:
			return true
		}
	case Int64, Int:
		switch to {
		case Int64, Int, Float64:
			return true
		}
	case UInt8:
		switch to {
		case UInt8, UInt16, UInt32, UInt64, UInt, Int16, Int32, Int64, Int, Float32, Float64:
			return true
		}
	case UInt16:
		switch to {
		case UInt16, UInt32, UInt64, UInt, Int32, Int64, Int, Float32, Float64:
			return true
		}
	case UInt32:
		switch to {
		case UInt32, UInt64, UInt, Int64, Int, Float64:
			return true
		}
	case UInt64, UInt:
		switch to {
		case UInt64, UInt, Float64:
			return true
		}
	case Float32:
		switch to {
		case Float32, Float64:
			return true
		}
	case Float64:
		return to == Float64
	}
	return false
}

// numericRank orders numeric tags for GetCommonType's promotion; larger
// rank wins when both operands are numeric and neither widens to the
// other directly; on equal rank the left operand's type is kept (e.g.
// Int32 and UInt32: neither widens to the other and both rank 2).
var numericRank = map[Tag]int{
	Int8: 0, UInt8: 0,
	Int16: 1, UInt16: 1,
	Int32: 2, UInt32: 2,
	Int64: 3, UInt64: 3, Int: 3, UInt: 3,
	Float32: 4,
	Float64: 5,
}

// GetCommonType implements numeric promotion by rank, with Any absorbing
// and mismatched non-numeric types forming a union (flattened via
// CreateUnion).
func GetCommonType(a, b *Type) *Type {
	if Equal(a, b) {
		return a
	}
	if a.Tag == Any || b.Tag == Any {
		return AnyType
	}
	if isNumeric(a.Tag) && isNumeric(b.Tag) {
		if isSafeNumericConversion(a.Tag, b.Tag) {
			return b
		}
		if isSafeNumericConversion(b.Tag, a.Tag) {
			return a
		}
		if numericRank[a.Tag] >= numericRank[b.Tag] {
			return a
		}
		return b
	}
	return CreateUnion([]*Type{a, b})
}
