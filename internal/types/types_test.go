package types

import "testing"

func TestNumericWideningMatrix(t *testing.T) {
	cases := []struct {
		from, to *Type
		want     bool
	}{
		{Int8Type, Int16Type, true},
		{Int16Type, Int8Type, false},
		{UInt8Type, UInt64Type, true},
		{UInt8Type, Int16Type, true},
		{UInt8Type, Int8Type, false},
		{UInt32Type, Int32Type, false},
		{UInt32Type, Int64Type, true},
		{Float64Type, Float32Type, false},
		{Int64Type, Float32Type, false},
		{Int64Type, Float64Type, true},
		{Float32Type, Float64Type, true},
		{IntType, AnyType, true},
	}
	for _, c := range cases {
		got := IsCompatible(c.from, c.to)
		if got != c.want {
			t.Errorf("IsCompatible(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestUnionCanonicalisation(t *testing.T) {
	u := CreateUnion([]*Type{IntType, StringType})
	nested := CreateUnion([]*Type{u, BoolType})
	if nested.Tag != Union || len(nested.UnionVariants) != 3 {
		t.Fatalf("expected flattened 3-variant union, got %s", nested)
	}

	dup := CreateUnion([]*Type{IntType, IntType, StringType})
	if len(dup.UnionVariants) != 2 {
		t.Fatalf("expected deduped 2-variant union, got %s", dup)
	}

	single := CreateUnion([]*Type{IntType})
	if single.Tag != Int {
		t.Fatalf("single-variant union must collapse, got %s", single)
	}

	// idempotence: create_union_type(flatten(xs)) == create_union_type(xs)
	again := CreateUnion([]*Type{IntType, StringType, BoolType})
	if !Equal(again, nested) {
		t.Fatalf("union construction is not idempotent: %s vs %s", again, nested)
	}
}

func TestErrorUnionDistinctFromGeneric(t *testing.T) {
	specific := CreateErrorUnion(IntType, []string{"DivisionByZero"}, false)
	generic := CreateErrorUnion(IntType, nil, true)
	if Equal(specific, generic) {
		t.Fatal("ErrorUnion with generic flag must differ from explicit error set, even with same success type")
	}
}

func TestCreateValueRoundTrip(t *testing.T) {
	for _, ty := range []*Type{IntType, BoolType, StringType, NewList(IntType), Float64Type} {
		v := CreateValue(ty)
		if !CheckType(v, ty) {
			t.Errorf("CreateValue(%s) did not round-trip through CheckType", ty)
		}
	}
}

func TestRegionReleaseIsIdempotent(t *testing.T) {
	r := NewRegion("test")
	r.MakeRef(CreateValue(IntType))
	r.Release()
	r.Release() // must not panic
	if r.Len() != 0 {
		t.Fatalf("released region should report 0 length, got %d", r.Len())
	}
}
