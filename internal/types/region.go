package types

// Region is a bump-style allocation arena: every Value vended by
// MakeRef is tracked and released all at once when the region is torn
// down at scope exit, per spec §3.2/§5 ("the type system owns a
// per-compilation region; only the owning compilation thread may
// allocate in it"). This stands in for the teacher's unrelated
// `internal/memory` forensics package (see DESIGN.md) — the shape kept
// is "allocate from a region, free in bulk", not its contents.
type Region struct {
	owner  string
	values []*Value
	closed bool
}

// NewRegion opens a region owned by the given compilation/thread id.
func NewRegion(owner string) *Region {
	return &Region{owner: owner}
}

// MakeRef allocates v into the region, returning v for chaining.
func (r *Region) MakeRef(v *Value) *Value {
	if r.closed {
		panic("types: MakeRef on a released region")
	}
	r.values = append(r.values, v)
	return v
}

// Release tears the region down: every value allocated through it
// becomes invalid. Idempotent — matches the "released on every exit
// path" requirement of spec §5.
func (r *Region) Release() {
	if r.closed {
		return
	}
	r.values = nil
	r.closed = true
}

// Len reports how many values are currently tracked by the region.
func (r *Region) Len() int { return len(r.values) }
