// Package symbols implements the lexically scoped symbol table shared by
// the type checker and, indirectly, the bytecode generator (spec §3.3,
// §4.2). One stack of scopes holds, per scope, a variable map and a
// function map; lookup walks inner-to-outer.
package symbols

import "github.com/netesy/limitly/internal/types"

// Location is a source position, carried alongside a variable's type so
// diagnostics can point back at a declaration.
type Location struct {
	File   string
	Line   int
	Column int
}

// VariableEntry is what a variable scope maps a name to.
type VariableEntry struct {
	Type *types.Type
	Loc  Location
}

// Signature records everything the checker needs to validate a call:
// parameter types, which trailing parameters are optional/defaulted,
// return type, fallibility, and the declared error set.
type Signature struct {
	Name           string
	ParamTypes     []*types.Type
	ParamOptional  []bool // true for trailing optional/defaulted params
	ReturnType     *types.Type
	CanFail        bool
	DeclaredErrors []string
	ErrorsGeneric  bool
}

// MinRequiredArgs returns the index of the first optional/default-valued
// parameter, i.e. the fewest arguments a caller may supply.
func (s *Signature) MinRequiredArgs() int {
	for i, opt := range s.ParamOptional {
		if opt {
			return i
		}
	}
	return len(s.ParamTypes)
}

// IsValidArgCount reports whether n arguments satisfy this signature:
// at least MinRequiredArgs and at most len(ParamTypes).
func (s *Signature) IsValidArgCount(n int) bool {
	return n >= s.MinRequiredArgs() && n <= len(s.ParamTypes)
}

// scope is one stack frame: a variable map and a function map. Pushed on
// function entry and block entry, popped on exit.
type scope struct {
	variables map[string]VariableEntry
	functions map[string]*Signature
}

func newScope() *scope {
	return &scope{
		variables: make(map[string]VariableEntry),
		functions: make(map[string]*Signature),
	}
}

// Table is the symbol table: a stack of scopes.
type Table struct {
	scopes []*scope
}

// NewTable returns a table with a single, empty top-level scope.
func NewTable() *Table {
	t := &Table{}
	t.PushScope()
	return t
}

// PushScope opens a new innermost scope (function entry or block entry).
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, newScope())
}

// PopScope closes the innermost scope. Popping the last scope is a
// programming error in the caller and panics, since the table must
// always have at least the top-level scope available.
func (t *Table) PopScope() {
	if len(t.scopes) <= 1 {
		panic("symbols: cannot pop the top-level scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth reports how many scopes are currently pushed — used by callers
// to assert BEGIN_SCOPE/END_SCOPE balance (spec §8).
func (t *Table) Depth() int { return len(t.scopes) }

// DeclareVariable binds name in the innermost scope.
func (t *Table) DeclareVariable(name string, ty *types.Type, loc Location) {
	top := t.scopes[len(t.scopes)-1]
	top.variables[name] = VariableEntry{Type: ty, Loc: loc}
}

// DeclareFunction binds a function signature in the innermost scope
// (top-level scope, in practice — spec §4.3's first pass collects all
// signatures into the top scope before checking bodies).
func (t *Table) DeclareFunction(sig *Signature) {
	top := t.scopes[len(t.scopes)-1]
	top.functions[sig.Name] = sig
}

// FindVariable walks inner-to-outer for name.
func (t *Table) FindVariable(name string) (VariableEntry, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i].variables[name]; ok {
			return v, true
		}
	}
	return VariableEntry{}, false
}

// FindFunction walks inner-to-outer for a function signature.
func (t *Table) FindFunction(name string) (*Signature, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if f, ok := t.scopes[i].functions[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// IsDeclaredFunctionName reports whether name refers to a known function
// anywhere on the stack — used by the bytecode generator to distinguish
// function-name references from variable loads (spec §4.4 state: "a set
// of declared function names").
func (t *Table) IsDeclaredFunctionName(name string) bool {
	_, ok := t.FindFunction(name)
	return ok
}
