package symbols

import (
	"testing"

	"github.com/netesy/limitly/internal/types"
)

func TestLookupWalksInnerToOuter(t *testing.T) {
	tbl := NewTable()
	tbl.DeclareVariable("x", types.IntType, Location{Line: 1})

	tbl.PushScope()
	tbl.DeclareVariable("x", types.StringType, Location{Line: 2})
	v, ok := tbl.FindVariable("x")
	if !ok || v.Type.Tag != types.String {
		t.Fatalf("expected inner shadow of x to be string, got %v ok=%v", v, ok)
	}
	tbl.PopScope()

	v, ok = tbl.FindVariable("x")
	if !ok || v.Type.Tag != types.Int {
		t.Fatalf("expected outer x to be int after popping inner scope, got %v ok=%v", v, ok)
	}
}

func TestSignatureArgCounting(t *testing.T) {
	sig := &Signature{
		Name:          "f",
		ParamTypes:    []*types.Type{types.IntType, types.IntType, types.StringType},
		ParamOptional: []bool{false, true, true},
	}
	if sig.MinRequiredArgs() != 1 {
		t.Fatalf("expected MinRequiredArgs 1, got %d", sig.MinRequiredArgs())
	}
	for n, want := range map[int]bool{0: false, 1: true, 2: true, 3: true, 4: false} {
		if got := sig.IsValidArgCount(n); got != want {
			t.Errorf("IsValidArgCount(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestPopTopScopePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic popping the top-level scope")
		}
	}()
	tbl := NewTable()
	tbl.PopScope()
}
