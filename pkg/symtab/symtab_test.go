package symtab

import (
	"testing"

	"github.com/srclang/srcc/pkg/types"
)

func TestDefineAndLookup(t *testing.T) {
	tbl := New()
	if err := tbl.Define("x", "@x", types.TInt, Var, false, 0); err != nil {
		t.Fatalf("Define: %v", err)
	}
	sym := tbl.Lookup("x")
	if sym == nil {
		t.Fatal("Lookup returned nil for a defined name")
	}
	if sym.IRName != "@x" {
		t.Errorf("IRName = %q, want %q", sym.IRName, "@x")
	}
}

func TestDefineRejectsRedefinitionInSameScope(t *testing.T) {
	tbl := New()
	if err := tbl.Define("x", "@x", types.TInt, Var, false, 0); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	err := tbl.Define("x", "@x0", types.TInt, Var, false, 0)
	if _, ok := err.(*ErrRedefinition); !ok {
		t.Fatalf("second Define err = %v, want *ErrRedefinition", err)
	}
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	tbl := New()
	tbl.Define("x", "@x", types.TInt, Var, false, 0)
	tbl.EnterScope()
	tbl.Define("x", "%x1", types.TInt, Var, false, 0)

	sym := tbl.Lookup("x")
	if sym.IRName != "%x1" {
		t.Fatalf("Lookup found %q, want the inner binding %q", sym.IRName, "%x1")
	}

	tbl.ExitScope()
	sym = tbl.Lookup("x")
	if sym.IRName != "@x" {
		t.Fatalf("Lookup after ExitScope found %q, want the outer binding %q", sym.IRName, "@x")
	}
}

func TestExitScopeNeverPopsGlobalFrame(t *testing.T) {
	tbl := New()
	tbl.ExitScope()
	if !tbl.IsGlobalScope() {
		t.Fatal("ExitScope on the global frame changed the scope depth")
	}
	if tbl.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", tbl.Depth())
	}
}

func TestDefineGlobalFromNestedScope(t *testing.T) {
	tbl := New()
	tbl.EnterScope()
	tbl.EnterScope()
	if err := tbl.DefineGlobal("g", "@g", types.TInt, Var, false, 0); err != nil {
		t.Fatalf("DefineGlobal: %v", err)
	}
	tbl.ExitScope()
	tbl.ExitScope()
	if tbl.Lookup("g") == nil {
		t.Fatal("global binding not visible after returning to the global scope")
	}
}

func TestLookupMissingReturnsNil(t *testing.T) {
	tbl := New()
	if tbl.Lookup("nope") != nil {
		t.Fatal("Lookup of an undefined name should return nil")
	}
}
