// Package symtab implements the lexically-scoped symbol table shared by
// the IR builder and the AST lowering passes.
package symtab

import "github.com/srclang/srcc/pkg/types"

// Kind distinguishes a variable binding from a function binding.
type Kind int

const (
	Var Kind = iota
	Func
)

// Symbol is one name binding. IRName is empty for compile-time constants.
type Symbol struct {
	Name       string
	IRName     string
	Type       *types.Type
	Kind       Kind
	IsConst    bool
	ConstValue int32
}

type frame map[string]*Symbol

// Table is a non-empty stack of scopes. Frame 0 is the global scope.
type Table struct {
	frames []frame
}

// New returns a table with a single (global) frame.
func New() *Table {
	return &Table{frames: []frame{make(frame)}}
}

// EnterScope pushes a new, empty frame.
func (t *Table) EnterScope() {
	t.frames = append(t.frames, make(frame))
}

// ExitScope pops the top frame. A no-op when only the global frame
// remains: frame 0 is never popped.
func (t *Table) ExitScope() {
	if len(t.frames) > 1 {
		t.frames = t.frames[:len(t.frames)-1]
	}
}

// IsGlobalScope reports whether the table currently has only the global
// frame active.
func (t *Table) IsGlobalScope() bool { return len(t.frames) == 1 }

// Depth returns the number of active frames.
func (t *Table) Depth() int { return len(t.frames) }

// ErrRedefinition is returned by Define/DefineGlobal when name already
// exists in the target frame.
type ErrRedefinition struct{ Name string }

func (e *ErrRedefinition) Error() string { return "redefinition of '" + e.Name + "'" }

// Define inserts a new binding into the top frame.
func (t *Table) Define(name, irName string, typ *types.Type, kind Kind, isConst bool, constValue int32) error {
	top := t.frames[len(t.frames)-1]
	if _, exists := top[name]; exists {
		return &ErrRedefinition{Name: name}
	}
	top[name] = &Symbol{Name: name, IRName: irName, Type: typ, Kind: kind, IsConst: isConst, ConstValue: constValue}
	return nil
}

// DefineGlobal inserts a new binding into frame 0 regardless of the
// table's current depth.
func (t *Table) DefineGlobal(name, irName string, typ *types.Type, kind Kind, isConst bool, constValue int32) error {
	global := t.frames[0]
	if _, exists := global[name]; exists {
		return &ErrRedefinition{Name: name}
	}
	global[name] = &Symbol{Name: name, IRName: irName, Type: typ, Kind: kind, IsConst: isConst, ConstValue: constValue}
	return nil
}

// Lookup scans frames from innermost to the global frame and returns the
// first match, or nil if none exists.
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if sym, ok := t.frames[i][name]; ok {
			return sym
		}
	}
	return nil
}
