// Package irgen lowers a folded SrcLang AST into KoopaIR text. Lowering
// never builds an in-memory IR graph: the Builder is a thin wrapper
// around a growing text buffer plus the bookkeeping (fresh-name
// counters, block-closed flag, loop-target stack, symbol table) needed
// to emit it correctly. A later, independent component re-parses this
// text into a structured view for the target code generator.
package irgen

import (
	"fmt"
	"strings"

	"github.com/srclang/srcc/pkg/diag"
	"github.com/srclang/srcc/pkg/symtab"
	"github.com/srclang/srcc/pkg/token"
	"github.com/srclang/srcc/pkg/types"
)

type loopCtx struct {
	continueLabel string
	breakLabel    string
}

// Builder owns the output buffer and all per-function counters named by
// the IR builder state.
type Builder struct {
	buf strings.Builder

	valueCounter int
	localCounter int
	labelCounter int
	blockClosed  bool

	loops []loopCtx
	table *symtab.Table
}

// NewBuilder returns a builder with the standard library prelude
// already emitted and its symbols already bound in the global frame.
func NewBuilder() *Builder {
	b := &Builder{table: symtab.New()}
	b.emitPrelude()
	return b
}

func (b *Builder) Output() string { return b.buf.String() }

// Append is the single escape hatch for emitting raw text.
func (b *Builder) Append(s string) { b.buf.WriteString(s) }

func (b *Builder) Table() *symtab.Table { return b.table }

// NewValue returns the next fresh %k SSA value name for the current
// function.
func (b *Builder) NewValue() string {
	v := fmt.Sprintf("%%%d", b.valueCounter)
	b.valueCounter++
	return v
}

// NewLocal returns the next fresh @ident_k local-variable name for the
// current function.
func (b *Builder) NewLocal(ident string) string {
	v := fmt.Sprintf("@%s_%d", ident, b.localCounter)
	b.localCounter++
	return v
}

// NewLabel returns the next fresh %prefix_id label name, drawing from a
// single id counter shared by every label prefix in the function.
func (b *Builder) NewLabel(prefix string) string {
	v := fmt.Sprintf("%%%s_%d", prefix, b.labelCounter)
	b.labelCounter++
	return v
}

func (b *Builder) resetFuncCounters() {
	b.valueCounter = 0
	b.localCounter = 0
	b.labelCounter = 0
	b.blockClosed = false
}

func (b *Builder) SetBlockClosed()   { b.blockClosed = true }
func (b *Builder) ClearBlockClosed() { b.blockClosed = false }
func (b *Builder) IsBlockClosed() bool { return b.blockClosed }

func (b *Builder) PushLoop(continueLabel, breakLabel string) {
	b.loops = append(b.loops, loopCtx{continueLabel: continueLabel, breakLabel: breakLabel})
}

func (b *Builder) PopLoop() {
	b.loops = b.loops[:len(b.loops)-1]
}

func (b *Builder) BreakTarget(tok token.Token) string {
	if len(b.loops) == 0 {
		diag.Error(tok, "'break' outside of a loop")
	}
	return b.loops[len(b.loops)-1].breakLabel
}

func (b *Builder) ContinueTarget(tok token.Token) string {
	if len(b.loops) == 0 {
		diag.Error(tok, "'continue' outside of a loop")
	}
	return b.loops[len(b.loops)-1].continueLabel
}

type stdlibFn struct {
	name       string
	params     []*types.Type
	returnType *types.Type
}

var stdlib = []stdlibFn{
	{"getint", nil, types.TInt},
	{"getch", nil, types.TInt},
	{"getarray", []*types.Type{types.NewPointer(types.TInt)}, types.TInt},
	{"putint", []*types.Type{types.TInt}, types.TVoid},
	{"putch", []*types.Type{types.TInt}, types.TVoid},
	{"putarray", []*types.Type{types.TInt, types.NewPointer(types.TInt)}, types.TVoid},
	{"starttime", nil, types.TVoid},
	{"stoptime", nil, types.TVoid},
}

func (b *Builder) emitPrelude() {
	for _, fn := range stdlib {
		parts := make([]string, len(fn.params))
		for i, p := range fn.params {
			parts[i] = p.RenderIR()
		}
		ret := ""
		if fn.returnType.Kind() != types.Void {
			ret = ": " + fn.returnType.RenderIR()
		}
		b.Append(fmt.Sprintf("decl @%s(%s)%s\n", fn.name, strings.Join(parts, ", "), ret))

		if err := b.table.DefineGlobal(fn.name, "@"+fn.name, fn.returnType, symtab.Func, false, 0); err != nil {
			diag.Fatal("%s", err.Error())
		}
	}
	b.Append("\n")
}
