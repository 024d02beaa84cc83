package riscv

import (
	"fmt"
	"strings"

	"github.com/srclang/srcc/pkg/diag"
	"github.com/srclang/srcc/pkg/rawir"
)

// generator accumulates the assembly text buffer, mirroring the way
// pkg/irgen's Builder owns the IR text buffer: a fresh generator per
// program, a growing strings.Builder, no in-memory instruction graph
// other than the raw-IR view it is walking.
type generator struct {
	buf strings.Builder
}

// Generate walks prog and returns the RISC-V 32-bit assembly text of
// spec.md §4.4.
func Generate(prog *rawir.Program) string {
	g := &generator{}

	if len(prog.Globals) > 0 {
		g.buf.WriteString(".data\n")
		for _, gl := range prog.Globals {
			g.emitGlobal(gl)
		}
	}

	g.buf.WriteString(".text\n")
	for _, fn := range prog.Funcs {
		if fn.IsDecl {
			continue
		}
		g.emitFunc(fn)
	}
	return g.buf.String()
}

func (g *generator) emitGlobal(v *rawir.Value) {
	name := v.Name[1:]
	g.buf.WriteString(fmt.Sprintf(".global %s\n", name))
	g.buf.WriteString(name + ":\n")
	g.emitGlobalInit(v.Init)
}

func (g *generator) emitGlobalInit(v *rawir.Value) {
	switch v.Kind {
	case rawir.KInteger:
		g.buf.WriteString(fmt.Sprintf("  .word %d\n", v.IntValue))
	case rawir.KZeroInit:
		g.buf.WriteString(fmt.Sprintf("  .zero %d\n", v.Type.SizeBytes()))
	case rawir.KAggregate:
		for _, e := range v.Elems {
			g.emitGlobalInit(e)
		}
	default:
		diag.Fatal("riscv: unhandled global initialiser kind")
	}
}

// --- function prologue / body / epilogue ---

func (g *generator) emitFunc(fn *rawir.Function) {
	layout := computeLayout(fn)

	g.buf.WriteString(fmt.Sprintf(".globl %s\n", fn.Name))
	g.buf.WriteString(fn.Name + ":\n")

	if layout.totalFrameSize > 0 {
		g.emitAddiSp(-layout.totalFrameSize)
	}
	if layout.hasCallee {
		g.emitSw("ra", layout.totalFrameSize-4, "sp")
	}

	regParams := fn.Params
	if len(regParams) > maxRegArgs {
		regParams = regParams[:maxRegArgs]
	}
	for i, p := range regParams {
		g.emitSw(fmt.Sprintf("a%d", i), layout.slotOf[p], "sp")
	}

	for _, bb := range fn.BasicBlocks {
		g.buf.WriteString(asmLabel(bb.Name) + ":\n")
		for _, inst := range bb.Insts {
			g.emitInst(inst, layout)
		}
	}
}

func asmLabel(koopaLabel string) string { return koopaLabel[1:] }

// --- main pass: instruction dispatch (spec.md §4.4.3) ---

func (g *generator) emitInst(inst *rawir.Value, layout *funcLayout) {
	switch inst.Kind {
	case rawir.KAlloc:
		return // slot already reserved by the pre-pass; nothing to emit

	case rawir.KLoad:
		g.loadTo(inst.Src, "t0", layout)
		g.buf.WriteString("  lw t0, 0(t0)\n")

	case rawir.KStore:
		g.loadTo(inst.StoreVal, "t0", layout)
		g.loadTo(inst.StoreDest, "t1", layout)
		g.buf.WriteString("  sw t0, 0(t1)\n")
		return

	case rawir.KGetElemPtr, rawir.KGetPtr:
		g.loadTo(inst.Src, "t0", layout)
		g.loadTo(inst.Index, "t1", layout)
		stride := inst.Type.Base.SizeBytes()
		g.buf.WriteString(fmt.Sprintf("  li t2, %d\n", stride))
		g.buf.WriteString("  mul t1, t1, t2\n")
		g.buf.WriteString("  add t0, t0, t1\n")

	case rawir.KBinary:
		g.loadTo(inst.Lhs, "t0", layout)
		g.loadTo(inst.Rhs, "t1", layout)
		g.emitBinary(inst.Op)

	case rawir.KBranch:
		g.loadTo(inst.Cond, "t0", layout)
		g.buf.WriteString(fmt.Sprintf("  bnez t0, %s\n", asmLabel(inst.TrueBB)))
		g.buf.WriteString(fmt.Sprintf("  j %s\n", asmLabel(inst.FalseBB)))
		return

	case rawir.KJump:
		g.buf.WriteString(fmt.Sprintf("  j %s\n", asmLabel(inst.JumpTarget)))
		return

	case rawir.KCall:
		for i, a := range inst.Args {
			if i < maxRegArgs {
				g.loadTo(a, fmt.Sprintf("a%d", i), layout)
			} else {
				g.loadTo(a, "t0", layout)
				g.emitSw("t0", (i-maxRegArgs)*4, "sp")
			}
		}
		g.buf.WriteString(fmt.Sprintf("  call %s\n", inst.Callee))

	case rawir.KReturn:
		if inst.RetVal != nil {
			g.loadTo(inst.RetVal, "a0", layout)
		}
		if layout.raSize > 0 {
			g.emitLw("ra", layout.totalFrameSize-4, "sp")
		}
		if layout.totalFrameSize > 0 {
			g.emitAddiSp(layout.totalFrameSize)
		}
		g.buf.WriteString("  ret\n")
		return

	default:
		diag.Fatal("riscv: unhandled raw-value kind in instruction dispatch")
	}

	if inst.Type.Kind != rawir.RUnit {
		if inst.Kind == rawir.KCall {
			g.emitSw("a0", layout.slotOf[inst], "sp")
		} else {
			g.emitSw("t0", layout.slotOf[inst], "sp")
		}
	}
}

var binaryMnemonic = map[rawir.BinOp]string{
	rawir.BAdd: "add", rawir.BSub: "sub", rawir.BMul: "mul", rawir.BDiv: "div", rawir.BMod: "rem",
	rawir.BAnd: "and", rawir.BOr: "or", rawir.BXor: "xor",
	rawir.BShl: "sll", rawir.BShr: "srl", rawir.BSar: "sra",
}

func (g *generator) emitBinary(op rawir.BinOp) {
	switch op {
	case rawir.BLt:
		g.buf.WriteString("  slt t0, t0, t1\n")
	case rawir.BGt:
		g.buf.WriteString("  sgt t0, t0, t1\n")
	case rawir.BLe:
		g.buf.WriteString("  sgt t0, t0, t1\n")
		g.buf.WriteString("  seqz t0, t0\n")
	case rawir.BGe:
		g.buf.WriteString("  slt t0, t0, t1\n")
		g.buf.WriteString("  seqz t0, t0\n")
	case rawir.BEq:
		g.buf.WriteString("  xor t0, t0, t1\n")
		g.buf.WriteString("  seqz t0, t0\n")
	case rawir.BNe:
		g.buf.WriteString("  xor t0, t0, t1\n")
		g.buf.WriteString("  snez t0, t0\n")
	default:
		mnem, ok := binaryMnemonic[op]
		if !ok {
			diag.Fatal("riscv: unhandled binary operator in instruction dispatch")
		}
		g.buf.WriteString(fmt.Sprintf("  %s t0, t0, t1\n", mnem))
	}
}

// loadTo materialises v into reg, per spec.md §4.4.4.
func (g *generator) loadTo(v *rawir.Value, reg string, layout *funcLayout) {
	switch v.Kind {
	case rawir.KInteger:
		g.buf.WriteString(fmt.Sprintf("  li %s, %d\n", reg, v.IntValue))
	case rawir.KGlobalAlloc:
		g.buf.WriteString(fmt.Sprintf("  la %s, %s\n", reg, v.Name[1:]))
	case rawir.KAlloc:
		g.emitAddi(reg, "sp", layout.slotOf[v])
	default:
		g.emitLw(reg, layout.slotOf[v], "sp")
	}
}

// --- 12-bit immediate helpers (spec.md §4.4.5) ---

const (
	immMin = -2048
	immMax = 2047
)

func fitsImm12(n int) bool { return n >= immMin && n <= immMax }

func (g *generator) emitAddiSp(delta int) {
	if fitsImm12(delta) {
		g.buf.WriteString(fmt.Sprintf("  addi sp, sp, %d\n", delta))
		return
	}
	g.buf.WriteString(fmt.Sprintf("  li t2, %d\n", delta))
	g.buf.WriteString("  add sp, sp, t2\n")
}

func (g *generator) emitAddi(dst, base string, imm int) {
	if fitsImm12(imm) {
		g.buf.WriteString(fmt.Sprintf("  addi %s, %s, %d\n", dst, base, imm))
		return
	}
	g.buf.WriteString(fmt.Sprintf("  li t2, %d\n", imm))
	g.buf.WriteString(fmt.Sprintf("  add %s, %s, t2\n", dst, base))
}

func (g *generator) emitLw(dst string, offset int, base string) {
	if fitsImm12(offset) {
		g.buf.WriteString(fmt.Sprintf("  lw %s, %d(%s)\n", dst, offset, base))
		return
	}
	g.buf.WriteString(fmt.Sprintf("  li t2, %d\n", offset))
	g.buf.WriteString(fmt.Sprintf("  add t2, %s, t2\n", base))
	g.buf.WriteString(fmt.Sprintf("  lw %s, 0(t2)\n", dst))
}

func (g *generator) emitSw(src string, offset int, base string) {
	if fitsImm12(offset) {
		g.buf.WriteString(fmt.Sprintf("  sw %s, %d(%s)\n", src, offset, base))
		return
	}
	g.buf.WriteString(fmt.Sprintf("  li t2, %d\n", offset))
	g.buf.WriteString(fmt.Sprintf("  add t2, %s, t2\n", base))
	g.buf.WriteString(fmt.Sprintf("  sw %s, 0(t2)\n", src))
}
