// Package riscv is the target code generator of spec.md §4.4: a
// two-pass per-function walker over the raw IR (pkg/rawir) that emits
// RISC-V 32-bit assembly text using a fixed stack-slot-per-value
// scheme, no register allocation.
package riscv

import "github.com/srclang/srcc/pkg/rawir"

// funcLayout is the stack layout state of spec.md §3.6, computed once
// per function by the pre-pass before any assembly is emitted.
type funcLayout struct {
	localFrameSize int
	raSize         int
	argsSize       int
	totalFrameSize int
	hasCallee      bool
	slotOf         map[*rawir.Value]int
}

const maxRegArgs = 8

// computeLayout runs the pre-pass of spec.md §4.4.1 over fn and returns
// its stack layout. Parameters occupy the bottom of the local-slot
// counter exactly like any other instruction, so after the uniform
// args_size shift below they land at iN*4 + args_size, matching the
// prologue's placement in §4.4.2.
func computeLayout(fn *rawir.Function) *funcLayout {
	l := &funcLayout{slotOf: make(map[*rawir.Value]int)}

	regParams := fn.Params
	if len(regParams) > maxRegArgs {
		regParams = regParams[:maxRegArgs]
	}
	for _, p := range regParams {
		l.slotOf[p] = l.localFrameSize
		l.localFrameSize += 4
	}

	for _, bb := range fn.BasicBlocks {
		for _, inst := range bb.Insts {
			if inst.Type.Kind != rawir.RUnit {
				size := 4
				if inst.Kind == rawir.KAlloc {
					size = inst.Alloc.SizeBytes()
				}
				l.slotOf[inst] = l.localFrameSize
				l.localFrameSize += size
			}
			if inst.Kind == rawir.KCall {
				l.hasCallee = true
				l.raSize = 4
				if len(inst.Args) > l.argsSize {
					l.argsSize = len(inst.Args)
				}
			}
		}
	}

	if l.argsSize > maxRegArgs {
		l.argsSize = (l.argsSize - maxRegArgs) * 4
	} else {
		l.argsSize = 0
	}

	total := l.localFrameSize + l.raSize + l.argsSize
	l.totalFrameSize = alignUp16(total)

	for v, off := range l.slotOf {
		l.slotOf[v] = off + l.argsSize
	}

	if len(fn.Params) > maxRegArgs {
		for i, p := range fn.Params[maxRegArgs:] {
			l.slotOf[p] = l.totalFrameSize + i*4
		}
	}

	return l
}

func alignUp16(n int) int {
	return (n + 15) &^ 15
}
