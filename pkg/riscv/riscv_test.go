package riscv

import (
	"strconv"
	"strings"
	"testing"

	"github.com/srclang/srcc/pkg/rawir"
)

func generate(t *testing.T, irText string) string {
	t.Helper()
	h, err := rawir.Parse(irText)
	if err != nil {
		t.Fatalf("rawir.Parse: %v", err)
	}
	defer h.Release()
	return Generate(h.RawProgramView())
}

func TestGenerateReturnConstant(t *testing.T) {
	out := generate(t, `
fun @main(): i32 {
%entry:
  ret 42
}
`)
	if !strings.Contains(out, "li a0, 42") {
		t.Fatalf("expected the return value to be materialised into a0:\n%s", out)
	}
	if !strings.Contains(out, "ret\n") {
		t.Fatalf("expected a ret instruction:\n%s", out)
	}
}

func TestGenerateSkipsExternalDeclarations(t *testing.T) {
	out := generate(t, "decl @getint(): i32\n")
	if strings.Contains(out, "getint:") {
		t.Fatalf("external declarations must not get a label:\n%s", out)
	}
}

func TestGenerateBinaryOp(t *testing.T) {
	out := generate(t, `
fun @f(): i32 {
%entry:
  %0 = add 1, 2
  ret %0
}
`)
	if !strings.Contains(out, "add t0, t0, t1") {
		t.Fatalf("expected an add instruction:\n%s", out)
	}
}

func TestGenerateComparisonOps(t *testing.T) {
	cases := []struct {
		op   string
		want string
	}{
		{"lt", "slt t0, t0, t1"},
		{"le", "sgt t0, t0, t1"},
		{"eq", "xor t0, t0, t1"},
	}
	for _, c := range cases {
		out := generate(t, `
fun @f(): i32 {
%entry:
  %0 = `+c.op+` 1, 2
  ret %0
}
`)
		if !strings.Contains(out, c.want) {
			t.Errorf("op %s: expected %q in:\n%s", c.op, c.want, out)
		}
	}
}

func TestGenerateFrameSetupAndTeardownBalance(t *testing.T) {
	out := generate(t, `
fun @f(@a: i32, @b: i32): i32 {
%entry:
  %0 = add @a, @b
  ret %0
}
`)
	var delta int
	const prefix = "addi sp, sp, "
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(line, prefix))
		if err != nil {
			t.Fatalf("could not parse sp adjustment %q: %v", line, err)
		}
		delta += n
	}
	if delta != 0 {
		t.Fatalf("stack pointer adjustments do not balance: net delta %d\n%s", delta, out)
	}
}

func TestGenerateGlobalWordInit(t *testing.T) {
	out := generate(t, "global @g = alloc i32, 7\n")
	if !strings.Contains(out, ".data") || !strings.Contains(out, "g:\n  .word 7") {
		t.Fatalf("unexpected global emission:\n%s", out)
	}
}

func TestGenerateGlobalZeroInit(t *testing.T) {
	out := generate(t, "global @g = alloc [i32, 4], zeroinit\n")
	if !strings.Contains(out, ".zero 16") {
		t.Fatalf("expected a .zero directive sized for the array:\n%s", out)
	}
}

func TestGenerateCallPassesRegisterArgs(t *testing.T) {
	out := generate(t, `
decl @f(i32): i32
fun @main(): i32 {
%entry:
  %0 = call @f(9)
  ret %0
}
`)
	if !strings.Contains(out, "li a0, 9") || !strings.Contains(out, "call f") {
		t.Fatalf("expected argument passed in a0 and a call to f:\n%s", out)
	}
}

func TestGenerateOutOfRangeImmediateMaterialisesViaLi(t *testing.T) {
	out := generate(t, `
fun @f(): i32 {
%entry:
  ret 5000
}
`)
	if !strings.Contains(out, "li a0, 5000") {
		t.Fatalf("a constant outside the 12-bit immediate range should be materialised with li:\n%s", out)
	}
}
