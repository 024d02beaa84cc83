package irgen

import (
	"strings"
	"testing"

	"github.com/srclang/srcc/pkg/ast"
	"github.com/srclang/srcc/pkg/lexer"
	"github.com/srclang/srcc/pkg/parser"
	"github.com/srclang/srcc/pkg/token"
)

func lowerSource(t *testing.T, src string) string {
	t.Helper()
	lx := lexer.NewLexer([]rune(src), 0)
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	root := ast.FoldConstants(parser.NewParser(toks).Parse())
	return LowerProgram(root)
}

func TestLowerProgramEmitsPrelude(t *testing.T) {
	out := lowerSource(t, "int main() { return 0; }")
	for _, want := range []string{"decl @getint()", "decl @putint(i32)", "decl @starttime()"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing prelude declaration %q\n%s", want, out)
		}
	}
}

func TestLowerReturnConstant(t *testing.T) {
	out := lowerSource(t, "int main() { return 42; }")
	if !strings.Contains(out, "fun @main(): i32 {\n%entry_main:\n  ret 42\n}\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestLowerImplicitReturnZero(t *testing.T) {
	out := lowerSource(t, "int main() { }")
	if !strings.Contains(out, "ret 0\n}\n") {
		t.Fatalf("expected an implicit 'ret 0' for a fall-through int function:\n%s", out)
	}
}

func TestLowerVoidFunctionImplicitReturn(t *testing.T) {
	out := lowerSource(t, "void f() { }")
	if !strings.Contains(out, "fun @f() {\n%entry_f:\n  ret\n}\n") {
		t.Fatalf("unexpected void function lowering:\n%s", out)
	}
}

func TestLowerBinaryArithmetic(t *testing.T) {
	out := lowerSource(t, "int f(int a, int b) { return a + b; }")
	if !strings.Contains(out, "= add ") {
		t.Fatalf("expected an 'add' instruction:\n%s", out)
	}
}

func TestLowerIfElseEmitsBranchAndLabels(t *testing.T) {
	out := lowerSource(t, "int f(int a) { if (a) return 1; else return 2; return 0; }")
	for _, want := range []string{"br ", "%then_0:", "%else_0:", "%end_0:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestLowerWhileEmitsLoopLabels(t *testing.T) {
	out := lowerSource(t, "int f() { int i = 0; while (i) i = i; return 0; }")
	for _, want := range []string{"%while_entry_0:", "%while_body_0:", "%while_end_0:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestLowerGlobalConstFoldsAtUse(t *testing.T) {
	out := lowerSource(t, "const int N = 3; int main() { return N; }")
	if !strings.Contains(out, "ret 3\n") {
		t.Fatalf("use of a const global should fold to its literal value:\n%s", out)
	}
}

func TestLowerArrayDeclAllocatesAndStores(t *testing.T) {
	out := lowerSource(t, "int main() { int a[3] = {1, 2, 3}; return a[0]; }")
	if !strings.Contains(out, "alloc [i32, 3]") {
		t.Fatalf("expected an array alloc:\n%s", out)
	}
	if !strings.Contains(out, "getelemptr") {
		t.Fatalf("expected a getelemptr for the index read:\n%s", out)
	}
}

func TestLowerCallEmitsCallInstruction(t *testing.T) {
	out := lowerSource(t, "int f(int x) { return x; } int main() { return f(1); }")
	if !strings.Contains(out, "= call @f(1)") {
		t.Fatalf("expected a call instruction to @f:\n%s", out)
	}
}
