package parser

import (
	"testing"

	"github.com/srclang/srcc/pkg/ast"
	"github.com/srclang/srcc/pkg/lexer"
	"github.com/srclang/srcc/pkg/token"
)

func tokenize(t *testing.T, src string) []token.Token {
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
	return toks
}

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	return NewParser(tokenize(t, src)).Parse()
}

func TestParseMinimalFunction(t *testing.T) {
	root := parse(t, "int main() { return 0; }")
	cu := root.Data.(ast.CompUnitNode)
	if len(cu.Items) != 1 {
		t.Fatalf("got %d top-level items, want 1", len(cu.Items))
	}
	fn := cu.Items[0]
	if fn.Type != ast.FuncDef {
		t.Fatalf("top-level item type = %v, want FuncDef", fn.Type)
	}
	def := fn.Data.(ast.FuncDefNode)
	if def.Name != "main" {
		t.Errorf("function name = %q, want main", def.Name)
	}
	body := def.Body.Data.(ast.BlockNode)
	if len(body.Items) != 1 || body.Items[0].Type != ast.Return {
		t.Fatalf("body = %+v, want a single Return statement", body.Items)
	}
}

func TestParseFunctionWithParams(t *testing.T) {
	root := parse(t, "int add(int a, int b) { return a + b; }")
	fn := root.Data.(ast.CompUnitNode).Items[0]
	def := fn.Data.(ast.FuncDefNode)
	if len(def.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(def.Params))
	}
	for i, name := range []string{"a", "b"} {
		p := def.Params[i].Data.(ast.FuncParamNode)
		if p.Name != name || p.IsPointer {
			t.Errorf("param %d = %+v, want a plain scalar named %q", i, p, name)
		}
	}
}

func TestParseArrayParamDecaysToPointer(t *testing.T) {
	root := parse(t, "void f(int a[], int b[][3]) { }")
	fn := root.Data.(ast.CompUnitNode).Items[0]
	def := fn.Data.(ast.FuncDefNode)

	a := def.Params[0].Data.(ast.FuncParamNode)
	if !a.IsPointer || len(a.Dims) != 0 {
		t.Errorf("param a = %+v, want IsPointer=true with no further dims", a)
	}
	b := def.Params[1].Data.(ast.FuncParamNode)
	if !b.IsPointer || len(b.Dims) != 1 {
		t.Errorf("param b = %+v, want IsPointer=true with one further dim", b)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	root := parse(t, "int main() { return 1 + 2 * 3; }")
	ret := root.Data.(ast.CompUnitNode).Items[0].Data.(ast.FuncDefNode).Body.Data.(ast.BlockNode).Items[0]
	expr := ret.Data.(ast.ReturnNode).Expr
	if expr.Type != ast.Binary {
		t.Fatalf("top expr type = %v, want Binary", expr.Type)
	}
	bin := expr.Data.(ast.BinaryNode)
	if bin.Op != ast.OpAdd {
		t.Fatalf("top operator = %v, want OpAdd (so * binds tighter than +)", bin.Op)
	}
	if bin.Rhs.Type != ast.Binary || bin.Rhs.Data.(ast.BinaryNode).Op != ast.OpMul {
		t.Fatalf("right operand = %+v, want a nested OpMul", bin.Rhs)
	}
}

func TestParseIfElse(t *testing.T) {
	root := parse(t, "int main() { if (1) return 1; else return 2; }")
	stmt := root.Data.(ast.CompUnitNode).Items[0].Data.(ast.FuncDefNode).Body.Data.(ast.BlockNode).Items[0]
	if stmt.Type != ast.If {
		t.Fatalf("stmt type = %v, want If", stmt.Type)
	}
	ifNode := stmt.Data.(ast.IfNode)
	if ifNode.Else == nil {
		t.Fatal("expected a non-nil else branch")
	}
}

func TestParseArrayDeclWithInitList(t *testing.T) {
	root := parse(t, "int main() { int a[2][2] = {{1, 2}, {3, 4}}; return 0; }")
	decl := root.Data.(ast.CompUnitNode).Items[0].Data.(ast.FuncDefNode).Body.Data.(ast.BlockNode).Items[0]
	if decl.Type != ast.Decl {
		t.Fatalf("stmt type = %v, want Decl", decl.Type)
	}
	def := decl.Data.(ast.DeclNode).Defs[0].Data.(ast.ArrayDefNode)
	if len(def.Dims) != 2 {
		t.Fatalf("got %d dims, want 2", len(def.Dims))
	}
	initList := def.Init.Data.(ast.InitValNode)
	if !initList.IsList || len(initList.List) != 2 {
		t.Fatalf("init = %+v, want a list of two rows", initList)
	}
}

func TestParseAssignVsExprStmt(t *testing.T) {
	root := parse(t, "int main() { int x; x = 1; f(); return x; }")
	body := root.Data.(ast.CompUnitNode).Items[0].Data.(ast.FuncDefNode).Body.Data.(ast.BlockNode).Items

	if body[1].Type != ast.Assign {
		t.Fatalf("second item type = %v, want Assign", body[1].Type)
	}
	if body[2].Type != ast.ExprStmt {
		t.Fatalf("third item type = %v, want ExprStmt", body[2].Type)
	}
	call := body[2].Data.(ast.ExprStmtNode).Expr
	if call.Type != ast.Call {
		t.Fatalf("expr stmt's expr type = %v, want Call", call.Type)
	}
}

func TestParseWhileWithBreakContinue(t *testing.T) {
	root := parse(t, "int main() { while (1) { break; continue; } return 0; }")
	stmt := root.Data.(ast.CompUnitNode).Items[0].Data.(ast.FuncDefNode).Body.Data.(ast.BlockNode).Items[0]
	if stmt.Type != ast.While {
		t.Fatalf("stmt type = %v, want While", stmt.Type)
	}
	loopBody := stmt.Data.(ast.WhileNode).Body.Data.(ast.BlockNode).Items
	if loopBody[0].Type != ast.Break || loopBody[1].Type != ast.Continue {
		t.Fatalf("loop body = %+v, want [Break, Continue]", loopBody)
	}
}
