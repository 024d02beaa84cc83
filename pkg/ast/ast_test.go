package ast

import (
	"testing"

	"github.com/srclang/srcc/pkg/symtab"
	"github.com/srclang/srcc/pkg/token"
)

var zeroTok = token.Token{}

func num(v int32) *Node { return NewNumber(zeroTok, v) }

func TestFoldConstantsArithmetic(t *testing.T) {
	cases := []struct {
		op   BinaryOp
		l, r int32
		want int32
	}{
		{OpAdd, 2, 3, 5},
		{OpSub, 2, 3, -1},
		{OpMul, 4, 5, 20},
		{OpDiv, 7, 2, 3},
		{OpMod, 7, 2, 1},
		{OpLt, 2, 3, 1},
		{OpGe, 2, 3, 0},
		{OpEq, 3, 3, 1},
		{OpAnd, 1, 0, 0},
		{OpOr, 0, 1, 1},
	}
	for _, c := range cases {
		folded := FoldConstants(NewBinary(zeroTok, c.op, num(c.l), num(c.r)))
		if folded.Type != Number {
			t.Fatalf("op %v: folded node type = %v, want Number", c.op, folded.Type)
		}
		got := folded.Data.(NumberNode).Value
		if got != c.want {
			t.Errorf("op %v: %d, %d -> %d, want %d", c.op, c.l, c.r, got, c.want)
		}
	}
}

func TestFoldConstantsDivisionByZeroLeftUnfolded(t *testing.T) {
	node := NewBinary(zeroTok, OpDiv, num(1), num(0))
	folded := FoldConstants(node)
	if folded.Type == Number {
		t.Fatal("division by zero must not fold to a constant")
	}
}

func TestFoldConstantsUnary(t *testing.T) {
	neg := FoldConstants(NewUnary(zeroTok, OpNeg, num(5)))
	if neg.Data.(NumberNode).Value != -5 {
		t.Errorf("-5 folded to %d", neg.Data.(NumberNode).Value)
	}
	not := FoldConstants(NewUnary(zeroTok, OpNot, num(0)))
	if not.Data.(NumberNode).Value != 1 {
		t.Errorf("!0 folded to %d, want 1", not.Data.(NumberNode).Value)
	}
}

func TestFoldConstantsRecursesIntoSubtrees(t *testing.T) {
	inner := NewBinary(zeroTok, OpAdd, num(1), num(2))
	outer := NewBinary(zeroTok, OpMul, inner, num(10))
	folded := FoldConstants(outer)
	if folded.Type != Number || folded.Data.(NumberNode).Value != 30 {
		t.Fatalf("nested fold = %+v, want constant 30", folded)
	}
}

func TestCalcValueConst(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("N", "", nil, symtab.Var, true, 7)
	lval := NewLVal(zeroTok, "N", nil)
	v, err := CalcValue(lval, tbl)
	if err != nil {
		t.Fatalf("CalcValue: %v", err)
	}
	if v != 7 {
		t.Errorf("CalcValue(N) = %d, want 7", v)
	}
}

func TestCalcValueRejectsNonConst(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("x", "@x", nil, symtab.Var, false, 0)
	lval := NewLVal(zeroTok, "x", nil)
	if _, err := CalcValue(lval, tbl); err == nil {
		t.Fatal("expected an error evaluating a non-const variable")
	}
}

func TestCalcValueRejectsCall(t *testing.T) {
	tbl := symtab.New()
	call := NewCall(zeroTok, "f", nil)
	if _, err := CalcValue(call, tbl); err == nil {
		t.Fatal("expected an error evaluating a call expression")
	}
}

func TestCalcValueShortCircuits(t *testing.T) {
	tbl := symtab.New()
	// 0 && (1/0) must short-circuit to 0 without evaluating the divide.
	rhs := NewBinary(zeroTok, OpDiv, num(1), num(0))
	expr := NewBinary(zeroTok, OpAnd, num(0), rhs)
	v, err := CalcValue(expr, tbl)
	if err != nil {
		t.Fatalf("CalcValue: %v", err)
	}
	if v != 0 {
		t.Errorf("0 && (1/0) = %d, want 0", v)
	}
}
