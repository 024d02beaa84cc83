package ast

import (
	"fmt"

	"github.com/srclang/srcc/pkg/symtab"
)

// ErrSemantic is returned by CalcValue when compile-time evaluation is
// not possible for the given node.
type ErrSemantic struct{ Msg string }

func (e *ErrSemantic) Error() string { return e.Msg }

func semErr(format string, args ...interface{}) error {
	return &ErrSemantic{Msg: fmt.Sprintf(format, args...)}
}

// wrapInt32 performs two's-complement wrapping arithmetic. All constant
// evaluation and folding in this package (CalcValue and FoldConstants)
// funnels through plain int32 arithmetic, which already wraps on
// overflow in Go — no undefined behaviour is introduced.
func wrapInt32(v int32) int32 { return v }

// CalcValue evaluates node as a compile-time constant expression. It is
// defined on every expression form; it fails on Call and on any LVal
// that does not resolve to a scalar compile-time constant.
func CalcValue(node *Node, table *symtab.Table) (int32, error) {
	switch node.Type {
	case Number:
		return node.Data.(NumberNode).Value, nil

	case LVal:
		d := node.Data.(LValNode)
		if len(d.Indices) != 0 {
			return 0, semErr("'%s' is not a compile-time constant", d.Ident)
		}
		sym := table.Lookup(d.Ident)
		if sym == nil {
			return 0, semErr("use of undeclared identifier '%s'", d.Ident)
		}
		if !sym.IsConst {
			return 0, semErr("'%s' is not a compile-time constant", d.Ident)
		}
		return sym.ConstValue, nil

	case Unary:
		d := node.Data.(UnaryNode)
		v, err := CalcValue(d.Rhs, table)
		if err != nil {
			return 0, err
		}
		switch d.Op {
		case OpNeg:
			return wrapInt32(-v), nil
		case OpNot:
			if v == 0 {
				return 1, nil
			}
			return 0, nil
		}

	case Binary:
		d := node.Data.(BinaryNode)
		l, err := CalcValue(d.Lhs, table)
		if err != nil {
			return 0, err
		}
		// Short-circuit even at compile time: && and || never need the
		// right operand once the left is decisive.
		switch d.Op {
		case OpAnd:
			if l == 0 {
				return 0, nil
			}
		case OpOr:
			if l != 0 {
				return 1, nil
			}
		}
		r, err := CalcValue(d.Rhs, table)
		if err != nil {
			return 0, err
		}
		switch d.Op {
		case OpAdd:
			return wrapInt32(l + r), nil
		case OpSub:
			return wrapInt32(l - r), nil
		case OpMul:
			return wrapInt32(l * r), nil
		case OpDiv:
			if r == 0 {
				return 0, semErr("division by zero in constant expression")
			}
			return wrapInt32(l / r), nil
		case OpMod:
			if r == 0 {
				return 0, semErr("remainder by zero in constant expression")
			}
			return wrapInt32(l % r), nil
		case OpLt:
			return boolInt32(l < r), nil
		case OpGt:
			return boolInt32(l > r), nil
		case OpLe:
			return boolInt32(l <= r), nil
		case OpGe:
			return boolInt32(l >= r), nil
		case OpEq:
			return boolInt32(l == r), nil
		case OpNe:
			return boolInt32(l != r), nil
		case OpAnd:
			return boolInt32(l != 0 && r != 0), nil
		case OpOr:
			return boolInt32(l != 0 || r != 0), nil
		}

	case Call:
		return 0, semErr("function call is not a compile-time constant")
	}
	return 0, semErr("expression is not a compile-time constant")
}

func boolInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
