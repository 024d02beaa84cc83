package ast

// FoldConstants performs trivial compile-time constant folding over an
// expression subtree: binary/unary operations on two Number operands
// collapse to a single Number node. This is the only optimisation this
// system performs; it runs once over the whole AST before lowering.
func FoldConstants(node *Node) *Node {
	if node == nil {
		return nil
	}

	switch d := node.Data.(type) {
	case CompUnitNode:
		for i, it := range d.Items {
			d.Items[i] = FoldConstants(it)
		}
		node.Data = d
	case FuncDefNode:
		for i, param := range d.Params {
			d.Params[i] = FoldConstants(param)
		}
		d.Body = FoldConstants(d.Body)
		node.Data = d
	case FuncParamNode:
		for i, dim := range d.Dims {
			d.Dims[i] = FoldConstants(dim)
		}
		node.Data = d
	case UnaryNode:
		d.Rhs = FoldConstants(d.Rhs)
		node.Data = d
	case BinaryNode:
		d.Lhs = FoldConstants(d.Lhs)
		d.Rhs = FoldConstants(d.Rhs)
		node.Data = d
	case CallNode:
		for i, a := range d.Args {
			d.Args[i] = FoldConstants(a)
		}
		node.Data = d
	case AssignNode:
		d.Rhs = FoldConstants(d.Rhs)
		node.Data = d
	case ExprStmtNode:
		d.Expr = FoldConstants(d.Expr)
		node.Data = d
	case IfNode:
		d.Cond = FoldConstants(d.Cond)
		d.Then = FoldConstants(d.Then)
		d.Else = FoldConstants(d.Else)
		node.Data = d
	case WhileNode:
		d.Cond = FoldConstants(d.Cond)
		d.Body = FoldConstants(d.Body)
		node.Data = d
	case ReturnNode:
		d.Expr = FoldConstants(d.Expr)
		node.Data = d
	case BlockNode:
		for i, s := range d.Items {
			d.Items[i] = FoldConstants(s)
		}
		node.Data = d
	case LValNode:
		for i, idx := range d.Indices {
			d.Indices[i] = FoldConstants(idx)
		}
		node.Data = d
	case DeclNode:
		for i, def := range d.Defs {
			d.Defs[i] = FoldConstants(def)
		}
		node.Data = d
	case ScalarDefNode:
		d.Init = FoldConstants(d.Init)
		node.Data = d
	case ArrayDefNode:
		for i, dim := range d.Dims {
			d.Dims[i] = FoldConstants(dim)
		}
		d.Init = FoldConstants(d.Init)
		node.Data = d
	case InitValNode:
		if d.IsList {
			for i, it := range d.List {
				d.List[i] = FoldConstants(it)
			}
		} else {
			d.Expr = FoldConstants(d.Expr)
		}
		node.Data = d
	}

	switch node.Type {
	case Unary:
		d := node.Data.(UnaryNode)
		if d.Rhs.Type == Number {
			v := d.Rhs.Data.(NumberNode).Value
			switch d.Op {
			case OpNeg:
				return NewNumber(node.Tok, wrapInt32(-v))
			case OpNot:
				return NewNumber(node.Tok, boolInt32(v == 0))
			}
		}
	case Binary:
		d := node.Data.(BinaryNode)
		if d.Lhs.Type == Number && d.Rhs.Type == Number {
			l, r := d.Lhs.Data.(NumberNode).Value, d.Rhs.Data.(NumberNode).Value
			switch d.Op {
			case OpAdd:
				return NewNumber(node.Tok, wrapInt32(l+r))
			case OpSub:
				return NewNumber(node.Tok, wrapInt32(l-r))
			case OpMul:
				return NewNumber(node.Tok, wrapInt32(l*r))
			case OpDiv:
				if r != 0 {
					return NewNumber(node.Tok, wrapInt32(l/r))
				}
			case OpMod:
				if r != 0 {
					return NewNumber(node.Tok, wrapInt32(l%r))
				}
			case OpLt:
				return NewNumber(node.Tok, boolInt32(l < r))
			case OpGt:
				return NewNumber(node.Tok, boolInt32(l > r))
			case OpLe:
				return NewNumber(node.Tok, boolInt32(l <= r))
			case OpGe:
				return NewNumber(node.Tok, boolInt32(l >= r))
			case OpEq:
				return NewNumber(node.Tok, boolInt32(l == r))
			case OpNe:
				return NewNumber(node.Tok, boolInt32(l != r))
			case OpAnd:
				return NewNumber(node.Tok, boolInt32(l != 0 && r != 0))
			case OpOr:
				return NewNumber(node.Tok, boolInt32(l != 0 || r != 0))
			}
		}
	}

	return node
}
