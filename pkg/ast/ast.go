// Package ast defines the SrcLang abstract syntax tree: a closed sum
// type of all syntactic forms, dispatched by type switch rather than by
// virtual call, plus constant folding over expression nodes.
package ast

import (
	"github.com/srclang/srcc/pkg/token"
	"github.com/srclang/srcc/pkg/types"
)

// NodeType discriminates the kind of a Node.
type NodeType int

const (
	// Top level / declarations
	CompUnit NodeType = iota
	FuncDef
	FuncDecl
	FuncParam
	Decl
	ScalarDef
	ArrayDef
	Block

	// Statements
	If
	While
	Break
	Continue
	Return
	Assign
	ExprStmt

	// Expressions
	Number
	LVal
	Unary
	Binary
	Call
	InitVal
)

// UnaryOp / BinaryOp enumerate the operator tags spec.md §3.3 names.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
	OpAnd // &&
	OpOr  // ||
)

// Node is one AST node. Data carries the node-specific fields; Typ is
// filled in for expression nodes once their type is known.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
	Typ  *types.Type
}

// --- Node data ---

type CompUnitNode struct{ Items []*Node }

type FuncDefNode struct {
	Name       string
	Params     []*Node // FuncParam
	ReturnType *types.Type
	Body       *Node // Block
}

type FuncDeclNode struct {
	Name       string
	ParamTypes []*types.Type
	ReturnType *types.Type
}

// FuncParamNode is one function parameter. A plain scalar parameter has
// IsPointer false. An array parameter decays to a pointer: IsPointer is
// true and Dims holds the dimension expressions after the first,
// always-empty, bracket pair (e.g. `int a[][3]` has Dims = [3]).
// Resolved lazily during lowering, once prior const declarations are
// visible in the builder's symbol table.
type FuncParamNode struct {
	Name      string
	IsPointer bool
	Dims      []*Node
}

// DeclNode wraps one or more comma-separated ScalarDef/ArrayDef
// declarators sharing a single `[const] int` declaration statement.
type DeclNode struct {
	IsConst bool
	Defs    []*Node // ScalarDef | ArrayDef
}

// ScalarDefNode is one `int x [= init];` or `const int x = init;`
// declaration, global or local depending on where it's lowered.
type ScalarDefNode struct {
	Name    string
	IsConst bool
	Init    *Node // InitVal, or nil
}

// ArrayDefNode is one `int x[d1][d2]... [= initlist];` declaration. Dims
// are dimension expressions, constant-evaluated during lowering.
type ArrayDefNode struct {
	Name string
	Dims []*Node
	Init *Node // InitVal, or nil
}

type BlockNode struct {
	Items        []*Node // Stmt | Decl
	CreatesScope bool
}

type IfNode struct{ Cond, Then, Else *Node }
type WhileNode struct{ Cond, Body *Node }
type BreakNode struct{}
type ContinueNode struct{}
type ReturnNode struct{ Expr *Node } // Expr may be nil

type AssignNode struct{ LVal, Rhs *Node }
type ExprStmtNode struct{ Expr *Node }

type NumberNode struct{ Value int32 }

type LValNode struct {
	Ident   string
	Indices []*Node
}

type UnaryNode struct {
	Op  UnaryOp
	Rhs *Node
}

type BinaryNode struct {
	Op       BinaryOp
	Lhs, Rhs *Node
}

type CallNode struct {
	Ident string
	Args  []*Node
}

// InitValNode is either a single scalar Expr, or a bracketed ordered
// list of InitVal children.
type InitValNode struct {
	Expr   *Node   // set iff this is a scalar initialiser
	List   []*Node // set iff this is a braced sub-list
	IsList bool
}

// --- Constructors ---

func newNode(tok token.Token, t NodeType, data interface{}) *Node {
	return &Node{Type: t, Tok: tok, Data: data}
}

func NewCompUnit(tok token.Token, items []*Node) *Node {
	return newNode(tok, CompUnit, CompUnitNode{Items: items})
}
func NewFuncDef(tok token.Token, name string, params []*Node, ret *types.Type, body *Node) *Node {
	return newNode(tok, FuncDef, FuncDefNode{Name: name, Params: params, ReturnType: ret, Body: body})
}
func NewFuncDecl(tok token.Token, name string, paramTypes []*types.Type, ret *types.Type) *Node {
	return newNode(tok, FuncDecl, FuncDeclNode{Name: name, ParamTypes: paramTypes, ReturnType: ret})
}
func NewFuncParam(tok token.Token, name string, isPointer bool, dims []*Node) *Node {
	return newNode(tok, FuncParam, FuncParamNode{Name: name, IsPointer: isPointer, Dims: dims})
}
func NewDecl(tok token.Token, isConst bool, defs []*Node) *Node {
	return newNode(tok, Decl, DeclNode{IsConst: isConst, Defs: defs})
}
func NewScalarDef(tok token.Token, name string, isConst bool, init *Node) *Node {
	return newNode(tok, ScalarDef, ScalarDefNode{Name: name, IsConst: isConst, Init: init})
}
func NewArrayDef(tok token.Token, name string, dims []*Node, init *Node) *Node {
	return newNode(tok, ArrayDef, ArrayDefNode{Name: name, Dims: dims, Init: init})
}
func NewBlock(tok token.Token, items []*Node, createsScope bool) *Node {
	return newNode(tok, Block, BlockNode{Items: items, CreatesScope: createsScope})
}
func NewIf(tok token.Token, cond, then, els *Node) *Node {
	return newNode(tok, If, IfNode{Cond: cond, Then: then, Else: els})
}
func NewWhile(tok token.Token, cond, body *Node) *Node {
	return newNode(tok, While, WhileNode{Cond: cond, Body: body})
}
func NewBreak(tok token.Token) *Node           { return newNode(tok, Break, BreakNode{}) }
func NewContinue(tok token.Token) *Node        { return newNode(tok, Continue, ContinueNode{}) }
func NewReturn(tok token.Token, e *Node) *Node { return newNode(tok, Return, ReturnNode{Expr: e}) }
func NewAssign(tok token.Token, lval, rhs *Node) *Node {
	return newNode(tok, Assign, AssignNode{LVal: lval, Rhs: rhs})
}
func NewExprStmt(tok token.Token, e *Node) *Node {
	return newNode(tok, ExprStmt, ExprStmtNode{Expr: e})
}
func NewNumber(tok token.Token, v int32) *Node { return newNode(tok, Number, NumberNode{Value: v}) }
func NewLVal(tok token.Token, ident string, indices []*Node) *Node {
	return newNode(tok, LVal, LValNode{Ident: ident, Indices: indices})
}
func NewUnary(tok token.Token, op UnaryOp, rhs *Node) *Node {
	return newNode(tok, Unary, UnaryNode{Op: op, Rhs: rhs})
}
func NewBinary(tok token.Token, op BinaryOp, lhs, rhs *Node) *Node {
	return newNode(tok, Binary, BinaryNode{Op: op, Lhs: lhs, Rhs: rhs})
}
func NewCall(tok token.Token, ident string, args []*Node) *Node {
	return newNode(tok, Call, CallNode{Ident: ident, Args: args})
}
func NewInitExpr(tok token.Token, expr *Node) *Node {
	return newNode(tok, InitVal, InitValNode{Expr: expr})
}
func NewInitList(tok token.Token, list []*Node) *Node {
	return newNode(tok, InitVal, InitValNode{List: list, IsList: true})
}
