// Package parser implements a hand-rolled recursive-descent parser that
// turns a SrcLang token stream into an *ast.Node (CompUnit) tree. No
// constant expression is evaluated here: array dimensions and
// initialiser values are kept as raw expression subtrees and resolved
// during lowering, once the symbol table is live.
package parser

import (
	"strconv"

	"github.com/srclang/srcc/pkg/ast"
	"github.com/srclang/srcc/pkg/diag"
	"github.com/srclang/srcc/pkg/token"
	"github.com/srclang/srcc/pkg/types"
)

type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
}

func NewParser(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = tokens[0]
	}
	return p
}

func (p *Parser) advance() {
	p.previous = p.current
	if p.pos+1 < len(p.tokens) {
		p.pos++
	}
	p.current = p.tokens[p.pos]
}

func (p *Parser) check(t token.Type) bool { return p.current.Type == t }

func (p *Parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(t token.Type, msg string) token.Token {
	if !p.check(t) {
		diag.Error(p.current, "%s", msg)
	}
	tok := p.current
	p.advance()
	return tok
}

// Parse parses the whole token stream into a CompUnit.
func (p *Parser) Parse() *ast.Node {
	tok := p.current
	var items []*ast.Node
	for !p.check(token.EOF) {
		items = append(items, p.parseTopLevelItem())
	}
	return ast.NewCompUnit(tok, items)
}

func (p *Parser) parseType() *types.Type {
	switch {
	case p.match(token.Int):
		return types.TInt
	case p.match(token.Void):
		return types.TVoid
	default:
		diag.Error(p.current, "expected a type")
		return types.TVoid
	}
}

// parseTopLevelItem disambiguates a function definition from a global
// variable declaration by looking past the type and identifier for '('.
func (p *Parser) parseTopLevelItem() *ast.Node {
	tok := p.current
	isConst := p.match(token.Const)
	retTyp := p.parseType()

	nameTok := p.expect(token.Ident, "expected an identifier")
	if !isConst && p.check(token.LParen) {
		return p.parseFuncDef(tok, nameTok.Value, retTyp)
	}
	return p.parseDeclTail(tok, isConst, retTyp, nameTok)
}

// rejectVoidVariable aborts with the "void variable" semantic error
// spec.md's declaration rules name whenever a non-function declarator
// is given void type.
func (p *Parser) rejectVoidVariable(nameTok token.Token, typ *types.Type) {
	if typ.Kind() == types.Void {
		diag.Error(nameTok, "variable '%s' declared void", nameTok.Value)
	}
}

func (p *Parser) parseFuncDef(tok token.Token, name string, retTyp *types.Type) *ast.Node {
	p.expect(token.LParen, "expected '(' after function name")
	var params []*ast.Node
	if !p.check(token.RParen) {
		for {
			params = append(params, p.parseParam())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen, "expected ')' after parameter list")
	body := p.parseBlock()
	return ast.NewFuncDef(tok, name, params, retTyp, body)
}

// parseParam parses `int name`, `int name[]`, or `int name[][d2][d3]...`.
// The bracket dimensions after the first (always-empty) pair are kept as
// raw expressions; CalcValue resolves them during lowering.
func (p *Parser) parseParam() *ast.Node {
	tok := p.current
	p.expect(token.Int, "expected 'int' in parameter declaration")
	nameTok := p.expect(token.Ident, "expected a parameter name")

	if !p.match(token.LBracket) {
		return ast.NewFuncParam(tok, nameTok.Value, false, nil)
	}
	p.expect(token.RBracket, "expected ']' in array parameter (first dimension is always empty)")

	var dims []*ast.Node
	for p.match(token.LBracket) {
		dims = append(dims, p.parseExpr())
		p.expect(token.RBracket, "expected ']' after array dimension")
	}
	return ast.NewFuncParam(tok, nameTok.Value, true, dims)
}

// parseDeclTail continues a declaration after `[const] int Name` has
// already been consumed, parsing Name's own definition tail and any
// further comma-separated declarators, terminated by ';'.
func (p *Parser) parseDeclTail(tok token.Token, isConst bool, typ *types.Type, nameTok token.Token) *ast.Node {
	p.rejectVoidVariable(nameTok, typ)
	var defs []*ast.Node
	defs = append(defs, p.parseDeclaratorTail(nameTok, isConst))
	for p.match(token.Comma) {
		nt := p.expect(token.Ident, "expected an identifier")
		p.rejectVoidVariable(nt, typ)
		defs = append(defs, p.parseDeclaratorTail(nt, isConst))
	}
	p.expect(token.Semi, "expected ';' after declaration")
	return ast.NewDecl(tok, isConst, defs)
}

// parseDeclaratorTail parses what follows an already-consumed
// identifier in a declarator: either array dimensions or nothing, then
// an optional initialiser.
func (p *Parser) parseDeclaratorTail(nameTok token.Token, isConst bool) *ast.Node {
	if p.check(token.LBracket) {
		var dims []*ast.Node
		for p.match(token.LBracket) {
			dims = append(dims, p.parseExpr())
			p.expect(token.RBracket, "expected ']' after array dimension")
		}
		var init *ast.Node
		if p.match(token.Assign) {
			init = p.parseInitVal()
		} else if isConst {
			diag.Error(nameTok, "const array '%s' requires an initialiser", nameTok.Value)
		}
		return ast.NewArrayDef(nameTok, nameTok.Value, dims, init)
	}

	var init *ast.Node
	if p.match(token.Assign) {
		init = p.parseInitVal()
	} else if isConst {
		diag.Error(nameTok, "const '%s' requires an initialiser", nameTok.Value)
	}
	return ast.NewScalarDef(nameTok, nameTok.Value, isConst, init)
}

// parseInitVal parses either a scalar expression or a braced,
// recursively nested list of initialisers.
func (p *Parser) parseInitVal() *ast.Node {
	tok := p.current
	if p.match(token.LBrace) {
		var list []*ast.Node
		if !p.check(token.RBrace) {
			for {
				list = append(list, p.parseInitVal())
				if !p.match(token.Comma) {
					break
				}
			}
		}
		p.expect(token.RBrace, "expected '}' after initialiser list")
		return ast.NewInitList(tok, list)
	}
	return ast.NewInitExpr(tok, p.parseExpr())
}

func (p *Parser) parseBlock() *ast.Node {
	tok := p.expect(token.LBrace, "expected '{' to open a block")
	var items []*ast.Node
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		items = append(items, p.parseBlockItem())
	}
	p.expect(token.RBrace, "expected '}' to close a block")
	return ast.NewBlock(tok, items, true)
}

func (p *Parser) parseBlockItem() *ast.Node {
	if p.check(token.Const) || p.check(token.Int) || p.check(token.Void) {
		return p.parseLocalDecl()
	}
	return p.parseStmt()
}

func (p *Parser) parseLocalDecl() *ast.Node {
	tok := p.current
	isConst := p.match(token.Const)
	typ := p.parseType()
	nameTok := p.expect(token.Ident, "expected an identifier")
	return p.parseDeclTail(tok, isConst, typ, nameTok)
}

func (p *Parser) parseStmt() *ast.Node {
	switch p.current.Type {
	case token.LBrace:
		return p.parseBlock()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Break:
		tok := p.current
		p.advance()
		p.expect(token.Semi, "expected ';' after 'break'")
		return ast.NewBreak(tok)
	case token.Continue:
		tok := p.current
		p.advance()
		p.expect(token.Semi, "expected ';' after 'continue'")
		return ast.NewContinue(tok)
	case token.Return:
		return p.parseReturn()
	case token.Semi:
		tok := p.current
		p.advance()
		return ast.NewExprStmt(tok, nil)
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseIf() *ast.Node {
	tok := p.expect(token.If, "expected 'if'")
	p.expect(token.LParen, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.expect(token.RParen, "expected ')' after condition")
	then := p.parseStmt()
	var els *ast.Node
	if p.match(token.Else) {
		els = p.parseStmt()
	}
	return ast.NewIf(tok, cond, then, els)
}

func (p *Parser) parseWhile() *ast.Node {
	tok := p.expect(token.While, "expected 'while'")
	p.expect(token.LParen, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.expect(token.RParen, "expected ')' after condition")
	body := p.parseStmt()
	return ast.NewWhile(tok, cond, body)
}

func (p *Parser) parseReturn() *ast.Node {
	tok := p.expect(token.Return, "expected 'return'")
	var expr *ast.Node
	if !p.check(token.Semi) {
		expr = p.parseExpr()
	}
	p.expect(token.Semi, "expected ';' after return statement")
	return ast.NewReturn(tok, expr)
}

// parseSimpleStmt disambiguates an assignment from a bare expression
// statement: both start with an expression, but an assignment's LHS
// must itself be an LVal.
func (p *Parser) parseSimpleStmt() *ast.Node {
	tok := p.current
	expr := p.parseExpr()
	if p.match(token.Assign) {
		if expr.Type != ast.LVal {
			diag.Error(tok, "left-hand side of assignment is not an lvalue")
		}
		rhs := p.parseExpr()
		p.expect(token.Semi, "expected ';' after assignment")
		return ast.NewAssign(tok, expr, rhs)
	}
	p.expect(token.Semi, "expected ';' after expression")
	return ast.NewExprStmt(tok, expr)
}

// --- Expressions, precedence-climbing from lowest to highest binding ---
//
//	||  (lowest)
//	&&
//	==  !=
//	<  >  <=  >=
//	+  -
//	*  /  %
//	unary ! - +
//	primary (highest)

func (p *Parser) parseExpr() *ast.Node { return p.parseLogicalOr() }

func (p *Parser) parseLogicalOr() *ast.Node {
	left := p.parseLogicalAnd()
	for p.check(token.OrOr) {
		tok := p.current
		p.advance()
		right := p.parseLogicalAnd()
		left = ast.NewBinary(tok, ast.OpOr, left, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() *ast.Node {
	left := p.parseEquality()
	for p.check(token.AndAnd) {
		tok := p.current
		p.advance()
		right := p.parseEquality()
		left = ast.NewBinary(tok, ast.OpAnd, left, right)
	}
	return left
}

func (p *Parser) parseEquality() *ast.Node {
	left := p.parseRelational()
	for p.check(token.EqEq) || p.check(token.Neq) {
		tok := p.current
		op := ast.OpEq
		if tok.Type == token.Neq {
			op = ast.OpNe
		}
		p.advance()
		right := p.parseRelational()
		left = ast.NewBinary(tok, op, left, right)
	}
	return left
}

func (p *Parser) parseRelational() *ast.Node {
	left := p.parseAdditive()
	for p.check(token.Lt) || p.check(token.Gt) || p.check(token.Le) || p.check(token.Ge) {
		tok := p.current
		var op ast.BinaryOp
		switch tok.Type {
		case token.Lt:
			op = ast.OpLt
		case token.Gt:
			op = ast.OpGt
		case token.Le:
			op = ast.OpLe
		case token.Ge:
			op = ast.OpGe
		}
		p.advance()
		right := p.parseAdditive()
		left = ast.NewBinary(tok, op, left, right)
	}
	return left
}

func (p *Parser) parseAdditive() *ast.Node {
	left := p.parseMultiplicative()
	for p.check(token.Plus) || p.check(token.Minus) {
		tok := p.current
		op := ast.OpAdd
		if tok.Type == token.Minus {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinary(tok, op, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() *ast.Node {
	left := p.parseUnary()
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.Percent) {
		tok := p.current
		var op ast.BinaryOp
		switch tok.Type {
		case token.Star:
			op = ast.OpMul
		case token.Slash:
			op = ast.OpDiv
		case token.Percent:
			op = ast.OpMod
		}
		p.advance()
		right := p.parseUnary()
		left = ast.NewBinary(tok, op, left, right)
	}
	return left
}

func (p *Parser) parseUnary() *ast.Node {
	switch p.current.Type {
	case token.Plus:
		p.advance()
		return p.parseUnary()
	case token.Minus:
		tok := p.current
		p.advance()
		return ast.NewUnary(tok, ast.OpNeg, p.parseUnary())
	case token.Not:
		tok := p.current
		p.advance()
		return ast.NewUnary(tok, ast.OpNot, p.parseUnary())
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.current
	switch tok.Type {
	case token.LParen:
		p.advance()
		expr := p.parseExpr()
		p.expect(token.RParen, "expected ')' after expression")
		return expr
	case token.Number:
		p.advance()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			diag.Error(tok, "invalid integer literal '%s'", tok.Value)
		}
		return ast.NewNumber(tok, int32(v))
	case token.Ident:
		p.advance()
		if p.match(token.LParen) {
			return p.parseCallArgs(tok)
		}
		var indices []*ast.Node
		for p.match(token.LBracket) {
			indices = append(indices, p.parseExpr())
			p.expect(token.RBracket, "expected ']' after index expression")
		}
		return ast.NewLVal(tok, tok.Value, indices)
	default:
		diag.Error(tok, "expected an expression")
		p.advance()
		return ast.NewNumber(tok, 0)
	}
}

func (p *Parser) parseCallArgs(tok token.Token) *ast.Node {
	var args []*ast.Node
	if !p.check(token.RParen) {
		for {
			args = append(args, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen, "expected ')' after call arguments")
	return ast.NewCall(tok, tok.Value, args)
}
