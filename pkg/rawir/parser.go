package rawir

import (
	"fmt"
	"strconv"
)

// Handle owns a parsed Program. Its lifetime must strictly enclose all
// accesses to the RawProgramView it returns (spec.md §5).
type Handle struct {
	prog *Program
}

// Parse turns KoopaIR text into a Handle. This is the external
// collaborator's parse_ir_text of spec.md §6.4.
func Parse(text string) (*Handle, error) {
	p := &irParser{lex: newIRLexer(text), locals: make(map[string]*Value)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &Handle{prog: prog}, nil
}

// RawProgramView returns the parsed program. Valid only until Release.
func (h *Handle) RawProgramView() *Program { return h.prog }

// Release drops the handle's reference to the parsed program.
func (h *Handle) Release() { h.prog = nil }

type irParser struct {
	lex     *irLexer
	current tok

	globals map[string]*Value
	locals  map[string]*Value // reset per function
}

func (p *irParser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.current = t
	return nil
}

func (p *irParser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("ir text line %d: %s", p.current.line, fmt.Sprintf(format, args...))
}

func (p *irParser) expectKind(k tokKind, what string) (tok, error) {
	if p.current.kind != k {
		return tok{}, p.errf("expected %s", what)
	}
	t := p.current
	return t, p.advance()
}

func (p *irParser) expectIdent(word string) error {
	if p.current.kind != tIdent || p.current.text != word {
		return p.errf("expected '%s'", word)
	}
	return p.advance()
}

func (p *irParser) checkIdent(word string) bool {
	return p.current.kind == tIdent && p.current.text == word
}

func (p *irParser) parseProgram() (*Program, error) {
	prog := &Program{}
	p.globals = make(map[string]*Value)
	for p.current.kind != tEOF {
		switch {
		case p.checkIdent("decl"):
			fn, err := p.parseDecl()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
		case p.checkIdent("global"):
			g, err := p.parseGlobal()
			if err != nil {
				return nil, err
			}
			prog.Globals = append(prog.Globals, g)
		case p.checkIdent("fun"):
			fn, err := p.parseFunDef()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
		default:
			return nil, p.errf("expected 'decl', 'global', or 'fun'")
		}
	}
	return prog, nil
}

func (p *irParser) parseType() (ResultType, error) {
	switch {
	case p.current.kind == tIdent && p.current.text == "i32":
		if err := p.advance(); err != nil {
			return ResultType{}, err
		}
		return ResultType{Kind: RInt32}, nil
	case p.current.kind == tStar:
		if err := p.advance(); err != nil {
			return ResultType{}, err
		}
		base, err := p.parseType()
		if err != nil {
			return ResultType{}, err
		}
		return ResultType{Kind: RPointer, Base: &base}, nil
	case p.current.kind == tLBracket:
		if err := p.advance(); err != nil {
			return ResultType{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return ResultType{}, err
		}
		if _, err := p.expectKind(tComma, "','"); err != nil {
			return ResultType{}, err
		}
		nTok, err := p.expectKind(tNumber, "array length")
		if err != nil {
			return ResultType{}, err
		}
		n, _ := strconv.Atoi(nTok.text)
		if _, err := p.expectKind(tRBracket, "']'"); err != nil {
			return ResultType{}, err
		}
		return ResultType{Kind: RArray, Elem: &elem, Len: n}, nil
	}
	return ResultType{}, p.errf("expected a type")
}

func (p *irParser) parseDecl() (*Function, error) {
	if err := p.expectIdent("decl"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(tGlobalName, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tLParen, "'('"); err != nil {
		return nil, err
	}
	var paramTypes []ResultType
	if p.current.kind != tRParen {
		for {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			paramTypes = append(paramTypes, t)
			if p.current.kind != tComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expectKind(tRParen, "')'"); err != nil {
		return nil, err
	}
	ret := ResultType{Kind: RUnit}
	if p.current.kind == tColon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	fn := &Function{Name: nameTok.text[1:], ReturnType: ret, IsDecl: true}
	for i, t := range paramTypes {
		fn.Params = append(fn.Params, &Value{Kind: KFuncArgRef, ArgIndex: i, Type: t})
	}
	return fn, nil
}

func (p *irParser) parseGlobal() (*Value, error) {
	if err := p.expectIdent("global"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(tGlobalName, "global name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tEquals, "'='"); err != nil {
		return nil, err
	}
	if err := p.expectIdent("alloc"); err != nil {
		return nil, err
	}
	pointee, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tComma, "','"); err != nil {
		return nil, err
	}
	init, err := p.parseGlobalInit(pointee)
	if err != nil {
		return nil, err
	}
	g := &Value{
		Name:  nameTok.text,
		Kind:  KGlobalAlloc,
		Type:  ResultType{Kind: RPointer, Base: &pointee},
		Alloc: pointee,
		Init:  init,
	}
	p.globals[nameTok.text] = g
	return g, nil
}

func (p *irParser) parseGlobalInit(typ ResultType) (*Value, error) {
	switch {
	case p.checkIdent("zeroinit"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Value{Kind: KZeroInit, Type: typ}, nil
	case p.current.kind == tNumber:
		n, _ := strconv.Atoi(p.current.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Value{Kind: KInteger, Type: ResultType{Kind: RInt32}, IntValue: int32(n)}, nil
	case p.current.kind == tLBrace:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var elems []*Value
		elemTyp := ResultType{Kind: RInt32}
		if typ.Kind == RArray {
			elemTyp = *typ.Elem
		}
		if p.current.kind != tRBrace {
			for {
				v, err := p.parseGlobalInit(elemTyp)
				if err != nil {
					return nil, err
				}
				elems = append(elems, v)
				if p.current.kind != tComma {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expectKind(tRBrace, "'}'"); err != nil {
			return nil, err
		}
		return &Value{Kind: KAggregate, Type: typ, Elems: elems}, nil
	}
	return nil, p.errf("expected an initialiser")
}

func (p *irParser) parseFunDef() (*Function, error) {
	if err := p.expectIdent("fun"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(tGlobalName, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tLParen, "'('"); err != nil {
		return nil, err
	}

	p.locals = make(map[string]*Value)
	var params []*Value
	if p.current.kind != tRParen {
		for i := 0; ; i++ {
			pname, err := p.expectKind(tGlobalName, "parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expectKind(tColon, "':'"); err != nil {
				return nil, err
			}
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			arg := &Value{Name: pname.text, Kind: KFuncArgRef, ArgIndex: i, Type: t}
			params = append(params, arg)
			p.locals[pname.text] = arg
			if p.current.kind != tComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expectKind(tRParen, "')'"); err != nil {
		return nil, err
	}

	ret := ResultType{Kind: RUnit}
	if p.current.kind == tColon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectKind(tLBrace, "'{'"); err != nil {
		return nil, err
	}

	fn := &Function{Name: nameTok.text[1:], Params: params, ReturnType: ret}
	for p.current.kind != tRBrace {
		bb, err := p.parseBasicBlock()
		if err != nil {
			return nil, err
		}
		fn.BasicBlocks = append(fn.BasicBlocks, bb)
	}
	if _, err := p.expectKind(tRBrace, "'}'"); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *irParser) parseBasicBlock() (*BasicBlock, error) {
	labelTok, err := p.expectKind(tLocalName, "label")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tColon, "':'"); err != nil {
		return nil, err
	}
	bb := &BasicBlock{Name: labelTok.text}
	for p.current.kind != tRBrace && !p.isLabelStart() {
		inst, err := p.parseInst()
		if err != nil {
			return nil, err
		}
		bb.Insts = append(bb.Insts, inst)
	}
	return bb, nil
}

// isLabelStart reports whether the current token begins a new label
// (%name:) rather than an instruction. Needed because both a label and
// an assignment-form instruction start with a %name token.
func (p *irParser) isLabelStart() bool {
	if p.current.kind != tLocalName {
		return false
	}
	saved := *p.lex
	t, err := p.lex.next()
	*p.lex = saved
	return err == nil && t.kind == tColon
}

func (p *irParser) parseInst() (*Value, error) {
	// Assignment forms: <name> = <rhs>. A name token can only ever start
	// an instruction this way; no other instruction form begins with
	// '@' or '%'.
	if p.current.kind == tLocalName || p.current.kind == tGlobalName {
		name := p.current.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tEquals, "'='"); err != nil {
			return nil, err
		}
		v, err := p.parseRHS(name)
		if err != nil {
			return nil, err
		}
		p.bind(name, v)
		return v, nil
	}

	switch {
	case p.checkIdent("store"):
		return p.parseStore()
	case p.checkIdent("br"):
		return p.parseBranch()
	case p.checkIdent("jump"):
		return p.parseJump()
	case p.checkIdent("ret"):
		return p.parseReturn()
	case p.checkIdent("call"):
		return p.parseCall("")
	}
	return nil, p.errf("expected an instruction")
}

func (p *irParser) bind(name string, v *Value) {
	v.Name = name
	p.locals[name] = v
}

func (p *irParser) parseRHS(name string) (*Value, error) {
	switch {
	case p.checkIdent("alloc"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KAlloc, Type: ResultType{Kind: RPointer, Base: &t}, Alloc: t}, nil
	case p.checkIdent("load"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		src, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		resTyp := ResultType{Kind: RInt32}
		if src.Type.Kind == RPointer {
			resTyp = *src.Type.Base
		}
		return &Value{Kind: KLoad, Src: src, Type: resTyp}, nil
	case p.checkIdent("getelemptr"):
		return p.parseGetPtrLike(KGetElemPtr)
	case p.checkIdent("getptr"):
		return p.parseGetPtrLike(KGetPtr)
	case p.checkIdent("call"):
		return p.parseCall(name)
	}
	return p.parseBinary()
}

func (p *irParser) parseGetPtrLike(kind ValueKind) (*Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	src, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tComma, "','"); err != nil {
		return nil, err
	}
	idx, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	resTyp := src.Type
	if kind == KGetElemPtr && src.Type.Kind == RPointer && src.Type.Base.Kind == RArray {
		resTyp = ResultType{Kind: RPointer, Base: src.Type.Base.Elem}
	} else if kind == KGetPtr && src.Type.Kind == RPointer {
		resTyp = ResultType{Kind: RPointer, Base: src.Type.Base}
	}
	return &Value{Kind: kind, Src: src, Index: idx, Type: resTyp}, nil
}

func (p *irParser) parseBinary() (*Value, error) {
	if p.current.kind != tIdent {
		return nil, p.errf("expected a binary operator")
	}
	op, ok := binOpNames[p.current.text]
	if !ok {
		return nil, p.errf("unknown operator '%s'", p.current.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tComma, "','"); err != nil {
		return nil, err
	}
	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KBinary, Op: op, Lhs: lhs, Rhs: rhs, Type: ResultType{Kind: RInt32}}, nil
}

func (p *irParser) parseStore() (*Value, error) {
	if err := p.expectIdent("store"); err != nil {
		return nil, err
	}
	val, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tComma, "','"); err != nil {
		return nil, err
	}
	dest, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KStore, StoreVal: val, StoreDest: dest, Type: ResultType{Kind: RUnit}}, nil
}

func (p *irParser) parseBranch() (*Value, error) {
	if err := p.expectIdent("br"); err != nil {
		return nil, err
	}
	cond, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tComma, "','"); err != nil {
		return nil, err
	}
	trueLbl, err := p.expectKind(tLocalName, "true-branch label")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tComma, "','"); err != nil {
		return nil, err
	}
	falseLbl, err := p.expectKind(tLocalName, "false-branch label")
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KBranch, Cond: cond, TrueBB: trueLbl.text, FalseBB: falseLbl.text, Type: ResultType{Kind: RUnit}}, nil
}

func (p *irParser) parseJump() (*Value, error) {
	if err := p.expectIdent("jump"); err != nil {
		return nil, err
	}
	target, err := p.expectKind(tLocalName, "jump target")
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KJump, JumpTarget: target.text, Type: ResultType{Kind: RUnit}}, nil
}

func (p *irParser) parseReturn() (*Value, error) {
	if err := p.expectIdent("ret"); err != nil {
		return nil, err
	}
	hasOperand := false
	switch p.current.kind {
	case tNumber, tGlobalName:
		hasOperand = true
	case tLocalName:
		hasOperand = !p.isLabelStart()
	}
	if !hasOperand {
		return &Value{Kind: KReturn, Type: ResultType{Kind: RUnit}}, nil
	}
	v, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KReturn, RetVal: v, Type: ResultType{Kind: RUnit}}, nil
}

func (p *irParser) parseCall(assignedName string) (*Value, error) {
	if err := p.expectIdent("call"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(tGlobalName, "callee name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tLParen, "'('"); err != nil {
		return nil, err
	}
	var args []*Value
	if p.current.kind != tRParen {
		for {
			a, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.current.kind != tComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expectKind(tRParen, "')'"); err != nil {
		return nil, err
	}
	resTyp := ResultType{Kind: RUnit}
	if assignedName != "" {
		resTyp = ResultType{Kind: RInt32}
	}
	return &Value{Kind: KCall, Callee: nameTok.text[1:], Args: args, Type: resTyp}, nil
}

func (p *irParser) parseOperand() (*Value, error) {
	switch p.current.kind {
	case tNumber:
		n, _ := strconv.Atoi(p.current.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Value{Kind: KInteger, IntValue: int32(n), Type: ResultType{Kind: RInt32}}, nil
	case tGlobalName:
		name := p.current.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		// A function-scoped parameter shadows a same-named global within
		// the textual frame of its own function.
		if v, ok := p.locals[name]; ok {
			return v, nil
		}
		if v, ok := p.globals[name]; ok {
			return v, nil
		}
		return &Value{Name: name, Kind: KGlobalAlloc, Type: ResultType{Kind: RPointer}}, nil
	case tLocalName:
		name := p.current.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if v, ok := p.locals[name]; ok {
			return v, nil
		}
		return nil, p.errf("reference to undefined value '%s'", name)
	}
	return nil, p.errf("expected an operand")
}
