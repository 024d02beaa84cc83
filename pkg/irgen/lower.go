package irgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/srclang/srcc/pkg/ast"
	"github.com/srclang/srcc/pkg/diag"
	"github.com/srclang/srcc/pkg/symtab"
	"github.com/srclang/srcc/pkg/types"
)

// LowerProgram lowers a folded CompUnit into KoopaIR text and returns
// the builder's finished output buffer.
func LowerProgram(root *ast.Node) string {
	b := NewBuilder()
	lowerCompUnit(b, root)
	return b.Output()
}

func lowerCompUnit(b *Builder, node *ast.Node) {
	d := node.Data.(ast.CompUnitNode)
	for i, item := range d.Items {
		if i > 0 {
			b.Append("\n")
		}
		lowerTopLevelItem(b, item)
	}
}

func lowerTopLevelItem(b *Builder, node *ast.Node) {
	switch node.Type {
	case ast.FuncDef:
		lowerFuncDef(b, node)
	case ast.FuncDecl:
		lowerFuncDecl(b, node)
	case ast.Decl:
		lowerDecl(b, node)
	default:
		diag.Fatal("unexpected top-level item")
	}
}

// --- FuncDef / FuncDecl ---

func lowerFuncDecl(b *Builder, node *ast.Node) {
	d := node.Data.(ast.FuncDeclNode)
	parts := make([]string, len(d.ParamTypes))
	for i, t := range d.ParamTypes {
		parts[i] = t.RenderIR()
	}
	ret := ""
	if d.ReturnType.Kind() != types.Void {
		ret = ": " + d.ReturnType.RenderIR()
	}
	b.Append(fmt.Sprintf("decl @%s(%s)%s\n", d.Name, strings.Join(parts, ", "), ret))

	if err := b.Table().DefineGlobal(d.Name, "@"+d.Name, d.ReturnType, symtab.Func, false, 0); err != nil {
		diag.Error(node.Tok, "%s", err.Error())
	}
}

func lowerFuncDef(b *Builder, node *ast.Node) {
	d := node.Data.(ast.FuncDefNode)
	b.resetFuncCounters()

	// Resolve parameter types now, with every previously declared global
	// const visible in the builder's symbol table.
	paramTypes := make([]*types.Type, len(d.Params))
	for i, p := range d.Params {
		paramTypes[i] = resolveParamType(b, p)
	}

	if err := b.Table().DefineGlobal(d.Name, "@"+d.Name, d.ReturnType, symtab.Func, false, 0); err != nil {
		diag.Error(node.Tok, "%s", err.Error())
	}

	sigParts := make([]string, len(d.Params))
	for i, p := range d.Params {
		pd := p.Data.(ast.FuncParamNode)
		sigParts[i] = fmt.Sprintf("@%s: %s", pd.Name, paramTypes[i].RenderIR())
	}
	ret := ""
	if d.ReturnType.Kind() != types.Void {
		ret = ": " + d.ReturnType.RenderIR()
	}
	b.Append(fmt.Sprintf("fun @%s(%s)%s {\n", d.Name, strings.Join(sigParts, ", "), ret))

	b.Table().EnterScope()
	b.Append(fmt.Sprintf("%%entry_%s:\n", d.Name))

	for i, p := range d.Params {
		pd := p.Data.(ast.FuncParamNode)
		addr := b.NewLocal(pd.Name)
		b.Append(fmt.Sprintf("  %s = alloc %s\n", addr, paramTypes[i].RenderIR()))
		b.Append(fmt.Sprintf("  store @%s, %s\n", pd.Name, addr))
		if err := b.Table().Define(pd.Name, addr, paramTypes[i], symtab.Var, false, 0); err != nil {
			diag.Error(p.Tok, "%s", err.Error())
		}
	}

	lowerBlock(b, d.Body, false)

	if !b.IsBlockClosed() {
		if d.ReturnType.Kind() == types.Void {
			b.Append("  ret\n")
		} else {
			b.Append("  ret 0\n")
		}
		b.SetBlockClosed()
	}

	b.Table().ExitScope()
	b.Append("}\n")
}

// resolveParamType computes the decayed pointer type of a FuncParamNode,
// constant-evaluating its dimension expressions now that prior globals
// are visible.
func resolveParamType(b *Builder, p *ast.Node) *types.Type {
	pd := p.Data.(ast.FuncParamNode)
	if !pd.IsPointer {
		return types.TInt
	}
	elem := types.TInt
	for i := len(pd.Dims) - 1; i >= 0; i-- {
		n, err := ast.CalcValue(pd.Dims[i], b.Table())
		if err != nil {
			diag.Error(pd.Dims[i].Tok, "%s", err.Error())
		}
		if n <= 0 {
			diag.Error(pd.Dims[i].Tok, "array dimension must be positive")
		}
		elem = types.NewArray(elem, uint32(n))
	}
	return types.NewPointer(elem)
}

// --- Decl / ScalarDef / ArrayDef ---

func lowerDecl(b *Builder, node *ast.Node) {
	d := node.Data.(ast.DeclNode)
	for _, def := range d.Defs {
		switch def.Type {
		case ast.ScalarDef:
			lowerScalarDef(b, def)
		case ast.ArrayDef:
			lowerArrayDef(b, def)
		default:
			diag.Fatal("unexpected declarator")
		}
	}
}

func lowerScalarDef(b *Builder, node *ast.Node) {
	d := node.Data.(ast.ScalarDefNode)
	global := b.Table().IsGlobalScope()

	if d.IsConst {
		v, err := ast.CalcValue(d.Init.Data.(ast.InitValNode).Expr, b.Table())
		if err != nil {
			diag.Error(node.Tok, "%s", err.Error())
		}
		defineConst(b, node, d.Name, v, global)
		return
	}

	if global {
		addr := "@" + d.Name
		init := "zeroinit"
		if d.Init != nil {
			v, err := ast.CalcValue(d.Init.Data.(ast.InitValNode).Expr, b.Table())
			if err != nil {
				diag.Error(node.Tok, "%s", err.Error())
			}
			init = strconv.FormatInt(int64(v), 10)
		}
		b.Append(fmt.Sprintf("global %s = alloc i32, %s\n", addr, init))
		defineVar(b, node, d.Name, addr, types.TInt, true)
		return
	}

	addr := b.NewLocal(d.Name)
	b.Append(fmt.Sprintf("  %s = alloc i32\n", addr))
	defineVar(b, node, d.Name, addr, types.TInt, false)
	if d.Init != nil {
		val := lowerExpr(b, d.Init.Data.(ast.InitValNode).Expr)
		b.Append(fmt.Sprintf("  store %s, %s\n", val, addr))
	}
}

func defineConst(b *Builder, node *ast.Node, name string, v int32, global bool) {
	var err error
	if global {
		err = b.Table().DefineGlobal(name, "", types.TInt, symtab.Var, true, v)
	} else {
		err = b.Table().Define(name, "", types.TInt, symtab.Var, true, v)
	}
	if err != nil {
		diag.Error(node.Tok, "%s", err.Error())
	}
}

func defineVar(b *Builder, node *ast.Node, name, irName string, typ *types.Type, global bool) {
	var err error
	if global {
		err = b.Table().DefineGlobal(name, irName, typ, symtab.Var, false, 0)
	} else {
		err = b.Table().Define(name, irName, typ, symtab.Var, false, 0)
	}
	if err != nil {
		diag.Error(node.Tok, "%s", err.Error())
	}
}

func lowerArrayDef(b *Builder, node *ast.Node) {
	d := node.Data.(ast.ArrayDefNode)
	global := b.Table().IsGlobalScope()

	dims := make([]int32, len(d.Dims))
	for i, expr := range d.Dims {
		v, err := ast.CalcValue(expr, b.Table())
		if err != nil {
			diag.Error(expr.Tok, "%s", err.Error())
		}
		if v <= 0 {
			diag.Error(expr.Tok, "array dimension must be positive")
		}
		dims[i] = v
	}

	elemTyp := types.TInt
	for i := len(dims) - 1; i >= 0; i-- {
		elemTyp = types.NewArray(elemTyp, uint32(dims[i]))
	}

	if global {
		addr := "@" + d.Name
		defineVar(b, node, d.Name, addr, elemTyp, true)
		if d.Init == nil {
			b.Append(fmt.Sprintf("global %s = alloc %s, zeroinit\n", addr, elemTyp.RenderIR()))
			return
		}
		flat := flattenInitList(elemTyp, d.Init, node, func(expr *ast.Node) string {
			v, err := ast.CalcValue(expr, b.Table())
			if err != nil {
				diag.Error(expr.Tok, "%s", err.Error())
			}
			return strconv.FormatInt(int64(v), 10)
		})
		lit := renderAggregateLiteral(elemTyp, flat)
		b.Append(fmt.Sprintf("global %s = alloc %s, %s\n", addr, elemTyp.RenderIR(), lit))
		return
	}

	addr := b.NewLocal(d.Name)
	b.Append(fmt.Sprintf("  %s = alloc %s\n", addr, elemTyp.RenderIR()))
	defineVar(b, node, d.Name, addr, elemTyp, false)
	if d.Init == nil {
		return
	}
	flat := flattenInitList(elemTyp, d.Init, node, func(expr *ast.Node) string {
		return lowerExpr(b, expr)
	})
	storeFlatIntoArray(b, addr, elemTyp, flat)
}

// renderAggregateLiteral renders a flat, row-major slice of operand
// strings as a nested {...} aggregate literal matching typ's shape.
func renderAggregateLiteral(typ *types.Type, flat []string) string {
	if typ.Kind() != types.Array {
		return flat[0]
	}
	elemSize := scalarCount(typ.Target())
	n := int(typ.Len())
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = renderAggregateLiteral(typ.Target(), flat[i*elemSize:(i+1)*elemSize])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// storeFlatIntoArray walks addr's array tree issuing getelemptr/store
// pairs for each leaf of a local array's flattened initialiser.
func storeFlatIntoArray(b *Builder, addr string, typ *types.Type, flat []string) {
	storeFlatIntoArrayAt(b, addr, typ, flat)
}

func storeFlatIntoArrayAt(b *Builder, addr string, typ *types.Type, flat []string) {
	if typ.Kind() != types.Array {
		b.Append(fmt.Sprintf("  store %s, %s\n", flat[0], addr))
		return
	}
	elemSize := scalarCount(typ.Target())
	n := int(typ.Len())
	for i := 0; i < n; i++ {
		p := b.NewValue()
		b.Append(fmt.Sprintf("  %s = getelemptr %s, %d\n", p, addr, i))
		storeFlatIntoArrayAt(b, p, typ.Target(), flat[i*elemSize:(i+1)*elemSize])
	}
}

func scalarCount(typ *types.Type) int {
	if typ.Kind() != types.Array {
		return 1
	}
	return int(typ.Len()) * scalarCount(typ.Target())
}

// flattenInitList implements the initialiser-list flattening algorithm
// of spec.md §4.3.4: produce a flat vector of operand strings in
// row-major order, exactly sized to typ's total scalar capacity,
// padding missing trailing elements with "0".
func flattenInitList(typ *types.Type, init *ast.Node, declNode *ast.Node, evalLeaf func(*ast.Node) string) []string {
	total := scalarCount(typ)
	out := make([]string, 0, total)
	flattenInto(&out, typ, init, declNode, evalLeaf)
	for len(out) < total {
		out = append(out, "0")
	}
	if len(out) > total {
		diag.Error(declNode.Tok, "excess elements in initialiser")
	}
	return out
}

func flattenInto(out *[]string, typ *types.Type, init *ast.Node, declNode *ast.Node, evalLeaf func(*ast.Node) string) {
	d := init.Data.(ast.InitValNode)
	if !d.IsList {
		if typ.Kind() == types.Array {
			diag.Error(init.Tok, "scalar initialiser used where an aggregate was expected")
		}
		*out = append(*out, evalLeaf(d.Expr))
		return
	}

	if typ.Kind() != types.Array {
		// A braced sub-list at a scalar slot: only a single scalar entry
		// is permitted, matching C's `{x}` brace-elision.
		if len(d.List) > 1 {
			diag.Error(init.Tok, "excess elements in initialiser")
		}
		if len(d.List) == 1 {
			flattenInto(out, typ, d.List[0], declNode, evalLeaf)
		}
		return
	}

	elemTyp := typ.Target()
	elemSize := scalarCount(elemTyp)
	n := int(typ.Len())
	start := len(*out)
	for _, item := range d.List {
		cursor := len(*out) - start
		if cursor >= n*elemSize {
			diag.Error(item.Tok, "excess elements in initialiser")
		}
		itemData := item.Data.(ast.InitValNode)
		if itemData.IsList {
			// A nested brace forces alignment to the next sub-aggregate.
			if cursor%elemSize != 0 {
				pad := elemSize - cursor%elemSize
				for i := 0; i < pad; i++ {
					*out = append(*out, "0")
				}
			}
			before := len(*out)
			flattenInto(out, elemTyp, item, declNode, evalLeaf)
			for len(*out)-before < elemSize {
				*out = append(*out, "0")
			}
		} else {
			*out = append(*out, evalLeaf(itemData.Expr))
		}
	}
}

// --- Block / If / While / Break / Continue / Return / ExprStmt / Assign ---

func lowerBlock(b *Builder, node *ast.Node, createsScope bool) {
	d := node.Data.(ast.BlockNode)
	if createsScope && d.CreatesScope {
		b.Table().EnterScope()
		defer b.Table().ExitScope()
	}
	for _, item := range d.Items {
		if b.IsBlockClosed() {
			break
		}
		lowerBlockItem(b, item)
	}
}

func lowerBlockItem(b *Builder, node *ast.Node) {
	switch node.Type {
	case ast.Decl:
		lowerDecl(b, node)
	case ast.Block:
		lowerBlock(b, node, true)
	case ast.If:
		lowerIf(b, node)
	case ast.While:
		lowerWhile(b, node)
	case ast.Break:
		lowerBreak(b, node)
	case ast.Continue:
		lowerContinue(b, node)
	case ast.Return:
		lowerReturn(b, node)
	case ast.Assign:
		lowerAssign(b, node)
	case ast.ExprStmt:
		lowerExprStmt(b, node)
	default:
		diag.Fatal("unexpected statement node")
	}
}

func lowerIf(b *Builder, node *ast.Node) {
	d := node.Data.(ast.IfNode)
	k := b.labelCounter
	b.labelCounter++
	thenLbl := fmt.Sprintf("%%then_%d", k)
	endLbl := fmt.Sprintf("%%end_%d", k)
	elseLbl := fmt.Sprintf("%%else_%d", k)

	cond := lowerExpr(b, d.Cond)
	if d.Else != nil {
		b.Append(fmt.Sprintf("  br %s, %s, %s\n", cond, thenLbl, elseLbl))
	} else {
		b.Append(fmt.Sprintf("  br %s, %s, %s\n", cond, thenLbl, endLbl))
	}

	b.Append(thenLbl + ":\n")
	lowerBlockItem(b, d.Then)
	if !b.IsBlockClosed() {
		b.Append(fmt.Sprintf("  jump %s\n", endLbl))
	}

	if d.Else != nil {
		b.Append(elseLbl + ":\n")
		b.ClearBlockClosed()
		lowerBlockItem(b, d.Else)
		if !b.IsBlockClosed() {
			b.Append(fmt.Sprintf("  jump %s\n", endLbl))
		}
	}

	b.Append(endLbl + ":\n")
	b.ClearBlockClosed()
}

func lowerWhile(b *Builder, node *ast.Node) {
	d := node.Data.(ast.WhileNode)
	k := b.labelCounter
	b.labelCounter++
	entryLbl := fmt.Sprintf("%%while_entry_%d", k)
	bodyLbl := fmt.Sprintf("%%while_body_%d", k)
	endLbl := fmt.Sprintf("%%while_end_%d", k)

	b.PushLoop(entryLbl, endLbl)

	b.Append(fmt.Sprintf("  jump %s\n", entryLbl))
	b.Append(entryLbl + ":\n")
	b.ClearBlockClosed()
	cond := lowerExpr(b, d.Cond)
	b.Append(fmt.Sprintf("  br %s, %s, %s\n", cond, bodyLbl, endLbl))

	b.Append(bodyLbl + ":\n")
	b.ClearBlockClosed()
	lowerBlockItem(b, d.Body)
	if !b.IsBlockClosed() {
		b.Append(fmt.Sprintf("  jump %s\n", entryLbl))
	}

	b.Append(endLbl + ":\n")
	b.ClearBlockClosed()
	b.PopLoop()
}

func lowerBreak(b *Builder, node *ast.Node) {
	lbl := b.BreakTarget(node.Tok)
	b.Append(fmt.Sprintf("  jump %s\n", lbl))
	b.SetBlockClosed()
}

func lowerContinue(b *Builder, node *ast.Node) {
	lbl := b.ContinueTarget(node.Tok)
	b.Append(fmt.Sprintf("  jump %s\n", lbl))
	b.SetBlockClosed()
}

func lowerReturn(b *Builder, node *ast.Node) {
	d := node.Data.(ast.ReturnNode)
	if d.Expr == nil {
		b.Append("  ret\n")
	} else {
		v := lowerExpr(b, d.Expr)
		b.Append(fmt.Sprintf("  ret %s\n", v))
	}
	b.SetBlockClosed()
}

func lowerExprStmt(b *Builder, node *ast.Node) {
	d := node.Data.(ast.ExprStmtNode)
	if d.Expr != nil {
		lowerExpr(b, d.Expr)
	}
}

// lowerAssign implements the LVal address walk of spec.md §4.3.5.
func lowerAssign(b *Builder, node *ast.Node) {
	d := node.Data.(ast.AssignNode)
	lv := d.LVal.Data.(ast.LValNode)

	sym := b.Table().Lookup(lv.Ident)
	if sym == nil {
		diag.Error(d.LVal.Tok, "use of undeclared identifier '%s'", lv.Ident)
	}
	if sym.IsConst {
		diag.Error(d.LVal.Tok, "cannot assign to const '%s'", lv.Ident)
	}

	addr := lvalAddress(b, d.LVal, sym)
	rhs := lowerExpr(b, d.Rhs)
	b.Append(fmt.Sprintf("  store %s, %s\n", rhs, addr))
}

// lvalAddress walks sym's indices, returning the address of the final
// element. The first index of a pointer-typed symbol uses getptr; every
// other index uses getelemptr.
func lvalAddress(b *Builder, lvNode *ast.Node, sym *symtab.Symbol) string {
	d := lvNode.Data.(ast.LValNode)
	addr := sym.IRName
	isPointer := sym.Type.Kind() == types.Pointer
	if isPointer {
		loaded := b.NewValue()
		b.Append(fmt.Sprintf("  %s = load %s\n", loaded, addr))
		addr = loaded
	}
	for i, idx := range d.Indices {
		iv := lowerExpr(b, idx)
		p := b.NewValue()
		if i == 0 && isPointer {
			b.Append(fmt.Sprintf("  %s = getptr %s, %s\n", p, addr, iv))
		} else {
			b.Append(fmt.Sprintf("  %s = getelemptr %s, %s\n", p, addr, iv))
		}
		addr = p
	}
	return addr
}

// --- Expressions ---

func lowerExpr(b *Builder, node *ast.Node) string {
	switch node.Type {
	case ast.Number:
		return strconv.FormatInt(int64(node.Data.(ast.NumberNode).Value), 10)
	case ast.LVal:
		return lowerLValRead(b, node)
	case ast.Unary:
		return lowerUnary(b, node)
	case ast.Binary:
		return lowerBinary(b, node)
	case ast.Call:
		return lowerCall(b, node)
	default:
		diag.Fatal("unexpected expression node")
		return ""
	}
}

func lowerLValRead(b *Builder, node *ast.Node) string {
	d := node.Data.(ast.LValNode)
	sym := b.Table().Lookup(d.Ident)
	if sym == nil {
		diag.Error(node.Tok, "use of undeclared identifier '%s'", d.Ident)
	}

	if len(d.Indices) == 0 && sym.IsConst {
		return strconv.FormatInt(int64(sym.ConstValue), 10)
	}

	isPointer := sym.Type.Kind() == types.Pointer
	if len(d.Indices) == 0 {
		if sym.Type.Kind() == types.Array {
			// Bare array with no indices: decay to a pointer to its first
			// element, per the array-to-pointer decay rule.
			p := b.NewValue()
			b.Append(fmt.Sprintf("  %s = getelemptr %s, 0\n", p, sym.IRName))
			return p
		}
		// Bare scalar or pointer parameter with no indices: load as-is
		// (a pointer param is already decayed, so loading it again does
		// not decay further).
		v := b.NewValue()
		b.Append(fmt.Sprintf("  %s = load %s\n", v, sym.IRName))
		return v
	}

	addr := lvalAddressExpr(b, node, sym)
	resultTyp := elemTypeAfterIndices(sym.Type, len(d.Indices), isPointer)

	if resultTyp.Kind() == types.Array {
		// Partial subscript resolving to a sub-array: decay to a pointer.
		p := b.NewValue()
		b.Append(fmt.Sprintf("  %s = getelemptr %s, 0\n", p, addr))
		return p
	}

	v := b.NewValue()
	b.Append(fmt.Sprintf("  %s = load %s\n", v, addr))
	return v
}

// lvalAddressExpr mirrors lvalAddress for read contexts (no symbol
// mutability check).
func lvalAddressExpr(b *Builder, lvNode *ast.Node, sym *symtab.Symbol) string {
	d := lvNode.Data.(ast.LValNode)
	addr := sym.IRName
	isPointer := sym.Type.Kind() == types.Pointer
	if isPointer {
		loaded := b.NewValue()
		b.Append(fmt.Sprintf("  %s = load %s\n", loaded, addr))
		addr = loaded
	}
	for i, idx := range d.Indices {
		iv := lowerExpr(b, idx)
		p := b.NewValue()
		if i == 0 && isPointer {
			b.Append(fmt.Sprintf("  %s = getptr %s, %s\n", p, addr, iv))
		} else {
			b.Append(fmt.Sprintf("  %s = getelemptr %s, %s\n", p, addr, iv))
		}
		addr = p
	}
	return addr
}

// elemTypeAfterIndices computes the static type reached after applying
// numIndices subscripts to a symbol of type symTyp (a Pointer for
// array-decay parameters, or an Array for a local/global array).
func elemTypeAfterIndices(symTyp *types.Type, numIndices int, isPointer bool) *types.Type {
	t := symTyp
	if isPointer {
		t = t.Target()
		numIndices--
	}
	for i := 0; i < numIndices; i++ {
		t = t.Target()
	}
	return t
}

func lowerUnary(b *Builder, node *ast.Node) string {
	d := node.Data.(ast.UnaryNode)
	rhs := lowerExpr(b, d.Rhs)
	v := b.NewValue()
	switch d.Op {
	case ast.OpNeg:
		b.Append(fmt.Sprintf("  %s = sub 0, %s\n", v, rhs))
	case ast.OpNot:
		b.Append(fmt.Sprintf("  %s = eq 0, %s\n", v, rhs))
	}
	return v
}

var binMnemonic = map[ast.BinaryOp]string{
	ast.OpAdd: "add", ast.OpSub: "sub", ast.OpMul: "mul", ast.OpDiv: "div", ast.OpMod: "mod",
	ast.OpLt: "lt", ast.OpGt: "gt", ast.OpLe: "le", ast.OpGe: "ge", ast.OpEq: "eq", ast.OpNe: "ne",
}

func lowerBinary(b *Builder, node *ast.Node) string {
	d := node.Data.(ast.BinaryNode)
	if d.Op == ast.OpAnd || d.Op == ast.OpOr {
		return lowerShortCircuit(b, d)
	}
	lhs := lowerExpr(b, d.Lhs)
	rhs := lowerExpr(b, d.Rhs)
	v := b.NewValue()
	b.Append(fmt.Sprintf("  %s = %s %s, %s\n", v, binMnemonic[d.Op], lhs, rhs))
	return v
}

// lowerShortCircuit implements the scratch-cell algorithm of spec.md
// §4.3.6 for && and ||, required so the right operand's side effects
// never execute when the left operand already decides the result.
func lowerShortCircuit(b *Builder, d ast.BinaryNode) string {
	scratch := b.NewLocal("sc_res")
	b.Append(fmt.Sprintf("  %s = alloc i32\n", scratch))

	lhs := lowerExpr(b, d.Lhs)
	cmp := b.NewValue()
	b.Append(fmt.Sprintf("  %s = ne %s, 0\n", cmp, lhs))

	k := b.labelCounter
	b.labelCounter++
	trueLbl := fmt.Sprintf("%%sc_true_%d", k)
	falseLbl := fmt.Sprintf("%%sc_false_%d", k)
	endLbl := fmt.Sprintf("%%sc_end_%d", k)
	b.Append(fmt.Sprintf("  br %s, %s, %s\n", cmp, trueLbl, falseLbl))

	b.Append(trueLbl + ":\n")
	if d.Op == ast.OpAnd {
		rhs := lowerExpr(b, d.Rhs)
		norm := b.NewValue()
		b.Append(fmt.Sprintf("  %s = ne %s, 0\n", norm, rhs))
		b.Append(fmt.Sprintf("  store %s, %s\n", norm, scratch))
	} else {
		b.Append(fmt.Sprintf("  store 1, %s\n", scratch))
	}
	b.Append(fmt.Sprintf("  jump %s\n", endLbl))

	b.Append(falseLbl + ":\n")
	if d.Op == ast.OpAnd {
		b.Append(fmt.Sprintf("  store 0, %s\n", scratch))
	} else {
		rhs := lowerExpr(b, d.Rhs)
		norm := b.NewValue()
		b.Append(fmt.Sprintf("  %s = ne %s, 0\n", norm, rhs))
		b.Append(fmt.Sprintf("  store %s, %s\n", norm, scratch))
	}
	b.Append(fmt.Sprintf("  jump %s\n", endLbl))

	b.Append(endLbl + ":\n")
	result := b.NewValue()
	b.Append(fmt.Sprintf("  %s = load %s\n", result, scratch))
	return result
}

func lowerCall(b *Builder, node *ast.Node) string {
	d := node.Data.(ast.CallNode)
	sym := b.Table().Lookup(d.Ident)
	if sym == nil || sym.Kind != symtab.Func {
		diag.Error(node.Tok, "call to undeclared function '%s'", d.Ident)
	}

	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = lowerExpr(b, a)
	}

	callStr := fmt.Sprintf("call @%s(%s)", d.Ident, strings.Join(args, ", "))
	if sym.Type.Kind() == types.Void {
		b.Append("  " + callStr + "\n")
		return ""
	}
	v := b.NewValue()
	b.Append(fmt.Sprintf("  %s = %s\n", v, callStr))
	return v
}
