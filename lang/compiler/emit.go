package compiler

import (
	"fmt"

	"github.com/sph-lang/sphinx/lang/ast"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
)

// emitter walks a parsed chunk and lowers it directly into bytecode: there is
// no separate resolution pass, scopes and jump targets are tracked as the
// walk proceeds.
type emitter struct {
	prog     *UnloadedProgram
	consts   *constPool
	interner *strtable.Table
	fset     *token.FileSet
	scope    *funcScope
	errs     ErrorList
}

// CompileChunk lowers a parsed chunk into a self-contained, unloaded bytecode
// program. interner is the build-local string table the emitter interns
// string literals and global names into; its contents become the program's
// string pool. Compile errors are
// collected per-statement and returned together as a compiler.ErrorList;
// CompileChunk still returns the partial program alongside them, since a
// frontend running with -P only wants the AST and one compiling with errors
// still wants to see what did lower.
func CompileChunk(ch *ast.Chunk, fset *token.FileSet, interner *strtable.Table) (*UnloadedProgram, error) {
	prog := &UnloadedProgram{Name: ch.Name}
	chunkID, c, err := prog.newChunk()
	if err != nil {
		return nil, err
	}
	proto := &FuncProto{Name: "<module>", ChunkID: chunkID}
	if _, err := prog.newFunc(proto); err != nil {
		return nil, err
	}

	e := &emitter{prog: prog, consts: newConstPool(), interner: interner, fset: fset}
	e.scope = newFuncScope(nil, chunkID, c, proto, true)
	e.scope.enterBlock()
	for _, s := range ch.Stmts {
		e.compileStmt(s)
	}
	e.scope.leaveBlock()
	c.emit(NILV)
	c.emit(RET)

	prog.Constants = e.consts.entries
	strs := make([]string, interner.Len())
	for i := range strs {
		strs[i] = interner.Resolve(strtable.Symbol(i))
	}
	prog.finalize(strs)
	return prog, e.errs.Err()
}

func (e *emitter) pos(n ast.Node) token.Position {
	if e.fset == nil {
		return token.Position{}
	}
	start, _ := n.Span()
	return e.fset.Position(start)
}

func (e *emitter) errorAt(n ast.Node, kind ErrorKind, msg string) {
	e.errs = append(e.errs, Error{Kind: kind, Pos: e.pos(n), Msg: msg})
}

// emitConstOp loads constants[idx], picking the narrow or wide opcode
// depending on whether idx fits in a byte.
func (e *emitter) emitConstOp(idx uint16) {
	if idx < 1<<8 {
		e.scope.chunk.emit8(CONST, uint8(idx))
	} else {
		e.scope.chunk.emit16(CONSTW, idx)
	}
}

// emitSlotOp is the narrow/wide dispatch shared by every local-slot opcode
// pair (LOCAL/LOCALW, SETLOCAL/SETLOCALW).
func (e *emitter) emitSlotOp(narrow, wide Opcode, slot int) {
	if slot < 1<<8 {
		e.scope.chunk.emit8(narrow, uint8(slot))
	} else {
		e.scope.chunk.emit16(wide, uint16(slot))
	}
}

// popLocalsTo emits runtime CLOSEUPVAL/POP for every local declared at or
// after index target in the current scope, without touching the compile-time
// locals list. It exists for break/continue, which jump past one or more
// block exits that would otherwise have done this cleanup themselves.
func (e *emitter) popLocalsTo(target int) {
	c := e.scope.chunk
	for i := len(e.scope.locals) - 1; i >= target; i-- {
		slot := e.scope.locals[i].slot
		if e.scope.capturedSlots[slot] {
			c.emit8(CLOSEUPVAL, uint8(slot))
		}
		c.emit(POP)
	}
}

// globalStringIdx interns name and returns its constant-pool string index,
// used by every instruction family that addresses a global by name
// (DEFGLOBAL/DEFCONSTGLOBAL/GLOBAL/SETGLOBAL).
func (e *emitter) globalStringIdx(name string) (uint16, error) {
	sym := e.interner.GetOrIntern(name)
	return e.consts.stringConst(uint32(sym))
}

// declareName binds name as either a module global (DEFGLOBAL, persists
// across separate REPL compilations) or a function/block local (a plain
// stack slot, the crafting-interpreters way: the initializer's pushed value
// simply becomes the local, no store instruction needed), depending on
// whether we're sitting directly in the module's outermost block.
func (e *emitter) declareName(n *ast.IdentExpr, mutable bool) {
	if e.scope.isModule && e.scope.blockDepth == 1 {
		idx, err := e.globalStringIdx(n.Name)
		if err != nil {
			e.errorAt(n, ConstantPoolLimit, err.Error())
			return
		}
		if mutable {
			e.scope.chunk.emit16(DEFGLOBAL, idx)
		} else {
			e.scope.chunk.emit16(DEFCONSTGLOBAL, idx)
		}
		return
	}
	if _, err := e.scope.declareLocal(n.Name, mutable); err != nil {
		e.errorAt(n, TooManyLocals, err.Error())
	}
}

// loadName resolves an identifier reference against the local scope, then
// enclosing functions' upvalues, then falls back to a global lookup resolved
// at runtime (a global may be defined by a later top-level statement, or by a
// previous REPL submission, neither of which the compiler can see).
func (e *emitter) loadName(n *ast.IdentExpr) {
	if slot, _, ok := e.scope.resolveLocal(n.Name); ok {
		e.emitSlotOp(LOCAL, LOCALW, slot)
		return
	}
	idx, ok, err := e.scope.resolveUpvalue(n.Name)
	if err != nil {
		e.errorAt(n, ConstantPoolLimit, err.Error())
		return
	}
	if ok {
		e.scope.chunk.emit8(UPVAL, uint8(idx))
		return
	}
	gidx, err := e.globalStringIdx(n.Name)
	if err != nil {
		e.errorAt(n, ConstantPoolLimit, err.Error())
		return
	}
	e.scope.chunk.emit16(GLOBAL, gidx)
}

// storeName resolves an identifier assignment target the same way loadName
// resolves a read, emitting the matching SET* instruction.
func (e *emitter) storeName(n *ast.IdentExpr) {
	if slot, mutable, ok := e.scope.resolveLocal(n.Name); ok {
		if !mutable {
			e.errorAt(n, InvalidAssignmentTarget, "cannot assign to const "+n.Name)
			return
		}
		e.emitSlotOp(SETLOCAL, SETLOCALW, slot)
		return
	}
	idx, ok, err := e.scope.resolveUpvalue(n.Name)
	if err != nil {
		e.errorAt(n, ConstantPoolLimit, err.Error())
		return
	}
	if ok {
		e.scope.chunk.emit8(SETUPVAL, uint8(idx))
		return
	}
	gidx, err := e.globalStringIdx(n.Name)
	if err != nil {
		e.errorAt(n, ConstantPoolLimit, err.Error())
		return
	}
	e.scope.chunk.emit16(SETGLOBAL, gidx)
}

func (e *emitter) compileStmt(s ast.Stmt) {
	start, end := s.Span()
	e.scope.chunk.addSymbol(int32(start), int32(end))

	switch st := s.(type) {
	case *ast.BadStmt:
		// already reported by the parser; nothing to lower.
	case *ast.ExprStmt:
		e.compileExpr(st.X)
		e.scope.chunk.emit(POP)
	case *ast.EchoStmt:
		e.compileExpr(st.X)
		e.scope.chunk.emit(ECHO)
	case *ast.DeclStmt:
		e.compileDecl(st)
	case *ast.BlockStmt:
		e.compileBlock(st)
	case *ast.IfStmt:
		e.compileIf(st)
	case *ast.WhileStmt:
		e.compileWhile(st)
	case *ast.ForStmt:
		e.compileFor(st)
	case *ast.FuncStmt:
		e.compileFuncDecl(st)
	case *ast.ClassStmt:
		e.errorAt(st, UnsupportedConstruct, "class declarations have no runtime representation")
	case *ast.ReturnStmt:
		e.compileReturn(st)
	case *ast.BreakStmt:
		e.compileBreak(st)
	case *ast.ContinueStmt:
		e.compileContinue(st)
	case *ast.AssertStmt:
		e.compileAssert(st)
	default:
		e.errorAt(s, UnsupportedConstruct, fmt.Sprintf("%T is not supported", s))
	}
}

func (e *emitter) compileBlock(b *ast.BlockStmt) {
	e.scope.enterBlock()
	for _, st := range b.Stmts {
		e.compileStmt(st)
	}
	e.scope.leaveBlock()
}

func (e *emitter) compileDecl(d *ast.DeclStmt) {
	mutable := d.Mutable()
	for i, name := range d.Names {
		if i < len(d.Inits) && d.Inits[i] != nil {
			e.compileExpr(d.Inits[i])
		} else {
			e.scope.chunk.emit(NILV)
		}
		e.declareName(name, mutable)
	}
}

func (e *emitter) compileIf(s *ast.IfStmt) {
	e.compileExpr(s.Cond)
	c := e.scope.chunk
	thenJmp := c.emitJump(POPJMPFALSE)
	e.compileBlock(s.Then)
	if s.Else == nil {
		c.patchJump(thenJmp)
		return
	}
	elseJmp := c.emitJump(JMP)
	c.patchJump(thenJmp)
	e.compileStmt(s.Else)
	c.patchJump(elseJmp)
}

func (e *emitter) compileWhile(s *ast.WhileStmt) {
	c := e.scope.chunk
	loopStart := c.here()
	e.compileExpr(s.Cond)
	exitJmp := c.emitJump(POPJMPFALSE)

	e.scope.loops = append(e.scope.loops, loopCtx{
		continueTarget:    loopStart,
		breakLocalBase:    len(e.scope.locals),
		continueLocalBase: len(e.scope.locals),
	})
	e.compileBlock(s.Body)
	lp := e.scope.loops[len(e.scope.loops)-1]
	e.scope.loops = e.scope.loops[:len(e.scope.loops)-1]

	c.emitBackJump(JMP, loopStart)
	c.patchJump(exitJmp)
	for _, p := range lp.breakPatches {
		c.patchJump(p)
	}
}

// compileFor lowers `for name in range { body }` over a tuple (or a string,
// which LEN and GETINDEX also accept): two hidden locals hold the range value
// and the cursor, the condition is cursor < len(range), and the loop variable
// is rebound each iteration from range[cursor].
func (e *emitter) compileFor(s *ast.ForStmt) {
	c := e.scope.chunk
	e.scope.enterBlock()

	e.compileExpr(s.Range)
	iterSlot, err := e.scope.declareLocal("$iter", false)
	if err != nil {
		e.errorAt(s, TooManyLocals, err.Error())
	}

	zero, err := e.consts.intConst(0)
	if err != nil {
		e.errorAt(s, ConstantPoolLimit, err.Error())
	}
	e.emitConstOp(zero)
	cursorSlot, err := e.scope.declareLocal("$cursor", true)
	if err != nil {
		e.errorAt(s, TooManyLocals, err.Error())
	}

	loopStart := c.here()
	e.emitSlotOp(LOCAL, LOCALW, cursorSlot)
	e.emitSlotOp(LOCAL, LOCALW, iterSlot)
	c.emit(LEN)
	c.emit(LT)
	exitJmp := c.emitJump(POPJMPFALSE)

	e.scope.loops = append(e.scope.loops, loopCtx{
		continueForward:   true,
		breakLocalBase:    len(e.scope.locals),
		continueLocalBase: len(e.scope.locals),
	})

	e.scope.enterBlock()
	e.emitSlotOp(LOCAL, LOCALW, iterSlot)
	e.emitSlotOp(LOCAL, LOCALW, cursorSlot)
	c.emit(GETINDEX)
	e.declareName(s.Name, true)
	for _, st := range s.Body.Stmts {
		e.compileStmt(st)
	}
	e.scope.leaveBlock()

	incrementStart := c.here()
	lp := e.scope.loops[len(e.scope.loops)-1]
	for _, p := range lp.continuePatches {
		c.patchJumpTo(p, incrementStart)
	}

	e.emitSlotOp(LOCAL, LOCALW, cursorSlot)
	one, err := e.consts.intConst(1)
	if err != nil {
		e.errorAt(s, ConstantPoolLimit, err.Error())
	}
	e.emitConstOp(one)
	c.emit(ADD)
	e.emitSlotOp(SETLOCAL, SETLOCALW, cursorSlot)
	c.emit(POP)
	c.emitBackJump(JMP, loopStart)

	c.patchJump(exitJmp)
	for _, p := range lp.breakPatches {
		c.patchJump(p)
	}
	e.scope.loops = e.scope.loops[:len(e.scope.loops)-1]

	e.scope.leaveBlock()
}

func (e *emitter) compileFuncDecl(s *ast.FuncStmt) {
	chunkID, funcChunk, err := e.prog.newChunk()
	if err != nil {
		e.errorAt(s, ChunkCountLimit, err.Error())
		return
	}
	proto := &FuncProto{Name: s.Name.Name, ChunkID: chunkID}
	funcID, err := e.prog.newFunc(proto)
	if err != nil {
		e.errorAt(s, ChunkCountLimit, err.Error())
		return
	}

	// declare the function's own name before compiling its body, so it can
	// call itself recursively and so sibling declarations can reference it.
	isGlobal := e.scope.isModule && e.scope.blockDepth == 1
	var globalIdx uint16
	if isGlobal {
		globalIdx, err = e.globalStringIdx(s.Name.Name)
		if err != nil {
			e.errorAt(s, ConstantPoolLimit, err.Error())
			return
		}
	} else if _, err := e.scope.declareLocal(s.Name.Name, false); err != nil {
		e.errorAt(s, TooManyLocals, err.Error())
		return
	}

	outer := e.scope
	e.scope = newFuncScope(outer, chunkID, funcChunk, proto, false)
	e.scope.enterBlock()

	paramSlots := make([]int, len(s.Params))
	for i, p := range s.Params {
		slot, err := e.scope.declareLocal(p.Name.Name, true)
		if err != nil {
			e.errorAt(p.Name, TooManyLocals, err.Error())
		}
		paramSlots[i] = slot
		switch {
		case p.Variadic:
			proto.Variadic = true
		case p.Default != nil:
			proto.OptionalParams++
		default:
			proto.RequiredParams++
		}
	}
	for i, p := range s.Params {
		if p.Variadic || p.Default == nil {
			continue
		}
		e.emitSlotOp(LOCAL, LOCALW, paramSlots[i])
		funcChunk.emit(NILV)
		funcChunk.emit(EQL)
		skip := funcChunk.emitJump(POPJMPFALSE)
		e.compileExpr(p.Default)
		e.emitSlotOp(SETLOCAL, SETLOCALW, paramSlots[i])
		funcChunk.emit(POP)
		funcChunk.patchJump(skip)
	}

	for _, st := range s.Body.Stmts {
		e.compileStmt(st)
	}
	e.scope.leaveBlock()
	funcChunk.emit(NILV)
	funcChunk.emit(RET)

	upvalues := proto.Upvalues
	e.scope = outer

	e.scope.chunk.emit16(MAKECLOSURE, funcID)
	for _, up := range upvalues {
		e.scope.chunk.emitUpvalueDesc(up.FromParentLocal, up.Index)
	}

	if isGlobal {
		e.scope.chunk.emit16(DEFCONSTGLOBAL, globalIdx)
	}
	// else: the pushed closure value already sits in the local slot declared
	// above, crafting-interpreters style; nothing further to emit.
}

func (e *emitter) compileReturn(s *ast.ReturnStmt) {
	if e.scope.isModule {
		e.errorAt(s, ReturnOutsideFunction, "return outside function")
	}
	if s.X != nil {
		e.compileExpr(s.X)
	} else {
		e.scope.chunk.emit(NILV)
	}
	// RET itself tears down the whole frame (closing any upvalues pointing
	// into it), so no per-local POP/CLOSEUPVAL is emitted here the way a
	// plain block exit needs.
	e.scope.chunk.emit(RET)
}

func (e *emitter) compileBreak(s *ast.BreakStmt) {
	if len(e.scope.loops) == 0 {
		e.errorAt(s, BreakOutsideLoop, "break outside loop")
		return
	}
	lp := &e.scope.loops[len(e.scope.loops)-1]
	e.popLocalsTo(lp.breakLocalBase)
	off := e.scope.chunk.emitJump(JMP)
	lp.breakPatches = append(lp.breakPatches, off)
}

func (e *emitter) compileContinue(s *ast.ContinueStmt) {
	if len(e.scope.loops) == 0 {
		e.errorAt(s, ContinueOutsideLoop, "continue outside loop")
		return
	}
	lp := &e.scope.loops[len(e.scope.loops)-1]
	e.popLocalsTo(lp.continueLocalBase)
	if lp.continueForward {
		off := e.scope.chunk.emitJump(JMP)
		lp.continuePatches = append(lp.continuePatches, off)
		return
	}
	e.scope.chunk.emitBackJump(JMP, lp.continueTarget)
}

func (e *emitter) compileAssert(s *ast.AssertStmt) {
	e.compileExpr(s.X)
	var hasMsg uint8
	if s.Message != nil {
		e.compileExpr(s.Message)
		hasMsg = 1
	}
	e.scope.chunk.emit8(ASSERT, hasMsg)
}

func (e *emitter) compileExpr(expr ast.Expr) {
	switch x := expr.(type) {
	case *ast.ParenExpr:
		e.compileExpr(x.X)
	case *ast.NilExpr:
		e.scope.chunk.emit(NILV)
	case *ast.EmptyTupleExpr:
		e.scope.chunk.emit(EMPTYTUPLE)
	case *ast.TupleExpr:
		if len(x.Elems) > 0xff {
			e.errorAt(x, UnsupportedConstruct, "tuple literal exceeds 255 elements")
			e.scope.chunk.emit(NILV)
			return
		}
		for _, el := range x.Elems {
			e.compileExpr(el)
		}
		e.scope.chunk.emit8(MAKETUPLE, uint8(len(x.Elems)))
	case *ast.BoolExpr:
		if x.Value {
			e.scope.chunk.emit(TRUEV)
		} else {
			e.scope.chunk.emit(FALSEV)
		}
	case *ast.IntExpr:
		idx, err := e.consts.intConst(x.Value)
		if err != nil {
			e.errorAt(x, ConstantPoolLimit, err.Error())
			return
		}
		e.emitConstOp(idx)
	case *ast.FloatExpr:
		idx, err := e.consts.floatConst(x.Value)
		if err != nil {
			e.errorAt(x, ConstantPoolLimit, err.Error())
			return
		}
		e.emitConstOp(idx)
	case *ast.StringExpr:
		idx, err := e.consts.stringConst(uint32(e.interner.GetOrIntern(x.Value)))
		if err != nil {
			e.errorAt(x, ConstantPoolLimit, err.Error())
			return
		}
		e.emitConstOp(idx)
	case *ast.IdentExpr:
		e.loadName(x)
	case *ast.SelfExpr:
		e.errorAt(x, UnsupportedConstruct, "self has no meaning outside a class method")
		e.scope.chunk.emit(NILV)
	case *ast.SuperExpr:
		e.errorAt(x, UnsupportedConstruct, "super has no meaning outside a class method")
		e.scope.chunk.emit(NILV)
	case *ast.UnaryExpr:
		e.compileUnary(x)
	case *ast.BinOpExpr:
		e.compileBinOp(x)
	case *ast.LogicalExpr:
		e.compileLogical(x)
	case *ast.AssignExpr:
		e.compileAssign(x)
	case *ast.PrimaryExpr:
		e.compilePrimary(x)
	default:
		e.errorAt(expr, UnsupportedConstruct, fmt.Sprintf("%T is not supported", expr))
		e.scope.chunk.emit(NILV)
	}
}

func (e *emitter) compileUnary(x *ast.UnaryExpr) {
	e.compileExpr(x.X)
	switch x.Op {
	case token.MINUS:
		e.scope.chunk.emit(NEG)
	case token.BANG:
		e.scope.chunk.emit(NOT)
	case token.TILDE:
		e.scope.chunk.emit(BNOT)
	default:
		e.errorAt(x, UnsupportedConstruct, "unknown unary operator "+x.Op.String())
	}
}

func binOpcode(tok token.Token) (Opcode, bool) {
	switch tok {
	case token.STAR:
		return MUL, true
	case token.SLASH:
		return DIV, true
	case token.PERCENT:
		return MOD, true
	case token.PLUS:
		return ADD, true
	case token.MINUS:
		return SUB, true
	case token.LTLT:
		return SHL, true
	case token.GTGT:
		return SHR, true
	case token.AMP:
		return BAND, true
	case token.CIRCUMFLEX:
		return BXOR, true
	case token.PIPE:
		return BOR, true
	case token.LT:
		return LT, true
	case token.GT:
		return GT, true
	case token.LE:
		return LE, true
	case token.GE:
		return GE, true
	case token.EQL:
		return EQL, true
	case token.NEQ:
		return NEQ, true
	default:
		return NOP, false
	}
}

func (e *emitter) compileBinOp(x *ast.BinOpExpr) {
	e.compileExpr(x.Left)
	e.compileExpr(x.Right)
	op, ok := binOpcode(x.Op)
	if !ok {
		e.errorAt(x, UnsupportedConstruct, "unknown binary operator "+x.Op.String())
		return
	}
	e.scope.chunk.emit(op)
}

// compileLogical lowers and/or short-circuiting. JMPFALSE/JMPTRUE leave the
// tested value on the stack rather than popping it, specifically so that
// value can become the whole expression's result when the jump is taken; the
// fallthrough path pops it explicitly before evaluating the right operand.
func (e *emitter) compileLogical(x *ast.LogicalExpr) {
	c := e.scope.chunk
	e.compileExpr(x.Left)
	var jmp int
	if x.Op == token.AND {
		jmp = c.emitJump(JMPFALSE)
	} else {
		jmp = c.emitJump(JMPTRUE)
	}
	c.emit(POP)
	e.compileExpr(x.Right)
	c.patchJump(jmp)
}

func (e *emitter) compileAssign(x *ast.AssignExpr) {
	ident, ok := x.Left.(*ast.IdentExpr)
	if !ok {
		e.errorAt(x, UnsupportedConstruct, "attribute and index assignment have no runtime representation")
		e.compileExpr(x.Right)
		return
	}
	e.compileExpr(x.Right)
	e.storeName(ident)
}

func (e *emitter) compilePrimary(x *ast.PrimaryExpr) {
	e.compileExpr(x.Base)
	c := e.scope.chunk
	for _, it := range x.Items {
		switch item := it.(type) {
		case *ast.AttrItem:
			e.errorAt(item, UnsupportedConstruct, "attribute access has no runtime representation")
			c.emit(POP)
			c.emit(NILV)
		case *ast.IndexItem:
			e.compileExpr(item.Index)
			c.emit(GETINDEX)
		case *ast.InvokeItem:
			for _, a := range item.Args {
				e.compileExpr(a)
			}
			c.emit8(CALL, uint8(len(item.Args)))
		case *ast.ConstructItem:
			e.errorAt(item, UnsupportedConstruct, "object construction has no runtime representation")
			c.emit(POP)
			c.emit(NILV)
		default:
			e.errorAt(it, UnsupportedConstruct, fmt.Sprintf("%T is not supported", it))
		}
	}
}
