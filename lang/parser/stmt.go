package parser

import (
	"github.com/sph-lang/sphinx/lang/ast"
	"github.com/sph-lang/sphinx/lang/token"
)

// parseStmt parses a single statement, recovering to a synchronization point
// and returning a *ast.BadStmt if anything inside panics with errPanicMode.
func (p *parser) parseStmt() (stmt ast.Stmt) {
	start := p.val.Pos
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			stmt = &ast.BadStmt{DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
		}
	}()

	p.pushCtx(ctxStmt)
	s := p.parseStmtInner()
	p.popCtx(p.val.Pos)
	return s
}

func (p *parser) parseStmtInner() ast.Stmt {
	start := p.val.Pos
	switch p.tok {
	case token.VAR, token.CONST:
		return p.parseDeclStmt(start)
	case token.FN:
		return p.parseFuncStmt(start)
	case token.CLASS:
		return p.parseClassStmt(start)
	case token.IF:
		return p.parseIfStmt(start)
	case token.WHILE:
		return p.parseWhileStmt(start)
	case token.FOR:
		return p.parseForStmt(start)
	case token.RETURN:
		return p.parseReturnStmt(start)
	case token.BREAK:
		p.advance()
		end := p.expect(token.SEMI)
		return &ast.BreakStmt{DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
	case token.CONTINUE:
		p.advance()
		end := p.expect(token.SEMI)
		return &ast.ContinueStmt{DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
	case token.ASSERT:
		return p.parseAssertStmt(start)
	case token.ECHO:
		return p.parseEchoStmt(start)
	case token.LBRACE:
		return p.parseBlockStmt()
	default:
		return p.parseSimpleStmt(start)
	}
}

func (p *parser) parseBlockStmt() *ast.BlockStmt {
	p.pushCtx(ctxBlock)
	start := p.expect(token.LBRACE)
	b := &ast.BlockStmt{}
	p.blocksStack = append(p.blocksStack, b)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	p.blocksStack = p.blocksStack[:len(p.blocksStack)-1]
	end := p.expect(token.RBRACE)
	b.Start, b.End = start, end
	p.popCtx(end)
	return b
}

func (p *parser) parseIdent() *ast.IdentExpr {
	start := p.val.Pos
	name := p.val.Str
	p.expect(token.IDENT)
	return &ast.IdentExpr{Name: name, DebugSymbol: ast.DebugSymbol{Start: start, End: start + token.Pos(len(name))}}
}

func (p *parser) parseDeclStmt(start token.Pos) *ast.DeclStmt {
	declTok := p.tok
	p.advance()

	var names []*ast.IdentExpr
	names = append(names, p.parseIdent())
	for p.tok == token.COMMA {
		p.advance()
		names = append(names, p.parseIdent())
	}

	var inits []ast.Expr
	if p.tok == token.EQ {
		p.advance()
		inits = append(inits, p.parseExpr())
		for p.tok == token.COMMA {
			p.advance()
			inits = append(inits, p.parseExpr())
		}
	}
	end := p.expect(token.SEMI)
	return &ast.DeclStmt{DeclTok: declTok, Names: names, Inits: inits, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

func (p *parser) parseEchoStmt(start token.Pos) *ast.EchoStmt {
	p.advance()
	x := p.parseExpr()
	end := p.expect(token.SEMI)
	return &ast.EchoStmt{Echo: start, X: x, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

func (p *parser) parseAssertStmt(start token.Pos) *ast.AssertStmt {
	p.advance()
	x := p.parseExpr()
	var msg ast.Expr
	if p.tok == token.COMMA {
		p.advance()
		msg = p.parseExpr()
	}
	end := p.expect(token.SEMI)
	return &ast.AssertStmt{Assert: start, X: x, Message: msg, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

func (p *parser) parseReturnStmt(start token.Pos) *ast.ReturnStmt {
	p.advance()
	var x ast.Expr
	if p.tok != token.SEMI {
		x = p.parseExpr()
	}
	end := p.expect(token.SEMI)
	return &ast.ReturnStmt{Return: start, X: x, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

func (p *parser) parseIfStmt(start token.Pos) *ast.IfStmt {
	p.advance()
	cond := p.withoutConstruct(p.parseExpr)
	then := p.parseBlockStmt()
	stmt := &ast.IfStmt{If: start, Cond: cond, Then: then}

	switch p.tok {
	case token.ELIF:
		elifStart := p.val.Pos
		stmt.Else = p.parseIfStmt(elifStart)
	case token.ELSE:
		p.advance()
		stmt.Else = p.parseBlockStmt()
	}
	end := p.val.Pos
	if stmt.Else != nil {
		_, end = stmt.Else.Span()
	} else {
		_, end = then.Span()
	}
	stmt.DebugSymbol = ast.DebugSymbol{Start: start, End: end}
	return stmt
}

func (p *parser) parseWhileStmt(start token.Pos) *ast.WhileStmt {
	p.advance()
	cond := p.withoutConstruct(p.parseExpr)
	body := p.parseBlockStmt()
	_, end := body.Span()
	return &ast.WhileStmt{While: start, Cond: cond, Body: body, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

func (p *parser) parseForStmt(start token.Pos) *ast.ForStmt {
	p.advance()
	name := p.parseIdent()
	p.expect(token.IN)
	rng := p.withoutConstruct(p.parseExpr)
	body := p.parseBlockStmt()
	_, end := body.Span()
	return &ast.ForStmt{For: start, Name: name, Range: rng, Body: body, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

func (p *parser) parseFuncStmt(start token.Pos) *ast.FuncStmt {
	p.advance()
	name := p.parseIdent()
	params := p.parseParams()
	body := p.parseBlockStmt()
	_, end := body.Span()
	return &ast.FuncStmt{Fn: start, Name: name, Params: params, Body: body, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

func (p *parser) parseParams() []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	for p.tok != token.RPAREN && p.tok != token.EOF {
		variadic := false
		if p.tok == token.DOT {
			// "..." scans as three DOT tokens; it marks the trailing variadic param.
			p.advance()
			p.expect(token.DOT)
			p.expect(token.DOT)
			variadic = true
		}
		name := p.parseIdent()
		param := &ast.Param{Name: name, Variadic: variadic}
		if !variadic && p.tok == token.EQ {
			p.advance()
			param.Default = p.parseExpr()
		}
		params = append(params, param)
		if variadic || p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	return params
}

func (p *parser) parseClassStmt(start token.Pos) *ast.ClassStmt {
	p.advance()
	name := p.parseIdent()
	var base *ast.IdentExpr
	if p.tok == token.COLON {
		p.advance()
		base = p.parseIdent()
	}
	p.expect(token.LBRACE)
	stmt := &ast.ClassStmt{Class: start, Name: name, Base: base}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		switch p.tok {
		case token.VAR, token.CONST:
			stmt.Fields = append(stmt.Fields, p.parseDeclStmt(p.val.Pos))
		case token.FN:
			stmt.Methods = append(stmt.Methods, p.parseFuncStmt(p.val.Pos))
		default:
			p.errorAt(ExpectedStatement, "expected field or method declaration in class body")
			panic(errPanicMode)
		}
	}
	end := p.expect(token.RBRACE)
	stmt.DebugSymbol = ast.DebugSymbol{Start: start, End: end}
	return stmt
}

// parseSimpleStmt parses an expression statement. Assignment is handled
// inside parseExpr itself (it is parsed as an expression, per the grammar),
// so a plain "x = 1;" arrives here as an *ast.AssignExpr wrapped in an
// ExprStmt.
func (p *parser) parseSimpleStmt(start token.Pos) ast.Stmt {
	x := p.parseExpr()
	end := p.expect(token.SEMI)
	return &ast.ExprStmt{X: x, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}
