package parser

import (
	"github.com/sph-lang/sphinx/lang/ast"
	"github.com/sph-lang/sphinx/lang/token"
)

// parseExpr parses a full expression, including assignment.
func (p *parser) parseExpr() ast.Expr {
	p.pushCtx(ctxExpr)
	e := p.parseAssignExpr()
	p.popCtx(p.val.Pos)
	return e
}

// parseAssignExpr parses assignment, which is right-associative and binds
// looser than every binary operator level.
func (p *parser) parseAssignExpr() ast.Expr {
	left := p.parseBinaryExpr(token.MaxBinaryPrecedence)
	if p.tok != token.EQ {
		return left
	}
	if !ast.IsAssignable(left) {
		p.errorAt(InvalidAssignmentLHS, "invalid assignment target")
		panic(errPanicMode)
	}
	p.advance()
	right := p.parseAssignExpr()
	start, _ := left.Span()
	_, end := right.Span()
	return &ast.AssignExpr{Left: left, Right: right, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
}

// parseBinaryExpr implements precedence climbing over the fixed table in
// token.BinaryPrecedence, recursing to tighter-binding levels first so that
// operators at the same level associate left to right.
func (p *parser) parseBinaryExpr(level int) ast.Expr {
	if level < 2 {
		return p.parseUnaryExpr()
	}

	p.pushCtx(ctxBinOp)
	left := p.parseBinaryExpr(level - 1)
	for p.tok.BinaryPrecedence() == level {
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		right := p.parseBinaryExpr(level - 1)
		start, _ := left.Span()
		_, end := right.Span()
		sym := ast.DebugSymbol{Start: start, End: end}
		if op == token.AND || op == token.OR {
			left = &ast.LogicalExpr{Left: left, Op: op, OpPos: opPos, Right: right, DebugSymbol: sym}
		} else {
			left = &ast.BinOpExpr{Left: left, Op: op, OpPos: opPos, Right: right, DebugSymbol: sym}
		}
	}
	p.popCtx(p.val.Pos)
	return left
}

func (p *parser) parseUnaryExpr() ast.Expr {
	switch p.tok {
	case token.MINUS, token.BANG, token.TILDE:
		op := p.tok
		start := p.val.Pos
		p.advance()
		x := p.parseUnaryExpr()
		_, end := x.Span()
		return &ast.UnaryExpr{Op: op, X: x, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
	default:
		return p.parsePrimaryExpr()
	}
}

// parsePrimaryExpr parses an atom followed by zero or more access items
// (attribute, index, invoke, construct). When the noConstruct guard is
// active (while parsing an if/while/for condition), a trailing `{` is left
// for the statement parser to consume as the block body instead of being
// read as a constructor.
func (p *parser) parsePrimaryExpr() ast.Expr {
	p.pushCtx(ctxPrimary)
	base := p.parseAtom()
	var items []ast.AccessItem

loop:
	for {
		switch p.tok {
		case token.DOT:
			dot := p.val.Pos
			p.advance()
			name := p.parseIdent()
			_, end := name.Span()
			items = append(items, &ast.AttrItem{Dot: dot, Name: name, DebugSymbol: ast.DebugSymbol{Start: dot, End: end}})
		case token.LBRACK:
			lbrack := p.val.Pos
			p.advance()
			idx := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			items = append(items, &ast.IndexItem{Lbrack: lbrack, Index: idx, Rbrack: rbrack, DebugSymbol: ast.DebugSymbol{Start: lbrack, End: rbrack}})
		case token.LPAREN:
			lparen := p.val.Pos
			p.advance()
			var args []ast.Expr
			for p.tok != token.RPAREN && p.tok != token.EOF {
				args = append(args, p.parseExpr())
				if p.tok != token.COMMA {
					break
				}
				p.advance()
			}
			rparen := p.expect(token.RPAREN)
			items = append(items, &ast.InvokeItem{Lparen: lparen, Args: args, Rparen: rparen, DebugSymbol: ast.DebugSymbol{Start: lparen, End: rparen}})
		case token.LBRACE:
			if p.noConstruct > 0 {
				break loop
			}
			lbrace := p.val.Pos
			p.advance()
			var fields []ast.ConstructField
			for p.tok != token.RBRACE && p.tok != token.EOF {
				name := p.parseIdent()
				p.expect(token.COLON)
				val := p.parseExpr()
				fields = append(fields, ast.ConstructField{Name: name, Value: val})
				if p.tok != token.COMMA {
					break
				}
				p.advance()
			}
			rbrace := p.expect(token.RBRACE)
			items = append(items, &ast.ConstructItem{Lbrace: lbrace, Fields: fields, Rbrace: rbrace, DebugSymbol: ast.DebugSymbol{Start: lbrace, End: rbrace}})
		default:
			break loop
		}
	}

	p.popCtx(p.val.Pos)
	if len(items) == 0 {
		return base
	}
	start, _ := base.Span()
	_, last := items[len(items)-1].Span()
	return &ast.PrimaryExpr{Base: base, Items: items, DebugSymbol: ast.DebugSymbol{Start: start, End: last}}
}

// parseAtom parses a single atomic expression: a literal, an identifier, the
// `self`/`super`/`nil` keywords, the empty tuple `()`, or a parenthesized
// expression.
func (p *parser) parseAtom() ast.Expr {
	start := p.val.Pos
	switch p.tok {
	case token.NIL:
		p.advance()
		return &ast.NilExpr{DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
	case token.TRUE, token.FALSE:
		v := p.tok == token.TRUE
		p.advance()
		return &ast.BoolExpr{Value: v, DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
	case token.SELF:
		p.advance()
		return &ast.SelfExpr{DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
	case token.SUPER:
		p.advance()
		return &ast.SuperExpr{DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
	case token.IDENT:
		return p.parseIdent()
	case token.INT:
		v := p.val.Int
		p.advance()
		return &ast.IntExpr{Value: v, DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
	case token.FLOAT:
		v := p.val.Float
		p.advance()
		return &ast.FloatExpr{Value: v, DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
	case token.STRING:
		v := p.val.Str
		p.advance()
		return &ast.StringExpr{Value: v, DebugSymbol: ast.DebugSymbol{Start: start, End: p.val.Pos}}
	case token.LPAREN:
		p.pushCtx(ctxGroup)
		p.advance()
		if p.tok == token.RPAREN {
			end := p.val.Pos
			p.advance()
			p.popCtx(end)
			return &ast.EmptyTupleExpr{DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
		}
		x := p.parseExpr()
		if p.tok == token.COMMA {
			p.ctxStack[len(p.ctxStack)-1].tag = ctxTupleCtor
			elems := []ast.Expr{x}
			for p.tok == token.COMMA {
				p.advance()
				if p.tok == token.RPAREN {
					break // trailing comma
				}
				elems = append(elems, p.parseExpr())
			}
			end := p.expect(token.RPAREN)
			p.popCtx(end)
			return &ast.TupleExpr{Lparen: start, Elems: elems, Rparen: end, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
		}
		end := p.expect(token.RPAREN)
		p.popCtx(end)
		return &ast.ParenExpr{X: x, DebugSymbol: ast.DebugSymbol{Start: start, End: end}}
	default:
		p.errorAt(ExpectedStartOfExpr, "expected start of expression, found "+p.tok.GoString())
		panic(errPanicMode)
	}
}

// withoutConstruct runs fn with the primary-expression parser forbidden from
// consuming a trailing `{...}` as a constructor, so that `if cond { ... }`
// parses cond without swallowing the block that follows it.
func (p *parser) withoutConstruct(fn func() ast.Expr) ast.Expr {
	p.noConstruct++
	defer func() { p.noConstruct-- }()
	return fn()
}
