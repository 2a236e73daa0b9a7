// Package parser implements the recursive-descent parser that transforms a
// token stream into an abstract syntax tree.
package parser

import (
	"errors"

	"github.com/sph-lang/sphinx/lang/ast"
	"github.com/sph-lang/sphinx/lang/scanner"
	"github.com/sph-lang/sphinx/lang/source"
	"github.com/sph-lang/sphinx/lang/token"
)

// Mode is a set of bit flags configuring the parse.
type Mode uint

const (
	// Comments causes COMMENT tokens to be collected into the chunk's
	// Comments list instead of being discarded. They are not associated with
	// AST nodes, and the scanner never produces COMMENT tokens, so the list
	// stays empty.
	Comments Mode = 1 << iota
)

// ParseFiles parses every named source file and returns the shared FileSet,
// one *ast.Chunk per file, and any accumulated error (guaranteed to be a
// parser.ErrorList if non-nil).
func ParseFiles(mode Mode, files ...string) (*token.FileSet, []*ast.Chunk, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var errs ErrorList
	fs := token.NewFileSet()
	res := make([]*ast.Chunk, 0, len(files))

	for _, file := range files {
		b, err := source.ReadAll(file)
		if err != nil {
			errs.add(LexerError, token.Position{Filename: file}, [2]token.Pos{}, err.Error())
			continue
		}
		var p parser
		p.parseComments = mode&Comments != 0
		p.init(fs, file, b)
		ch := p.parseChunk()
		ch.Name = file
		errs = append(errs, p.errors...)
		res = append(res, ch)
	}
	errs.Sort()
	return fs, res, errs.Err()
}

// ParseChunk parses a single chunk from src, registering it with fset under
// filename. The error, if non-nil, is a parser.ErrorList.
func ParseChunk(mode Mode, fset *token.FileSet, filename string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.parseComments = mode&Comments != 0
	p.init(fset, filename, src)
	ch := p.parseChunk()
	ch.Name = filename
	p.errors.Sort()
	return ch, p.errors.Err()
}

type parser struct {
	parseComments bool
	scanner       scanner.Scanner
	errors        ErrorList
	file          *token.File

	tok token.Token
	val token.Value

	ctxStack []ctxFrame

	// noConstruct, when non-zero, forbids parsePrimaryExpr from consuming a
	// trailing `{...}` as a constructor, so an if/while/for condition doesn't
	// swallow the block that follows it.
	noConstruct int

	pendingComments []*ast.Comment
	blocksStack     []*ast.BlockStmt
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, p.onLexError)
	p.advance()
}

func (p *parser) onLexError(pos token.Position, msg string) {
	p.errors.add(LexerError, pos, [2]token.Pos{}, msg)
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
	for p.tok == token.COMMENT {
		if p.parseComments {
			p.pendingComments = append(p.pendingComments, &ast.Comment{
				Start: p.val.Pos,
				Raw:   p.val.Raw,
				Text:  p.val.Str,
			})
		}
		p.tok = p.scanner.Scan(&p.val)
	}
}

// errPanicMode unwinds the recursive-descent call stack back to the nearest
// statement boundary after a parse error has already been recorded.
var errPanicMode = errors.New("sphinx: parser panic mode")

func (p *parser) errorAt(kind ErrorKind, msg string) {
	start, end := p.curCtxSpan(p.val.Pos)
	pos := p.file.Position(p.val.Pos)
	p.errors.add(kind, pos, [2]token.Pos{start, end}, msg)
}

// expect consumes the current token if it is tok, otherwise records an error
// and enters panic mode (recovered at the statement level).
func (p *parser) expect(tok token.Token) token.Pos {
	if p.tok != tok {
		kind := ExpectedStartOfExpr
		switch tok {
		case token.RPAREN:
			kind = ExpectedCloseParen
		case token.RBRACK:
			kind = ExpectedCloseSquare
		case token.RBRACE:
			kind = ExpectedCloseBrace
		case token.IDENT:
			kind = ExpectedIdentifier
		}
		lit := p.tok.Literal(p.val)
		found := p.tok.GoString()
		if lit != "" {
			found = lit
		}
		p.errorAt(kind, "expected "+tok.GoString()+", found "+found)
		panic(errPanicMode)
	}
	pos := p.val.Pos
	p.advance()
	return pos
}

// tokenIn reports whether tok is any of the provided tokens.
func tokenIn(tok token.Token, toks ...token.Token) bool {
	for _, t := range toks {
		if tok == t {
			return true
		}
	}
	return false
}

// synchronize implements the parser's error recovery: it consumes tokens
// until it reaches a statement boundary (a semicolon, which it also
// consumes, or the start of a statement keyword) so that the pass can
// continue producing diagnostics for the rest of the input.
func (p *parser) synchronize() {
	for p.tok != token.EOF {
		if p.tok == token.SEMI {
			p.advance()
			return
		}
		if isStmtStart(p.tok) {
			return
		}
		p.advance()
	}
}

func isStmtStart(tok token.Token) bool {
	switch tok {
	case token.VAR, token.CONST, token.FN, token.CLASS, token.IF, token.WHILE, token.FOR,
		token.RETURN, token.BREAK, token.CONTINUE, token.ASSERT, token.ECHO, token.LBRACE:
		return true
	default:
		return false
	}
}

func (p *parser) parseChunk() *ast.Chunk {
	ch := &ast.Chunk{}
	start := p.val.Pos
	for p.tok != token.EOF {
		ch.Stmts = append(ch.Stmts, p.parseStmt())
	}
	ch.Start = start
	ch.End = p.val.Pos
	if p.parseComments {
		ch.Comments = p.pendingComments
	}
	return ch
}
