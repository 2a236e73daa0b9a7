// Package ast defines the abstract syntax tree produced by the parser: a
// tree of statement and expression nodes, each carrying a debug symbol (its
// source span) for diagnostics and runtime tracebacks.
package ast

import (
	"fmt"

	"github.com/sph-lang/sphinx/lang/token"
)

// DebugSymbol is the source-span pair attached to every node: a half-open
// byte range, exactly the shape later attached to bytecode offsets for
// traceback resolution. It holds no line number; lines are resolved from the
// positions through the FileSet.
type DebugSymbol struct {
	Start token.Pos
	End   token.Pos
}

// Span implements token.Span.
func (d DebugSymbol) Span() (start, end token.Pos) { return d.Start, d.End }

// Node is implemented by every statement and expression node.
type Node interface {
	fmt.Stringer
	// Span returns the node's debug symbol as a (start, end) pair.
	Span() (start, end token.Pos)
	// Walk visits n's direct children, in source order, calling Walk(v, child)
	// on each; it does not itself invoke v.Visit(n, ...) (see visitor.go).
	Walk(v Visitor)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Chunk is the root of a parsed compilation unit: a name (usually a file
// path or "<cmd>"/"<stdin>") plus the sequence of top-level statements.
type Chunk struct {
	Name     string
	Stmts    []Stmt
	Comments []*Comment
	DebugSymbol
}

func (c *Chunk) String() string { return fmt.Sprintf("chunk %s (%d stmts)", c.Name, len(c.Stmts)) }

func (c *Chunk) Walk(v Visitor) {
	for _, s := range c.Stmts {
		Walk(v, s)
	}
}

// Comment is a lexical comment. The parser collects comments into a Chunk
// only when it runs with the Comments mode, and it never sets Node.
type Comment struct {
	Start token.Pos
	Raw   string
	Text  string
	Node  Node // associated node; left nil by the parser
}

func (c *Comment) String() string              { return "comment " + quote(c.Raw) }
func (c *Comment) Span() (start, end token.Pos) { return c.Start, c.Start + token.Pos(len(c.Raw)) }
func (c *Comment) Walk(v Visitor)               {}

func quote(s string) string {
	if len(s) > 24 {
		s = s[:24] + "…"
	}
	return `"` + s + `"`
}
