package ast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sph-lang/sphinx/lang/token"
)

// Printer controls pretty-printing of the AST for the frontend's -P flag and
// for diagnostics.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer
	// Pos indicates the position printing mode; token.PosNone omits positions.
	Pos token.PosMode
}

// Print pretty-prints the AST node n, walking its whole subtree with
// indentation reflecting nesting depth. If n is a *Chunk with comments, each
// comment is printed alongside the node it was associated with. file is
// required unless p.Pos is token.PosNone.
func (p *Printer) Print(n Node, file *token.File) error {
	if file == nil && p.Pos != token.PosNone {
		return errors.New("file must be provided to print positions")
	}

	pp := &printer{w: p.Output, pos: p.Pos, file: file}
	if ch, ok := n.(*Chunk); ok && len(ch.Comments) > 0 {
		m := make(map[Node][]*Comment, len(ch.Comments))
		for _, c := range ch.Comments {
			m[c.Node] = append(m[c.Node], c)
		}
		pp.comments = m
	}

	Walk(pp, n)
	return pp.err
}

type printer struct {
	w        io.Writer
	pos      token.PosMode
	comments map[Node][]*Comment
	file     *token.File
	depth    int
	err      error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	p.printNode(n, p.depth-1)
	for _, c := range p.comments[n] {
		p.printNode(c, p.depth)
	}
	return p
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat(". ", indent))
	if p.pos != token.PosNone {
		start, end := n.Span()
		fmt.Fprintf(&sb, "[%s:%s] ",
			token.FormatPos(p.pos, p.file, start, true),
			token.FormatPos(p.pos, p.file, end, false))
	}
	sb.WriteString(n.String())
	sb.WriteByte('\n')
	_, p.err = io.WriteString(p.w, sb.String())
}
