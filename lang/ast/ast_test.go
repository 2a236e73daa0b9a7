package ast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sph-lang/sphinx/lang/token"
)

func span(s, e token.Pos) DebugSymbol { return DebugSymbol{Start: s, End: e} }

func TestIsAssignable(t *testing.T) {
	ident := &IdentExpr{Name: "x", DebugSymbol: span(1, 2)}
	require.True(t, IsAssignable(ident))

	attr := &PrimaryExpr{
		Base:        ident,
		Items:       []AccessItem{&AttrItem{Name: &IdentExpr{Name: "y"}}},
		DebugSymbol: span(1, 4),
	}
	require.True(t, IsAssignable(attr))

	call := &PrimaryExpr{
		Base:        ident,
		Items:       []AccessItem{&InvokeItem{}},
		DebugSymbol: span(1, 4),
	}
	require.False(t, IsAssignable(call))

	lit := &IntExpr{Value: 1, DebugSymbol: span(1, 2)}
	require.False(t, IsAssignable(lit))
}

func TestUnwrapStripsParens(t *testing.T) {
	inner := &IdentExpr{Name: "x"}
	wrapped := &ParenExpr{X: &ParenExpr{X: inner}}
	require.Same(t, Expr(inner), Unwrap(wrapped))
}

func TestWalkVisitsChildrenInOrder(t *testing.T) {
	left := &IntExpr{Value: 1, DebugSymbol: span(1, 2)}
	right := &IntExpr{Value: 2, DebugSymbol: span(5, 6)}
	bin := &BinOpExpr{Left: left, Op: token.PLUS, Right: right, DebugSymbol: span(1, 6)}

	var visited []Node
	Walk(VisitorFunc(func(n Node, dir VisitDirection) Visitor {
		if dir == VisitEnter {
			visited = append(visited, n)
		}
		return VisitorFunc(func(n Node, dir VisitDirection) Visitor {
			if dir == VisitEnter {
				visited = append(visited, n)
			}
			return nil
		})
	}), bin)

	require.Len(t, visited, 3)
	require.Same(t, Node(bin), visited[0])
}

func TestPrinterOutputsIndentedTree(t *testing.T) {
	chunk := &Chunk{
		Name: "<test>",
		Stmts: []Stmt{
			&EchoStmt{X: &IntExpr{Value: 1, DebugSymbol: span(6, 7)}, DebugSymbol: span(1, 7)},
		},
		DebugSymbol: span(1, 7),
	}

	var buf bytes.Buffer
	p := Printer{Output: &buf, Pos: token.PosNone}
	require.NoError(t, p.Print(chunk, nil))
	require.Contains(t, buf.String(), "chunk <test>")
	require.Contains(t, buf.String(), "echo")
}
