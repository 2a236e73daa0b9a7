package parser

import (
	"fmt"
	"sort"

	"github.com/sph-lang/sphinx/lang/token"
)

// ErrorKind is the closed enumeration of parser (and wrapped lexer) error
// kinds.
type ErrorKind int

const (
	LexerError ErrorKind = iota
	ExpectedStartOfExpr
	ExpectedCloseParen
	ExpectedCloseSquare
	ExpectedCloseBrace
	ExpectedIdentifier
	ExpectedStatement
	InvalidAssignmentLHS
)

func (k ErrorKind) String() string {
	switch k {
	case LexerError:
		return "lexer-error"
	case ExpectedStartOfExpr:
		return "expected-start-of-expr"
	case ExpectedCloseParen:
		return "expected-close-paren"
	case ExpectedCloseSquare:
		return "expected-close-square"
	case ExpectedCloseBrace:
		return "expected-close-brace"
	case ExpectedIdentifier:
		return "expected-identifier"
	case ExpectedStatement:
		return "expected-statement"
	case InvalidAssignmentLHS:
		return "invalid-assignment-lhs"
	default:
		return "unknown"
	}
}

// Error is a single parser diagnostic: a kind, the span of the largest
// enclosing construct it pertains to, and a human message.
type Error struct {
	Kind ErrorKind
	Pos  token.Position
	Span [2]token.Pos
	Msg  string
}

func (e Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// ErrorList accumulates every Error produced by a single parse pass.
type ErrorList []Error

func (l *ErrorList) add(kind ErrorKind, pos token.Position, span [2]token.Pos, msg string) {
	*l = append(*l, Error{Kind: kind, Pos: pos, Span: span, Msg: msg})
}

func (l ErrorList) Sort() {
	sort.Slice(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
	}
}

func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
