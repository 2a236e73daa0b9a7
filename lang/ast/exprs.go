package ast

import (
	"fmt"

	"github.com/sph-lang/sphinx/lang/token"
)

// Unwrap strips away any enclosing ParenExpr layers, returning the innermost
// expression.
func Unwrap(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// IsAssignable reports whether e is a valid assignment l-value: an
// identifier, or a primary expression whose last access item is an attribute
// or index operation.
func IsAssignable(e Expr) bool {
	switch x := Unwrap(e).(type) {
	case *IdentExpr:
		return true
	case *PrimaryExpr:
		if len(x.Items) == 0 {
			return false
		}
		switch x.Items[len(x.Items)-1].(type) {
		case *AttrItem, *IndexItem:
			return true
		}
	}
	return false
}

// NilExpr is the `nil` literal.
type NilExpr struct{ DebugSymbol }

func (e *NilExpr) String() string { return "nil" }
func (e *NilExpr) Walk(v Visitor) {}
func (*NilExpr) exprNode()        {}

// EmptyTupleExpr is the `()` literal, the empty tuple.
type EmptyTupleExpr struct{ DebugSymbol }

func (e *EmptyTupleExpr) String() string { return "()" }
func (e *EmptyTupleExpr) Walk(v Visitor) {}
func (*EmptyTupleExpr) exprNode()        {}

// SelfExpr is the `self` atom, referring to the receiver inside a method.
type SelfExpr struct{ DebugSymbol }

func (e *SelfExpr) String() string { return "self" }
func (e *SelfExpr) Walk(v Visitor) {}
func (*SelfExpr) exprNode()        {}

// SuperExpr is the `super` atom, referring to the base class inside a
// method.
type SuperExpr struct{ DebugSymbol }

func (e *SuperExpr) String() string { return "super" }
func (e *SuperExpr) Walk(v Visitor) {}
func (*SuperExpr) exprNode()        {}

// IdentExpr is an identifier reference (or, in declaration position, a
// binding name).
type IdentExpr struct {
	Name string
	DebugSymbol
}

func (e *IdentExpr) String() string { return e.Name }
func (e *IdentExpr) Walk(v Visitor) {}
func (*IdentExpr) exprNode()        {}

// BoolExpr is a `true`/`false` literal.
type BoolExpr struct {
	Value bool
	DebugSymbol
}

func (e *BoolExpr) String() string { return fmt.Sprintf("%t", e.Value) }
func (e *BoolExpr) Walk(v Visitor) {}
func (*BoolExpr) exprNode()        {}

// IntExpr is an integer literal.
type IntExpr struct {
	Value int64
	DebugSymbol
}

func (e *IntExpr) String() string { return fmt.Sprintf("%d", e.Value) }
func (e *IntExpr) Walk(v Visitor) {}
func (*IntExpr) exprNode()        {}

// FloatExpr is a float literal.
type FloatExpr struct {
	Value float64
	DebugSymbol
}

func (e *FloatExpr) String() string { return fmt.Sprintf("%g", e.Value) }
func (e *FloatExpr) Walk(v Visitor) {}
func (*FloatExpr) exprNode()        {}

// StringExpr is a string literal.
type StringExpr struct {
	Value string
	DebugSymbol
}

func (e *StringExpr) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *StringExpr) Walk(v Visitor) {}
func (*StringExpr) exprNode()        {}

// TupleExpr is a parenthesized, comma-separated tuple literal: `(a, b, c)` or
// a single-element `(a,)`. The zero- and one-element cases are spelled
// differently (EmptyTupleExpr, ParenExpr) since a lone `(a)` is just a
// grouped expression, not a one-tuple.
type TupleExpr struct {
	Lparen token.Pos
	Elems  []Expr
	Rparen token.Pos
	DebugSymbol
}

func (e *TupleExpr) String() string { return fmt.Sprintf("tuple (%d elems)", len(e.Elems)) }
func (e *TupleExpr) Walk(v Visitor) {
	for _, el := range e.Elems {
		Walk(v, el)
	}
}
func (*TupleExpr) exprNode() {}

// ParenExpr is a parenthesized expression, kept as its own node (rather than
// discarded) so debug symbols and re-lexing round-trip exactly.
type ParenExpr struct {
	X Expr
	DebugSymbol
}

func (e *ParenExpr) String() string { return "(...)" }
func (e *ParenExpr) Walk(v Visitor) { Walk(v, e.X) }
func (*ParenExpr) exprNode()        {}

// UnaryExpr is a prefix unary operation: `-x`, `!x`, or `~x`.
type UnaryExpr struct {
	Op token.Token
	X  Expr
	DebugSymbol
}

func (e *UnaryExpr) String() string { return fmt.Sprintf("unary %s", e.Op) }
func (e *UnaryExpr) Walk(v Visitor) { Walk(v, e.X) }
func (*UnaryExpr) exprNode()        {}

// BinOpExpr is a binary operation at one of the fixed precedence levels 2-8
// (multiplicative through comparison); `and`/`or` are represented separately
// by LogicalExpr since they short-circuit.
type BinOpExpr struct {
	Left  Expr
	Op    token.Token
	OpPos token.Pos
	Right Expr
	DebugSymbol
}

func (e *BinOpExpr) String() string { return fmt.Sprintf("binary %s", e.Op) }
func (e *BinOpExpr) Walk(v Visitor) {
	Walk(v, e.Left)
	Walk(v, e.Right)
}
func (*BinOpExpr) exprNode() {}

// LogicalExpr is a short-circuiting `and`/`or` expression.
type LogicalExpr struct {
	Left  Expr
	Op    token.Token // AND or OR
	OpPos token.Pos
	Right Expr
	DebugSymbol
}

func (e *LogicalExpr) String() string { return fmt.Sprintf("logical %s", e.Op) }
func (e *LogicalExpr) Walk(v Visitor) {
	Walk(v, e.Left)
	Walk(v, e.Right)
}
func (*LogicalExpr) exprNode() {}

// AssignExpr is assignment used as an expression (its value is the assigned
// value); Left must satisfy IsAssignable.
type AssignExpr struct {
	Left  Expr
	Right Expr
	DebugSymbol
}

func (e *AssignExpr) String() string { return "assignment expression" }
func (e *AssignExpr) Walk(v Visitor) {
	Walk(v, e.Left)
	Walk(v, e.Right)
}
func (*AssignExpr) exprNode() {}

// AccessItem is one element of a PrimaryExpr's access path.
type AccessItem interface {
	Node
	accessItem()
}

// AttrItem is `.name`.
type AttrItem struct {
	Dot  token.Pos
	Name *IdentExpr
	DebugSymbol
}

func (i *AttrItem) String() string { return "." + i.Name.Name }
func (i *AttrItem) Walk(v Visitor) { Walk(v, i.Name) }
func (*AttrItem) exprNode()        {}
func (*AttrItem) accessItem()      {}

// IndexItem is `[expr]`.
type IndexItem struct {
	Lbrack token.Pos
	Index  Expr
	Rbrack token.Pos
	DebugSymbol
}

func (i *IndexItem) String() string { return "[index]" }
func (i *IndexItem) Walk(v Visitor) { Walk(v, i.Index) }
func (*IndexItem) exprNode()        {}
func (*IndexItem) accessItem()      {}

// InvokeItem is `(args...)`.
type InvokeItem struct {
	Lparen token.Pos
	Args   []Expr
	Rparen token.Pos
	DebugSymbol
}

func (i *InvokeItem) String() string { return fmt.Sprintf("(%d args)", len(i.Args)) }
func (i *InvokeItem) Walk(v Visitor) {
	for _, a := range i.Args {
		Walk(v, a)
	}
}
func (*InvokeItem) exprNode()   {}
func (*InvokeItem) accessItem() {}

// ConstructField is one `name: value` pair inside a ConstructItem.
type ConstructField struct {
	Name  *IdentExpr
	Value Expr
}

// ConstructItem is `{ name: value, ... }`, building a new instance of the
// base expression's class.
type ConstructItem struct {
	Lbrace token.Pos
	Fields []ConstructField
	Rbrace token.Pos
	DebugSymbol
}

func (i *ConstructItem) String() string { return fmt.Sprintf("{%d fields}", len(i.Fields)) }
func (i *ConstructItem) Walk(v Visitor) {
	for _, f := range i.Fields {
		Walk(v, f.Name)
		Walk(v, f.Value)
	}
}
func (*ConstructItem) exprNode()   {}
func (*ConstructItem) accessItem() {}

// PrimaryExpr is an atom followed by an ordered sequence of access items
// (attribute / index / invoke / construct operations).
type PrimaryExpr struct {
	Base  Expr
	Items []AccessItem
	DebugSymbol
}

func (e *PrimaryExpr) String() string { return fmt.Sprintf("primary (%d items)", len(e.Items)) }
func (e *PrimaryExpr) Walk(v Visitor) {
	Walk(v, e.Base)
	for _, it := range e.Items {
		Walk(v, it)
	}
}
func (*PrimaryExpr) exprNode() {}
