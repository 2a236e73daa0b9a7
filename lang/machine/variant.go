// Package machine implements the stack-based virtual machine that executes
// a loaded program: the Variant value representation, call frames and
// closures, the global environment, and the fetch-decode-dispatch loop
// itself.
package machine

import (
	"fmt"
	"math"

	"github.com/sph-lang/sphinx/lang/strtable"
)

// Kind tags the payload a Variant carries. The set is closed: these seven
// kinds are the only runtime values the language has.
type Kind uint8

const (
	KindNil Kind = iota
	KindEmptyTuple
	KindBool
	KindInt
	KindFloat
	KindString
	KindTuple

	// KindFunction is not one of the seven kinds the data model's Variant
	// union describes; a function value's runtime materialization was left
	// an open question. It is added here, internal to this package, so a
	// closure pushed by MAKECLOSURE can occupy the same operand-stack slot
	// type as every other value and be loaded/stored/passed around by the
	// generic LOCAL/GLOBAL/UPVAL/CALL instructions like anything else.
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindEmptyTuple:
		return "tuple"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	case KindFunction:
		return "function"
	default:
		return "invalid"
	}
}

// Variant is the tagged union of every runtime value: nil, the empty tuple,
// a boolean, an integer, a float, an interned string symbol, or a shared
// immutable tuple of variants. It is deliberately small and copyable; the
// only heap indirection is Tup, which aliases the same backing array across
// every copy of a tuple value (tuples are immutable, so sharing is safe).
type Variant struct {
	Kind Kind
	Bool bool
	Int  int64
	Flt  float64
	Sym  strtable.Symbol
	Tup  []Variant
	Fn   *Function
}

var NilV = Variant{Kind: KindNil}
var EmptyTuple = Variant{Kind: KindEmptyTuple}

func Bool(b bool) Variant  { return Variant{Kind: KindBool, Bool: b} }
func Int(v int64) Variant  { return Variant{Kind: KindInt, Int: v} }
func Float(v float64) Variant { return Variant{Kind: KindFloat, Flt: v} }
func String(sym strtable.Symbol) Variant { return Variant{Kind: KindString, Sym: sym} }

// Tuple returns a tuple Variant over elems. An empty slice collapses to the
// canonical EmptyTuple rather than a KindTuple with zero elements, so there
// is exactly one representation for the empty tuple.
func Tuple(elems []Variant) Variant {
	if len(elems) == 0 {
		return EmptyTuple
	}
	return Variant{Kind: KindTuple, Tup: elems}
}

// FunctionVal wraps a closure so it can travel through the operand stack,
// locals, upvalues, and globals like any other value.
func FunctionVal(fn *Function) Variant { return Variant{Kind: KindFunction, Fn: fn} }

// Truthy implements the language's notion of truthiness for conditions:
// nil, false, 0, 0.0, "", and the empty tuple are false; everything else is
// true.
func (v Variant) Truthy() bool {
	switch v.Kind {
	case KindNil, KindEmptyTuple:
		return false
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Flt != 0
	case KindString:
		return strtable.Global.Resolve(v.Sym) != ""
	case KindTuple:
		return len(v.Tup) != 0
	case KindFunction:
		return true
	}
	return false
}

// Hashable reports whether v may be used as a map/set key. Every variant
// hashes except floats (which alias NaN and signed zero in ways that break
// hash-consing), functions, and tuples containing a non-hashable element.
func (v Variant) Hashable() bool {
	switch v.Kind {
	case KindFloat, KindFunction:
		return false
	case KindTuple:
		for _, e := range v.Tup {
			if !e.Hashable() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Variant) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindEmptyTuple:
		return "()"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return formatFloat(v.Flt)
	case KindString:
		return strtable.Global.Resolve(v.Sym)
	case KindTuple:
		s := "("
		for i, e := range v.Tup {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	case KindFunction:
		return fmt.Sprintf("<function %s>", v.Fn.Name())
	default:
		return "<invalid>"
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "+inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := fmt.Sprintf("%g", f)
	return s
}

// Equal reports value equality: same kind and same payload (strings compare
// by symbol identity, tuples compare elementwise).
func Equal(x, y Variant) bool {
	if x.Kind != y.Kind {
		// ints and floats never compare equal across kinds in this language;
		// the source would need an explicit conversion.
		return false
	}
	switch x.Kind {
	case KindNil, KindEmptyTuple:
		return true
	case KindBool:
		return x.Bool == y.Bool
	case KindInt:
		return x.Int == y.Int
	case KindFloat:
		return x.Flt == y.Flt
	case KindString:
		return x.Sym == y.Sym
	case KindTuple:
		if len(x.Tup) != len(y.Tup) {
			return false
		}
		for i := range x.Tup {
			if !Equal(x.Tup[i], y.Tup[i]) {
				return false
			}
		}
		return true
	case KindFunction:
		return x.Fn == y.Fn
	}
	return false
}
