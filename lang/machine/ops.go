package machine

import (
	"math"

	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/strtable"
)

func typeErr2(op string, x, y Variant) *RuntimeError {
	return &RuntimeError{Kind: InvalidBinaryOperand, TypeA: x.Kind.String(), TypeB: y.Kind.String()}
}

func typeErr1(x Variant) *RuntimeError {
	return &RuntimeError{Kind: InvalidUnaryOperand, TypeA: x.Kind.String()}
}

// binary evaluates a binary opcode over two already-pushed operands. Integer
// arithmetic is checked for overflow; mixed int/float operands promote the
// int side to float; strings support concatenation (+) and the ordering
// comparisons (< <= > >=) besides equality; bitwise and shift operators
// require both operands to be integers.
func binary(op compiler.Opcode, x, y Variant) (Variant, error) {
	switch op {
	case compiler.EQL:
		return Bool(Equal(x, y)), nil
	case compiler.NEQ:
		return Bool(!Equal(x, y)), nil
	}

	if x.Kind == KindString && y.Kind == KindString {
		return stringOp(op, x, y)
	}

	if isNumeric(x) && isNumeric(y) {
		if x.Kind == KindFloat || y.Kind == KindFloat {
			return floatOp(op, asFloat(x), asFloat(y))
		}
		return intOp(op, x.Int, y.Int)
	}

	return Variant{}, typeErr2(op.String(), x, y)
}

func isNumeric(v Variant) bool { return v.Kind == KindInt || v.Kind == KindFloat }

func asFloat(v Variant) float64 {
	if v.Kind == KindFloat {
		return v.Flt
	}
	return float64(v.Int)
}

func stringOp(op compiler.Opcode, x, y Variant) (Variant, error) {
	xs, ys := strtable.Global.Resolve(x.Sym), strtable.Global.Resolve(y.Sym)
	switch op {
	case compiler.ADD:
		return String(strtable.Global.Intern(xs + ys)), nil
	case compiler.LT:
		return Bool(xs < ys), nil
	case compiler.LE:
		return Bool(xs <= ys), nil
	case compiler.GT:
		return Bool(xs > ys), nil
	case compiler.GE:
		return Bool(xs >= ys), nil
	default:
		return Variant{}, typeErr2(op.String(), x, y)
	}
}

func intOp(op compiler.Opcode, a, b int64) (Variant, error) {
	switch op {
	case compiler.ADD:
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return Variant{}, &RuntimeError{Kind: OverflowError}
		}
		return Int(r), nil
	case compiler.SUB:
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return Variant{}, &RuntimeError{Kind: OverflowError}
		}
		return Int(r), nil
	case compiler.MUL:
		if a != 0 && b != 0 {
			r := a * b
			if r/b != a {
				return Variant{}, &RuntimeError{Kind: OverflowError}
			}
			return Int(r), nil
		}
		return Int(0), nil
	case compiler.DIV:
		if b == 0 {
			return Variant{}, &RuntimeError{Kind: DivideByZero}
		}
		return Int(a / b), nil
	case compiler.MOD:
		if b == 0 {
			return Variant{}, &RuntimeError{Kind: DivideByZero}
		}
		return Int(a % b), nil
	case compiler.SHL:
		if b < 0 {
			return Variant{}, &RuntimeError{Kind: NegativeShiftCount}
		}
		if b >= 64 {
			return Int(0), nil
		}
		return Int(a << uint(b)), nil
	case compiler.SHR:
		if b < 0 {
			return Variant{}, &RuntimeError{Kind: NegativeShiftCount}
		}
		if b >= 64 {
			return Int(0), nil
		}
		return Int(a >> uint(b)), nil
	case compiler.BAND:
		return Int(a & b), nil
	case compiler.BXOR:
		return Int(a ^ b), nil
	case compiler.BOR:
		return Int(a | b), nil
	case compiler.LT:
		return Bool(a < b), nil
	case compiler.LE:
		return Bool(a <= b), nil
	case compiler.GT:
		return Bool(a > b), nil
	case compiler.GE:
		return Bool(a >= b), nil
	default:
		return Variant{}, &RuntimeError{Kind: Other, Message: "unsupported integer operator " + op.String()}
	}
}

func floatOp(op compiler.Opcode, a, b float64) (Variant, error) {
	switch op {
	case compiler.ADD:
		return Float(a + b), nil
	case compiler.SUB:
		return Float(a - b), nil
	case compiler.MUL:
		return Float(a * b), nil
	case compiler.DIV:
		if b == 0 {
			return Variant{}, &RuntimeError{Kind: DivideByZero}
		}
		return Float(a / b), nil
	case compiler.MOD:
		if b == 0 {
			return Variant{}, &RuntimeError{Kind: DivideByZero}
		}
		return Float(math.Mod(a, b)), nil
	case compiler.LT:
		return Bool(a < b), nil
	case compiler.LE:
		return Bool(a <= b), nil
	case compiler.GT:
		return Bool(a > b), nil
	case compiler.GE:
		return Bool(a >= b), nil
	default:
		return Variant{}, &RuntimeError{Kind: Other, Message: "unsupported float operator " + op.String()}
	}
}

func unaryNeg(x Variant) (Variant, error) {
	switch x.Kind {
	case KindInt:
		if x.Int == math.MinInt64 {
			return Variant{}, &RuntimeError{Kind: OverflowError}
		}
		return Int(-x.Int), nil
	case KindFloat:
		return Float(-x.Flt), nil
	default:
		return Variant{}, typeErr1(x)
	}
}

func unaryBnot(x Variant) (Variant, error) {
	if x.Kind != KindInt {
		return Variant{}, typeErr1(x)
	}
	return Int(^x.Int), nil
}

// getIndex implements GETINDEX for the two indexable kinds: tuples (by
// element) and strings (by byte, re-interned as a new one-character string,
// since new strings interned at runtime are expected behavior of the
// process-wide string table).
func getIndex(base, index Variant) (Variant, error) {
	if index.Kind != KindInt {
		return Variant{}, &RuntimeError{Kind: InvalidValue, Value: index.String(), Message: "index must be an integer"}
	}
	i := index.Int
	switch base.Kind {
	case KindTuple, KindEmptyTuple:
		if i < 0 || i >= int64(len(base.Tup)) {
			return Variant{}, &RuntimeError{Kind: InvalidValue, Value: index.String(), Message: "tuple index out of range"}
		}
		return base.Tup[i], nil
	case KindString:
		s := strtable.Global.Resolve(base.Sym)
		if i < 0 || i >= int64(len(s)) {
			return Variant{}, &RuntimeError{Kind: InvalidValue, Value: index.String(), Message: "string index out of range"}
		}
		return String(strtable.Global.Intern(s[i : i+1])), nil
	default:
		return Variant{}, &RuntimeError{Kind: MethodNotSupported, TypeA: base.Kind.String(), Signature: "getindex"}
	}
}

// length implements LEN: the length of a tuple or string.
func length(v Variant) (int, error) {
	switch v.Kind {
	case KindTuple:
		return len(v.Tup), nil
	case KindEmptyTuple:
		return 0, nil
	case KindString:
		return len(strtable.Global.Resolve(v.Sym)), nil
	default:
		return 0, &RuntimeError{Kind: MethodNotSupported, TypeA: v.Kind.String(), Signature: "len"}
	}
}
