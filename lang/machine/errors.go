package machine

import (
	"fmt"
	"strings"

	"github.com/sph-lang/sphinx/lang/token"
)

// ErrorKind is the closed enumeration of runtime error kinds.
type ErrorKind int

const (
	InvalidUnaryOperand ErrorKind = iota
	InvalidBinaryOperand
	OverflowError
	DivideByZero
	NegativeShiftCount
	NameNotDefined
	CantAssignImmutable
	UnhashableValue
	MissingArguments
	TooManyArguments
	MethodNotSupported
	AssertFailed
	InvalidValue
	Other
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidUnaryOperand:
		return "invalid-unary-operand"
	case InvalidBinaryOperand:
		return "invalid-binary-operand"
	case OverflowError:
		return "overflow-error"
	case DivideByZero:
		return "divide-by-zero"
	case NegativeShiftCount:
		return "negative-shift-count"
	case NameNotDefined:
		return "name-not-defined"
	case CantAssignImmutable:
		return "cant-assign-immutable"
	case UnhashableValue:
		return "unhashable-value"
	case MissingArguments:
		return "missing-arguments"
	case TooManyArguments:
		return "too-many-arguments"
	case MethodNotSupported:
		return "method-not-supported"
	case AssertFailed:
		return "assert-failed"
	case InvalidValue:
		return "invalid-value"
	default:
		return "other"
	}
}

// TraceSite is one frame recorded into a RuntimeError's traceback as the VM
// unwinds: the name of the function running in that frame, and the source
// position its current instruction offset resolves to (zero if the chunk
// carries no debug symbol there).
type TraceSite struct {
	FuncName string
	Pos      token.Position
}

// RuntimeError is the single error type every VM opcode handler may return.
// It carries a kind from the closed ErrorKind enumeration, kind-specific
// detail fields (only the ones relevant to Kind are populated), an optional
// causing error, and an ordered list of trace sites appended by each frame
// the error passes through as the VM unwinds, innermost first.
type RuntimeError struct {
	Kind  ErrorKind
	Cause error

	// detail fields, populated depending on Kind
	TypeA, TypeB string // InvalidUnaryOperand / InvalidBinaryOperand
	Name         string // NameNotDefined / CantAssignImmutable
	Value        string // UnhashableValue / InvalidValue
	Signature    string // MissingArguments / TooManyArguments / MethodNotSupported
	NArgs        int    // MissingArguments / TooManyArguments
	Message      string // AssertFailed / InvalidValue / Other

	Trace []TraceSite
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case InvalidUnaryOperand:
		fmt.Fprintf(&b, "invalid operand to unary operator: %s", e.TypeA)
	case InvalidBinaryOperand:
		fmt.Fprintf(&b, "invalid operands to binary operator: %s, %s", e.TypeA, e.TypeB)
	case OverflowError:
		b.WriteString("integer overflow")
	case DivideByZero:
		b.WriteString("division by zero")
	case NegativeShiftCount:
		b.WriteString("negative shift count")
	case NameNotDefined:
		fmt.Fprintf(&b, "name %q is not defined", e.Name)
	case CantAssignImmutable:
		fmt.Fprintf(&b, "cannot assign to const %q", e.Name)
	case UnhashableValue:
		fmt.Fprintf(&b, "unhashable value: %s", e.Value)
	case MissingArguments:
		fmt.Fprintf(&b, "missing arguments: %s called with %d args", e.Signature, e.NArgs)
	case TooManyArguments:
		fmt.Fprintf(&b, "too many arguments: %s called with %d args", e.Signature, e.NArgs)
	case MethodNotSupported:
		fmt.Fprintf(&b, "%s does not support %s", e.TypeA, e.Signature)
	case AssertFailed:
		if e.Message != "" {
			fmt.Fprintf(&b, "assertion failed: %s", e.Message)
		} else {
			b.WriteString("assertion failed")
		}
	case InvalidValue:
		fmt.Fprintf(&b, "invalid value %s: %s", e.Value, e.Message)
	default:
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %s", e.Cause)
	}
	for _, site := range e.Trace {
		fmt.Fprintf(&b, "\n\tin %s at %s", site.FuncName, site.Pos)
	}
	return b.String()
}

func (e *RuntimeError) Unwrap() error { return e.Cause }
