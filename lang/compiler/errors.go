package compiler

import (
	"fmt"

	"github.com/sph-lang/sphinx/lang/token"
)

// ErrorKind is the closed enumeration of compile-time error kinds.
type ErrorKind int

const (
	ConstantPoolLimit ErrorKind = iota
	ChunkCountLimit
	TooManyLocals
	UndefinedName
	InvalidAssignmentTarget
	BreakOutsideLoop
	ContinueOutsideLoop
	ReturnOutsideFunction

	// UnsupportedConstruct marks a parsed construct the code generator does
	// not lower to bytecode: attribute access, object construction, and
	// class declarations parse into a full AST (the grammar supports them)
	// but have no runtime representation, since the Variant union has no
	// object/instance kind.
	UnsupportedConstruct
)

func (k ErrorKind) String() string {
	switch k {
	case ConstantPoolLimit:
		return "constant-pool-limit"
	case ChunkCountLimit:
		return "chunk-count-limit"
	case TooManyLocals:
		return "too-many-locals"
	case UndefinedName:
		return "undefined-name"
	case InvalidAssignmentTarget:
		return "invalid-assignment-target"
	case BreakOutsideLoop:
		return "break-outside-loop"
	case ContinueOutsideLoop:
		return "continue-outside-loop"
	case ReturnOutsideFunction:
		return "return-outside-function"
	case UnsupportedConstruct:
		return "unsupported-construct"
	default:
		return "unknown"
	}
}

// Error is a single compile diagnostic.
type Error struct {
	Kind ErrorKind
	Pos  token.Position
	Msg  string
}

func (e Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// ErrorList accumulates every Error produced by a single compile pass.
type ErrorList []Error

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

// errLimit is a plain Go error (not tied to a position) raised by the
// constant pool and chunk table when a 16-bit id space overflows; the
// emitter wraps it into a compiler.Error at the call site where it has a
// position to attach.
type limitError struct {
	what  string
	limit int
}

func (e limitError) Error() string {
	return fmt.Sprintf("%s exceeds limit of %d entries", e.what, e.limit)
}

func errLimit(what string, limit int) error { return limitError{what: what, limit: limit} }
