package machine

import "github.com/sph-lang/sphinx/lang/compiler"

// Function is a closure: an immutable reference to its static prototype
// (name, arity, entry chunk) plus the array of upvalue cells it captured at
// creation time. Function values are immutable after construction; calling
// one never mutates the Function itself, only the Upvalue cells it shares
// with its defining scope.
type Function struct {
	Proto   *compiler.FuncProto
	Upvals  []*Upvalue
	Program *Program
}

func (fn *Function) Name() string {
	if fn.Proto.Name == "" {
		return "<anonymous>"
	}
	return fn.Proto.Name
}
