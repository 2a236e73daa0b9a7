package machine

import "github.com/sph-lang/sphinx/lang/strtable"

// global is one binding in a Module's environment: a variant value plus
// whether it may be reassigned (declared with const vs var).
type global struct {
	val     Variant
	mutable bool
}

// Module is the dynamic counterpart of a loaded Program: the global
// environment every chunk's DEFGLOBAL/GLOBAL/SETGLOBAL instructions read and
// write. A REPL reuses the same Module across successive compilations so
// that top-level bindings persist between submissions; a one-shot run uses a
// fresh Module that is discarded after execution.
type Module struct {
	Program *Program
	globals map[strtable.Symbol]*global
}

// NewModule creates an empty global environment bound to prog (prog may be
// replaced on a later Run call against the same Module, since a REPL
// recompiles a fresh Program each submission but keeps its globals).
func NewModule(prog *Program) *Module {
	return &Module{Program: prog, globals: make(map[strtable.Symbol]*global)}
}

func (m *Module) lookup(sym strtable.Symbol) (Variant, bool) {
	g, ok := m.globals[sym]
	if !ok {
		return Variant{}, false
	}
	return g.val, true
}

// define declares a new global (var or const), or redeclares an existing one
// (the REPL rebinding a name across submissions is not an error).
func (m *Module) define(sym strtable.Symbol, v Variant, mutable bool) {
	m.globals[sym] = &global{val: v, mutable: mutable}
}

// assign updates an existing global. Reports CantAssignImmutable if the
// binding was declared const, NameNotDefined if no such global exists.
func (m *Module) assign(sym strtable.Symbol, v Variant) error {
	g, ok := m.globals[sym]
	if !ok {
		return &RuntimeError{Kind: NameNotDefined, Name: strtable.Global.Resolve(sym)}
	}
	if !g.mutable {
		return &RuntimeError{Kind: CantAssignImmutable, Name: strtable.Global.Resolve(sym)}
	}
	g.val = v
	return nil
}
