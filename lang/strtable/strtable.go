// Package strtable implements string interning: mapping byte sequences to
// small dense integer symbols so that equality and hashing of identifiers and
// string literals become integer operations.
//
// Two flavors are provided. Table is a general-purpose interner used both as
// the per-compilation build-local table (one per parse/compile pass) and,
// wrapped by Global, as the single process-wide table that runtime string
// values are interned into. The table never removes entries: once a symbol is
// handed out it remains valid, and resolving it always returns the same text.
package strtable

import (
	"sync"

	"github.com/dolthub/swiss"
)

// Symbol is a dense interned-string identifier, starting at 0 within a given
// Table.
type Symbol int32

// Table interns byte sequences into Symbols. The zero value is ready to use.
// Table itself performs no locking; callers that share a Table across
// goroutines must synchronize externally (see Global for the process-wide,
// lock-protected instance).
type Table struct {
	byText *swiss.Map[string, Symbol]
	byID   []string
}

// NewTable returns an empty Table pre-sized for size entries.
func NewTable(size int) *Table {
	if size < 1 {
		size = 1
	}
	return &Table{byText: swiss.NewMap[string, Symbol](uint32(size))}
}

// GetOrIntern returns the Symbol for text, assigning it a new dense id the
// first time it is seen.
func (t *Table) GetOrIntern(text string) Symbol {
	if t.byText == nil {
		t.byText = swiss.NewMap[string, Symbol](8)
	}
	if sym, ok := t.byText.Get(text); ok {
		return sym
	}
	sym := Symbol(len(t.byID))
	// the map key must outlive the lookup; copy so the caller's buffer (e.g. a
	// slice of scanner input) can be reused or discarded.
	owned := string([]byte(text))
	t.byText.Put(owned, sym)
	t.byID = append(t.byID, owned)
	return sym
}

// Resolve returns the text for sym. It panics if sym was never interned in
// this table, which indicates a compiler invariant violation.
func (t *Table) Resolve(sym Symbol) string {
	if int(sym) < 0 || int(sym) >= len(t.byID) {
		panic("strtable: symbol out of range")
	}
	return t.byID[sym]
}

// Len returns the number of distinct strings interned so far.
func (t *Table) Len() int { return len(t.byID) }

// global is the process-wide string table described by the interner
// component: lazily initialized, lives for the process, never shrinks.
// Resolution only ever reads; interning only ever writes, and the RWMutex
// lets many resolutions proceed concurrently while serializing against the
// rare insert. Within a single running VM, the spec guarantees these two
// operations never overlap (interning happens only at load time or when
// constructing fresh runtime strings, resolution only while formatting), so
// the lock mostly protects against accidental multi-VM sharing.
type global struct {
	mu    sync.RWMutex
	table Table
}

var Global = newGlobal()

func newGlobal() *global {
	g := &global{}
	g.table.byText = swiss.NewMap[string, Symbol](64)
	return g
}

// Intern interns text into the process-wide table and returns its Symbol.
func (g *global) Intern(text string) Symbol {
	g.mu.RLock()
	if sym, ok := g.table.byText.Get(text); ok {
		g.mu.RUnlock()
		return sym
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.table.GetOrIntern(text)
}

// Resolve returns the text for a Symbol previously returned by Intern.
func (g *global) Resolve(sym Symbol) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.table.Resolve(sym)
}

// Len reports how many distinct strings have been interned process-wide.
func (g *global) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.table.Len()
}
