package machine

import (
	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
)

// ConstKind tags the payload of a loaded Constant, mirroring
// compiler.ConstKind but with string constants translated to global symbols.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstFunction
)

// Constant is one entry of a loaded program's constant pool.
type Constant struct {
	Kind            ConstKind
	Int             int64
	Float           float64
	Sym             strtable.Symbol
	ChunkID, FuncID uint16
}

// Chunk is one function's (or the top-level's) bytecode, loaded and ready to
// execute, plus the compiler's debug-symbol table retained for traceback
// resolution.
type Chunk struct {
	Code []byte
	ref  compiler.ChunkRef
}

// NewChunk wraps code (a slice into the program's flat arena) together with
// the ChunkRef the compiler produced for it, so SymbolAt can resolve offsets
// without this package ever touching the compiler's unexported symbol type.
func NewChunk(code []byte, ref compiler.ChunkRef) *Chunk {
	return &Chunk{Code: code, ref: ref}
}

// SymbolAt resolves a bytecode offset within this chunk to the source span
// that produced it, if any debug symbol covers it.
func (c *Chunk) SymbolAt(off int) (start, end token.Pos, ok bool) {
	s, e, ok := c.ref.SymbolAt(off)
	return token.Pos(s), token.Pos(e), ok
}

// Program is a fully loaded, executable unit: chunks with global string
// symbols instead of build-local indices, the function-prototype table
// copied straight through from the compiler, and the file set needed to
// translate a Pos into a human-readable position for tracebacks.
type Program struct {
	Name      string
	Chunks    []*Chunk
	Constants []Constant
	Functions []compiler.FuncProto
	FileSet   *token.FileSet
}
