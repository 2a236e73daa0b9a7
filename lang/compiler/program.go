package compiler

// UpvalueDesc describes one upvalue captured by a function: either a local
// slot of the immediately enclosing function, or an upvalue already captured
// by that enclosing function (passed through).
type UpvalueDesc struct {
	FromParentLocal bool // true: Index is a local slot of the parent; false: Index is a parent upvalue index
	Index           uint16
}

// FuncProto is a function's static signature and entry point: everything
// about it that doesn't change between calls.
type FuncProto struct {
	Name            string
	ChunkID         uint16
	RequiredParams  int
	OptionalParams  int // params with a default-value slot
	Variadic        bool
	Upvalues        []UpvalueDesc
	NumLocals       int // size of the stack frame's local slot space
}

func (f *FuncProto) MinArity() int { return f.RequiredParams }

func (f *FuncProto) MaxArity() int {
	if f.Variadic {
		return -1
	}
	return f.RequiredParams + f.OptionalParams
}

// UnloadedProgram is the self-contained output of one compilation: a flat
// byte buffer holding every chunk's bytecode back to back, a table locating
// each chunk's bytes within that buffer, a table locating each build-local
// string's bytes, the constant pool, and the function-prototype table. It
// can be handed straight to the loader, or exported in some external
// format (not mandated here).
type UnloadedProgram struct {
	Name string

	// Bytes is the single flat arena: chunk bytecode followed by every
	// interned string's raw bytes, concatenated in build-local symbol order.
	Bytes []byte

	Chunks    []ChunkRef
	Strings   []StringRef
	Constants []Constant
	Functions []FuncProto

	chunks []*chunk    // transient, only valid during compilation
	funcs  []*FuncProto // transient, only valid during compilation
}

// ChunkRef locates one chunk's bytecode within UnloadedProgram.Bytes.
type ChunkRef struct {
	Offset, Length int
	Symbols        []symbol
}

// StringRef locates one build-local interned string's bytes within
// UnloadedProgram.Bytes.
type StringRef struct {
	Offset, Length int
}

// SymbolAt binary-searches this chunk's debug-symbol table for the entry
// covering the given bytecode offset, the same lookup a chunk performs on
// itself during compilation, exposed here so a loader or VM traceback can
// resolve an offset back to a source span without reaching into the
// unexported symbol type.
func (r ChunkRef) SymbolAt(off int) (start, end int32, ok bool) {
	lo, hi := 0, len(r.Symbols)
	for lo < hi {
		mid := (lo + hi) / 2
		if r.Symbols[mid].offset <= off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, 0, false
	}
	s := r.Symbols[lo-1]
	return s.start, s.end, true
}

// finalize concatenates every chunk buffer and every interned string's bytes
// into one arena, recording their offsets.
func (up *UnloadedProgram) finalize(strs []string) {
	var arena []byte
	up.Chunks = make([]ChunkRef, len(up.chunks))
	for i, c := range up.chunks {
		up.Chunks[i] = ChunkRef{Offset: len(arena), Length: len(c.code), Symbols: c.symbols}
		arena = append(arena, c.code...)
	}
	up.Strings = make([]StringRef, len(strs))
	for i, s := range strs {
		up.Strings[i] = StringRef{Offset: len(arena), Length: len(s)}
		arena = append(arena, s...)
	}
	up.Bytes = arena

	up.Functions = make([]FuncProto, len(up.funcs))
	for i, p := range up.funcs {
		up.Functions[i] = *p
	}
}

func (up *UnloadedProgram) newChunk() (uint16, *chunk, error) {
	if len(up.chunks) >= 1<<16 {
		return 0, nil, errLimit("chunk", 1<<16)
	}
	id := uint16(len(up.chunks))
	c := &chunk{}
	up.chunks = append(up.chunks, c)
	return id, c, nil
}

// newFunc registers a function prototype under construction and returns its
// dense function id. Function ids and chunk ids are assigned in lockstep (one
// chunk per function, including the synthetic module chunk), so callers pass
// the chunk id they just allocated and get back the same id for the
// function-constant table.
func (up *UnloadedProgram) newFunc(proto *FuncProto) (uint16, error) {
	if len(up.funcs) >= 1<<16 {
		return 0, errLimit("function", 1<<16)
	}
	id := uint16(len(up.funcs))
	up.funcs = append(up.funcs, proto)
	return id, nil
}
