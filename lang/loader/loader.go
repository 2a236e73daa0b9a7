// Package loader turns the compiler's self-contained, build-local unloaded
// program into a program the virtual machine can run: every interned string
// is re-interned into the process-wide string table, and the flat byte arena
// is sliced down into per-chunk bytecode plus per-chunk debug symbols.
package loader

import (
	"fmt"
	"math"

	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/machine"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
)

// Load re-interns up's build-local strings into the process-wide string
// table and builds a machine.Program ready for execution. fset is the file
// set the program's debug symbols were recorded against; it is retained on
// the resulting program so tracebacks can resolve a Pos to a filename, line
// and column.
func Load(up *compiler.UnloadedProgram, fset *token.FileSet) (*machine.Program, error) {
	globalSyms := make([]strtable.Symbol, len(up.Strings))
	for i, sr := range up.Strings {
		text := string(up.Bytes[sr.Offset : sr.Offset+sr.Length])
		globalSyms[i] = strtable.Global.Intern(text)
	}

	consts := make([]machine.Constant, len(up.Constants))
	for i, c := range up.Constants {
		switch c.Kind {
		case compiler.ConstInt:
			consts[i] = machine.Constant{Kind: machine.ConstInt, Int: c.Int}
		case compiler.ConstFloat:
			consts[i] = machine.Constant{Kind: machine.ConstFloat, Float: math.Float64frombits(c.FloatBit)}
		case compiler.ConstString:
			if int(c.StrIdx) >= len(globalSyms) {
				return nil, fmt.Errorf("loader: string constant %d references out-of-range build-local symbol %d", i, c.StrIdx)
			}
			consts[i] = machine.Constant{Kind: machine.ConstString, Sym: globalSyms[c.StrIdx]}
		case compiler.ConstFunction:
			consts[i] = machine.Constant{Kind: machine.ConstFunction, ChunkID: c.ChunkID, FuncID: c.FuncID}
		default:
			return nil, fmt.Errorf("loader: constant %d has unknown kind %v", i, c.Kind)
		}
	}

	chunks := make([]*machine.Chunk, len(up.Chunks))
	for i, ref := range up.Chunks {
		code := up.Bytes[ref.Offset : ref.Offset+ref.Length]
		chunks[i] = machine.NewChunk(code, ref)
	}

	return &machine.Program{
		Name:      up.Name,
		Chunks:    chunks,
		Constants: consts,
		Functions: up.Functions,
		FileSet:   fset,
	}, nil
}
