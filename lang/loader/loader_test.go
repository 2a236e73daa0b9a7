package loader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/loader"
	"github.com/sph-lang/sphinx/lang/machine"
	"github.com/sph-lang/sphinx/lang/parser"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
)

func compileSrc(t *testing.T, src string) (*compiler.UnloadedProgram, *token.FileSet) {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(0, fset, "<test>", []byte(src))
	require.NoError(t, err)
	up, err := compiler.CompileChunk(ch, fset, strtable.NewTable(8))
	require.NoError(t, err)
	return up, fset
}

func TestLoadInternsStringsIntoGlobalTable(t *testing.T) {
	up, fset := compileSrc(t, `echo "hello";`)
	prog, err := loader.Load(up, fset)
	require.NoError(t, err)

	var found bool
	for _, c := range prog.Constants {
		if c.Kind == machine.ConstString {
			require.Equal(t, "hello", strtable.Global.Resolve(c.Sym))
			found = true
		}
	}
	require.True(t, found, "expected a string constant to survive loading")
}

func TestLoadSlicesChunksByOffset(t *testing.T) {
	up, fset := compileSrc(t, `
		fn f() {
			return 1;
		}
		echo f();
	`)
	prog, err := loader.Load(up, fset)
	require.NoError(t, err)
	require.Len(t, prog.Chunks, 2)
	for _, c := range prog.Chunks {
		require.NotEmpty(t, c.Code)
	}
}

func TestLoadRejectsOutOfRangeStringConstant(t *testing.T) {
	up, fset := compileSrc(t, `var x = 1;`)
	// Corrupt a constant to reference a string index beyond the build-local
	// string table, as would happen if a loader consumed an unloaded program
	// produced by a mismatched compiler version.
	up.Constants = append(up.Constants, compiler.Constant{
		Kind:   compiler.ConstString,
		StrIdx: uint32(len(up.Strings) + 1),
	})
	_, err := loader.Load(up, fset)
	require.Error(t, err)
}
