package compiler_test

import (
	"testing"

	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/parser"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
	"github.com/stretchr/testify/require"
)

func compileSrc(t *testing.T, src string) (*compiler.UnloadedProgram, error) {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(0, fset, "<test>", []byte(src))
	require.NoError(t, err)
	return compiler.CompileChunk(ch, fset, strtable.NewTable(8))
}

func TestCompileSimpleDeclAndEcho(t *testing.T) {
	prog, err := compileSrc(t, `var x = 1 + 2; echo x;`)
	require.NoError(t, err)
	require.Len(t, prog.Chunks, 1)
	require.NotEmpty(t, prog.Constants)
}

func TestCompileIfElseBalancesJumps(t *testing.T) {
	_, err := compileSrc(t, `
		var x = 1;
		if x == 1 {
			echo "one";
		} elif x == 2 {
			echo "two";
		} else {
			echo "other";
		}
	`)
	require.NoError(t, err)
}

func TestCompileWhileWithBreakAndContinue(t *testing.T) {
	_, err := compileSrc(t, `
		var i = 0;
		while i < 10 {
			i = i + 1;
			if i == 5 {
				continue;
			}
			if i == 8 {
				break;
			}
		}
	`)
	require.NoError(t, err)
}

func TestCompileForInOverTuple(t *testing.T) {
	_, err := compileSrc(t, `
		for v in (1, 2, 3) {
			echo v;
		}
	`)
	require.NoError(t, err)
}

func TestCompileFunctionDeclRecursion(t *testing.T) {
	prog, err := compileSrc(t, `
		fn fib(n) {
			if n < 2 {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		echo fib(10);
	`)
	require.NoError(t, err)
	require.Len(t, prog.Chunks, 2) // module chunk + fib's chunk
	require.Len(t, prog.Functions, 2)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	_, err := compileSrc(t, `
		fn counter() {
			var n = 0;
			fn next() {
				n = n + 1;
				return n;
			}
			return next;
		}
		echo counter();
	`)
	require.NoError(t, err)
}

func TestCompileAssignToConstIsRejected(t *testing.T) {
	_, err := compileSrc(t, `
		fn f() {
			const n = 1;
			n = 2;
		}
	`)
	require.Error(t, err)
	errs, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	require.Equal(t, compiler.InvalidAssignmentTarget, errs[0].Kind)
}

func TestCompileReturnOutsideFunctionIsRejected(t *testing.T) {
	_, err := compileSrc(t, `return 1;`)
	require.Error(t, err)
	errs, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	require.Equal(t, compiler.ReturnOutsideFunction, errs[0].Kind)
}

func TestCompileBreakOutsideLoopIsRejected(t *testing.T) {
	_, err := compileSrc(t, `break;`)
	require.Error(t, err)
	errs, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	require.Equal(t, compiler.BreakOutsideLoop, errs[0].Kind)
}

func TestCompileClassDeclarationIsUnsupported(t *testing.T) {
	_, err := compileSrc(t, `
		class Point {
			var x;
			var y;
		}
	`)
	require.Error(t, err)
	errs, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	require.Equal(t, compiler.UnsupportedConstruct, errs[0].Kind)
}

func TestCompileAttributeAccessIsUnsupported(t *testing.T) {
	_, err := compileSrc(t, `
		var x = 1;
		echo x.name;
	`)
	require.Error(t, err)
	errs, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	require.Equal(t, compiler.UnsupportedConstruct, errs[0].Kind)
}

func TestCompileIndexingATupleIsSupported(t *testing.T) {
	_, err := compileSrc(t, `
		var t = (1, 2, 3);
		echo t[0];
	`)
	require.NoError(t, err)
}

func TestCompileAssertWithMessage(t *testing.T) {
	_, err := compileSrc(t, `assert 1 == 1, "unreachable";`)
	require.NoError(t, err)
}

func TestCompileLogicalShortCircuit(t *testing.T) {
	_, err := compileSrc(t, `
		var a = true;
		var b = false;
		echo a and b;
		echo a or b;
	`)
	require.NoError(t, err)
}
