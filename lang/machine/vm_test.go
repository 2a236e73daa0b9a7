package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/loader"
	"github.com/sph-lang/sphinx/lang/machine"
	"github.com/sph-lang/sphinx/lang/parser"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
)

// runSrc parses, compiles, loads and executes src against a fresh module,
// returning whatever it wrote to stdout and the run error, if any.
func runSrc(t *testing.T, src string) (string, error) {
	t.Helper()

	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(0, fset, "<test>", []byte(src))
	require.NoError(t, err)

	up, err := compiler.CompileChunk(ch, fset, strtable.NewTable(8))
	require.NoError(t, err)

	prog, err := loader.Load(up, fset)
	require.NoError(t, err)

	var out bytes.Buffer
	th := &machine.Thread{Stdout: &out}
	_, runErr := th.Run(context.Background(), prog, machine.NewModule(nil))
	return out.String(), runErr
}

func TestEchoArithmetic(t *testing.T) {
	out, err := runSrc(t, `echo 1 + 2;`)
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestVarDeclAndExpr(t *testing.T) {
	out, err := runSrc(t, `var x = 10; echo x * x;`)
	require.NoError(t, err)
	require.Equal(t, "100\n", out)
}

// TestReassignmentDoesNotLeakStackSlot guards against a compiler bug where
// compileAssign pushed a stray DUP before storeName: since SETLOCAL already
// leaves the assigned value on top of the stack, the extra DUP shifted every
// local declared afterward in the same scope by one slot.
func TestReassignmentDoesNotLeakStackSlot(t *testing.T) {
	out, err := runSrc(t, `{ var a = 1; a = 2; var b = 3; echo a + b; }`)
	require.NoError(t, err)
	require.Equal(t, "5\n", out)
}

// TestForLoopIncrementDoesNotLeakStackSlot guards against a compiler bug
// where the for-loop's cursor increment stored the new cursor value with
// SETLOCAL but never popped it, leaking one stack slot per iteration and
// corrupting the slot of any local declared after the loop.
func TestForLoopIncrementDoesNotLeakStackSlot(t *testing.T) {
	out, err := runSrc(t, `
		for v in (1, 2, 3) {
			echo v;
		}
		var after = 9;
		echo after;
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n9\n", out)
}

func TestRecursiveFunctionCall(t *testing.T) {
	out, err := runSrc(t, `
		fn fib(n) {
			if n < 2 {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		echo fib(10);
	`)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}

func TestClosureGetterSetterShareUpvalue(t *testing.T) {
	// Two closures created in the same call to makeCounter capture the same
	// local slot; MAKECLOSURE must dedup the upvalue so the setter's writes
	// are visible through the getter.
	out, err := runSrc(t, `
		fn makeCounter() {
			var n = 0;
			fn get() {
				return n;
			}
			fn inc() {
				n = n + 1;
			}
			return (get, inc);
		}
		var pair = makeCounter();
		var get = pair[0];
		var inc = pair[1];
		echo get();
		inc();
		inc();
		echo get();
	`)
	require.NoError(t, err)
	require.Equal(t, "0\n2\n", out)
}

func TestMissingArgumentsError(t *testing.T) {
	_, err := runSrc(t, `
		fn add(a, b) {
			return a + b;
		}
		add(1);
	`)
	require.Error(t, err)
	var re *machine.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, machine.MissingArguments, re.Kind)
}

func TestTooManyArgumentsError(t *testing.T) {
	_, err := runSrc(t, `
		fn add(a, b) {
			return a + b;
		}
		add(1, 2, 3);
	`)
	require.Error(t, err)
	var re *machine.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, machine.TooManyArguments, re.Kind)
}

func TestDivideByZero(t *testing.T) {
	_, err := runSrc(t, `echo 1 / 0;`)
	require.Error(t, err)
	var re *machine.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, machine.DivideByZero, re.Kind)
}

func TestNegativeShiftCount(t *testing.T) {
	_, err := runSrc(t, `echo 1 << -1;`)
	require.Error(t, err)
	var re *machine.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, machine.NegativeShiftCount, re.Kind)
}

func TestInvalidBinaryOperand(t *testing.T) {
	_, err := runSrc(t, `echo "a" + 1;`)
	require.Error(t, err)
	var re *machine.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, machine.InvalidBinaryOperand, re.Kind)
}

func TestAssertFailureRecordsTrace(t *testing.T) {
	_, err := runSrc(t, `
		fn check() {
			assert false, "nope";
		}
		check();
	`)
	require.Error(t, err)
	var re *machine.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, machine.AssertFailed, re.Kind)
	require.NotEmpty(t, re.Trace)
}

func TestVariadicParamsCollectIntoTuple(t *testing.T) {
	out, err := runSrc(t, `
		fn sum(...nums) {
			var total = 0;
			for n in nums {
				total = total + n;
			}
			return total;
		}
		echo sum(1, 2, 3, 4);
	`)
	require.NoError(t, err)
	require.Equal(t, "10\n", out)
}

func TestOptionalParamUsesDefaultWhenOmitted(t *testing.T) {
	out, err := runSrc(t, `
		fn greet(name, greeting = "hi") {
			echo greeting;
		}
		greet("a");
	`)
	require.NoError(t, err)
	require.Equal(t, "hi\n", out)
}
