package strtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableDedup(t *testing.T) {
	tbl := NewTable(4)
	a := tbl.GetOrIntern("hello")
	b := tbl.GetOrIntern("world")
	c := tbl.GetOrIntern("hello")

	require.Equal(t, a, c)
	require.NotEqual(t, a, b)
	require.Equal(t, Symbol(0), a)
	require.Equal(t, Symbol(1), b)
	require.Equal(t, "hello", tbl.Resolve(a))
	require.Equal(t, "world", tbl.Resolve(b))
	require.Equal(t, 2, tbl.Len())
}

func TestTableResolveOutOfRangePanics(t *testing.T) {
	tbl := NewTable(1)
	require.Panics(t, func() { tbl.Resolve(42) })
}

func TestGlobalTableMonotonic(t *testing.T) {
	before := Global.Len()
	sym := Global.Intern("a process-wide-unique-string-for-testing")
	require.Equal(t, "a process-wide-unique-string-for-testing", Global.Resolve(sym))
	require.GreaterOrEqual(t, Global.Len(), before+1)

	// interning the same text again must not grow the table further.
	sym2 := Global.Intern("a process-wide-unique-string-for-testing")
	require.Equal(t, sym, sym2)
}
