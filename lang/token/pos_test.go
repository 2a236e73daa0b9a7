package token

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type startEnd struct{ s, e Pos }

func (se startEnd) Span() (start, end Pos) { return se.s, se.e }

func TestPosInside(t *testing.T) {
	cases := []struct {
		ref, test startEnd
		want      bool
	}{
		{startEnd{1, 2}, startEnd{3, 4}, false},
		{startEnd{1, 3}, startEnd{3, 4}, false},
		{startEnd{1, 4}, startEnd{3, 4}, true},
		{startEnd{2, 4}, startEnd{3, 4}, true},
		{startEnd{3, 4}, startEnd{3, 4}, true},
		{startEnd{4, 5}, startEnd{3, 4}, false},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%v-%v", c.ref, c.test), func(t *testing.T) {
			require.Equal(t, c.want, PosInside(c.ref, c.test))
		})
	}
}

func TestPosAdjacent(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("test", 1, 10)
	f.AddLine(3)
	f.AddLine(5)
	f.AddLine(8)

	cases := []struct {
		ref, test startEnd
		want      bool
	}{
		{startEnd{1, 1}, startEnd{1, 1}, true},
		{startEnd{1, 1}, startEnd{6, 6}, false},
		{startEnd{4, 4}, startEnd{4, 4}, true},
		{startEnd{4, 4}, startEnd{6, 6}, true},
		{startEnd{6, 6}, startEnd{4, 4}, true},
		{startEnd{4, 8}, startEnd{1, 2}, true},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%v-%v", c.ref, c.test), func(t *testing.T) {
			require.Equal(t, c.want, PosAdjacent(c.ref, c.test, f))
		})
	}
}

func TestFormatPos(t *testing.T) {
	fset := NewFileSet()
	f0 := fset.AddFile("test", 1, 10)

	cases := []struct {
		pos  Pos
		mode PosMode
		want string
	}{
		{NoPos, PosLong, "test:-:-"},
		{NoPos, PosOffsets, "-"},
		{NoPos, PosRaw, "0"},
		{NoPos, PosNone, ""},
		{1, PosLong, "test:1:1"},
		{1, PosOffsets, "0"},
		{1, PosRaw, "1"},
		{10, PosLong, "test:1:10"},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d:%s", c.pos, c.mode), func(t *testing.T) {
			require.Equal(t, c.want, FormatPos(c.mode, f0, c.pos, true))
		})
	}
}
