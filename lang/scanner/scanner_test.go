package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sph-lang/sphinx/lang/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value, []token.Position) {
	t.Helper()
	fset := token.NewFileSet()
	f := fset.AddFile("<test>", 1, len(src))

	var errs []token.Position
	var s Scanner
	s.Init(f, []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, pos)
	})

	var toks []token.Token
	var vals []token.Value
	for {
		var v token.Value
		tok := s.Scan(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, errs
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, vals, errs := scanAll(t, "+ - <= << = == !=")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.PLUS, token.MINUS, token.LE, token.LTLT, token.EQ, token.EQL, token.NEQ, token.EOF,
	}, toks)
	require.Equal(t, "!=", vals[6].Raw)
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	toks, vals, errs := scanAll(t, "fn andy and x")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.FN, token.IDENT, token.AND, token.IDENT, token.EOF}, toks)
	require.Equal(t, "andy", vals[1].Str)
}

func TestKeywordWordBoundaryProperty(t *testing.T) {
	toks, _, _ := scanAll(t, "and")
	require.Equal(t, []token.Token{token.AND, token.EOF}, toks)

	toks, vals, _ := scanAll(t, "and_suffix")
	require.Equal(t, []token.Token{token.IDENT, token.EOF}, toks)
	require.Equal(t, "and_suffix", vals[0].Str)
}

func TestScanNumbers(t *testing.T) {
	toks, vals, errs := scanAll(t, "123 1.5 1e10 2.5e-3")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.INT, token.FLOAT, token.FLOAT, token.FLOAT, token.EOF}, toks)
	require.Equal(t, int64(123), vals[0].Int)
	require.InDelta(t, 1.5, vals[1].Float, 1e-9)
	require.InDelta(t, 1e10, vals[2].Float, 1)
	require.InDelta(t, 2.5e-3, vals[3].Float, 1e-9)
}

func TestScanString(t *testing.T) {
	toks, vals, errs := scanAll(t, `"hello\nworld"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.EOF}, toks)
	require.Equal(t, "hello\nworld", vals[0].Str)
}

func TestScanIllegalCharacter(t *testing.T) {
	toks, _, errs := scanAll(t, "@")
	require.NotEmpty(t, errs)
	require.Equal(t, []token.Token{token.ILLEGAL, token.EOF}, toks)
}

func TestSpansCoverNonWhitespaceBytes(t *testing.T) {
	src := "fn  x  ( )"
	toks, vals, errs := scanAll(t, src)
	require.Empty(t, errs)
	require.NotEmpty(t, toks)

	var covered int
	for i, tok := range toks {
		if tok == token.EOF {
			continue
		}
		s, e := vals[i].Span()
		covered += int(e - s)
	}
	nonWS := 0
	for _, c := range src {
		if c != ' ' {
			nonWS++
		}
	}
	require.Equal(t, nonWS, covered)
}

func TestLineNumbersIncrementPerNewline(t *testing.T) {
	_, vals, _ := scanAll(t, "x\ny\nz")
	require.Equal(t, 1, vals[0].Line)
	require.Equal(t, 2, vals[1].Line)
	require.Equal(t, 3, vals[2].Line)
}
