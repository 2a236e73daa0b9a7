package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing a string representation", tok)
	}
}

func TestLookupKeyword(t *testing.T) {
	for tok := AND; tok <= SUPER; tok++ {
		got, ok := LookupKeyword(tok.String())
		require.True(t, ok)
		require.Equal(t, tok, got)
	}

	_, ok := LookupKeyword("notakeyword")
	require.False(t, ok)
}

func TestBinaryPrecedenceTable(t *testing.T) {
	cases := []struct {
		tok   Token
		level int
	}{
		{STAR, 2}, {SLASH, 2}, {PERCENT, 2},
		{PLUS, 3}, {MINUS, 3},
		{LTLT, 4}, {GTGT, 4},
		{AMP, 5}, {CIRCUMFLEX, 6}, {PIPE, 7},
		{LT, 8}, {GT, 8}, {LE, 8}, {GE, 8}, {EQL, 8}, {NEQ, 8},
		{AND, 9}, {OR, 10},
		{IDENT, 0}, {LPAREN, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.level, c.tok.BinaryPrecedence(), "%v", c.tok)
	}
}

func TestGoStringQuotesPunctuation(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestIsKeyword(t *testing.T) {
	require.True(t, FN.IsKeyword())
	require.False(t, IDENT.IsKeyword())
	require.False(t, PLUS.IsKeyword())
}
