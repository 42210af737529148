package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/rill/internal/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScanTokens_Punctuation(t *testing.T) {
	s := New("(){},.-+;*/")
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	assert.Equal(t, []token.Kind{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON,
		token.STAR, token.SLASH, token.EOF,
	}, kinds(tokens))
}

func TestScanTokens_TwoCharOperators(t *testing.T) {
	s := New("! != = == < <= > >=")
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	assert.Equal(t, []token.Kind{
		token.BANG, token.BANG_EQUAL, token.EQUAL, token.EQUAL_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL, token.EOF,
	}, kinds(tokens))
}

func TestScanTokens_CommentsAreDiscarded(t *testing.T) {
	s := New("var a = 1; // trailing comment\nvar b = 2;")
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	assert.NotContains(t, kinds(tokens), token.SLASH)
}

func TestScanTokens_String(t *testing.T) {
	s := New(`"hello"`)
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	require.Len(t, tokens, 2)
	assert.Equal(t, token.STRING, tokens[0].Kind)
	assert.Equal(t, "hello", tokens[0].Literal)
}

func TestScanTokens_MultilineStringTracksLine(t *testing.T) {
	s := New("\"a\nb\"\nvar")
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	require.Len(t, tokens, 3)
	assert.Equal(t, 2, tokens[0].Line) // string token reports the line it closed on
	assert.Equal(t, 3, tokens[1].Line) // `var` follows another newline
}

func TestScanTokens_UnterminatedString(t *testing.T) {
	s := New(`"never closes`)
	s.ScanTokens()
	require.True(t, s.HasErrors())
	assert.Contains(t, s.Err.Error(), "Unterminated string.")
}

func TestScanTokens_Number(t *testing.T) {
	s := New("123 3.14 0")
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	assert.Equal(t, 123.0, tokens[0].Literal)
	assert.Equal(t, 3.14, tokens[1].Literal)
	assert.Equal(t, 0.0, tokens[2].Literal)
}

func TestScanTokens_KeywordsAndIdentifiers(t *testing.T) {
	s := New("and class else false for fun if nil or print return super this true var while foo")
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	want := []token.Kind{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FOR, token.FUN,
		token.IF, token.NIL, token.OR, token.PRINT, token.RETURN, token.SUPER,
		token.THIS, token.TRUE, token.VAR, token.WHILE, token.IDENTIFIER, token.EOF,
	}
	assert.Equal(t, want, kinds(tokens))
}

func TestScanTokens_UnexpectedCharacterContinuesScanning(t *testing.T) {
	s := New("var a = 1;\n$\nvar b = 2;")
	tokens := s.ScanTokens()
	require.True(t, s.HasErrors())
	assert.Contains(t, s.Err.Error(), "Unexpected character: $")
	// Scanning continued past the bad character.
	assert.Contains(t, kinds(tokens), token.VAR)
	var varCount int
	for _, k := range kinds(tokens) {
		if k == token.VAR {
			varCount++
		}
	}
	assert.Equal(t, 2, varCount)
}

func TestScanTokens_EOFHasFinalLine(t *testing.T) {
	s := New("var a;\n\n")
	tokens := s.ScanTokens()
	last := tokens[len(tokens)-1]
	assert.Equal(t, token.EOF, last.Kind)
	assert.Equal(t, 3, last.Line)
}

func TestToken_RenderFormat(t *testing.T) {
	s := New(`var greeting = "hi"; 3.0;`)
	tokens := s.ScanTokens()
	require.False(t, s.HasErrors())
	assert.Equal(t, "VAR var null", tokens[0].String())
	assert.Equal(t, `STRING "hi" hi`, tokens[3].String())
	assert.Equal(t, "NUMBER 3.0 3.0", tokens[5].String())
}
