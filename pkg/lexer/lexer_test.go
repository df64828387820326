package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/lexer"
	"github.com/kristofer/lumen/pkg/token"
)

func scanAll(source string) []token.Token {
	l := lexer.New(source)
	var tokens []token.Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF || tok.Type == token.Error {
			break
		}
	}
	return tokens
}

func TestScansPunctuationAndOperators(t *testing.T) {
	tokens := scanAll("(){},.-+;*/!= == <= >=")
	types := make([]token.Type, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Star, token.Slash, token.BangEqual, token.EqualEqual,
		token.LessEqual, token.GreaterEqual, token.EOF,
	}
	assert.Equal(t, want, types)
}

func TestScansAndOrSigils(t *testing.T) {
	tokens := scanAll("&& ||")
	require.Len(t, tokens, 3)
	assert.Equal(t, token.And, tokens[0].Type)
	assert.Equal(t, token.Or, tokens[1].Type)
}

func TestLoneAmpersandIsAnError(t *testing.T) {
	tok := lexer.New("&").Next()
	assert.Equal(t, token.Error, tok.Type)
}

func TestScansStringLiteral(t *testing.T) {
	tok := lexer.New(`"hello world"`).Next()
	assert.Equal(t, token.String, tok.Type)
	assert.Equal(t, `"hello world"`, tok.Lexeme)
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	tok := lexer.New(`"oops`).Next()
	assert.Equal(t, token.Error, tok.Type)
}

func TestScansIntegerAndFloatNumbers(t *testing.T) {
	tokens := scanAll("42 3.14")
	require.Len(t, tokens, 3)
	assert.Equal(t, token.Number, tokens[0].Type)
	assert.Equal(t, "42", tokens[0].Lexeme)
	assert.Equal(t, token.Number, tokens[1].Type)
	assert.Equal(t, "3.14", tokens[1].Lexeme)
}

func TestScansIdentifiersAndKeywords(t *testing.T) {
	tokens := scanAll("fun area class")
	require.Len(t, tokens, 4)
	assert.Equal(t, token.Fun, tokens[0].Type)
	assert.Equal(t, token.Identifier, tokens[1].Type)
	assert.Equal(t, token.Class, tokens[2].Type)
}

func TestLineCommentsAreSkipped(t *testing.T) {
	tokens := scanAll("var x; // this is a comment\nvar y;")
	var lines []int
	for _, tok := range tokens {
		lines = append(lines, tok.Line)
	}
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[len(tokens)-2].Line)
}

func TestTracksLineNumbersAcrossNewlines(t *testing.T) {
	tokens := scanAll("var\nx\n=\n1;")
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 3, tokens[2].Line)
	assert.Equal(t, 4, tokens[3].Line)
}

func TestEmptySourceProducesEOFImmediately(t *testing.T) {
	tok := lexer.New("").Next()
	assert.Equal(t, token.EOF, tok.Type)
}
