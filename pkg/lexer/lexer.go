// Package lexer scans lumen source text into the token.Type stream the
// compiler consumes (spec §6.1, §4.4). It is deliberately thin: spec.md
// treats the scanner as an external contract, so this implementation exists
// only to make the repository runnable end to end, not as a showcase of
// scanning technique.
package lexer

import (
	"github.com/kristofer/lumen/pkg/token"
)

// Lexer scans one source at a time, one byte of lookahead ahead of the
// token it is currently building, in the style of a hand-rolled
// character-at-a-time scanner (start/current/line bookkeeping).
type Lexer struct {
	source  string
	start   int
	current int
	line    int
}

// New returns a Lexer positioned at the start of source.
func New(source string) *Lexer {
	return &Lexer{source: source, line: 1}
}

// Next scans and returns the next token, or an Error token carrying a
// human-readable message as its Lexeme if the source is malformed.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()
	l.start = l.current

	if l.atEnd() {
		return l.make(token.EOF)
	}

	c := l.advance()
	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '(':
		return l.make(token.LeftParen)
	case ')':
		return l.make(token.RightParen)
	case '{':
		return l.make(token.LeftBrace)
	case '}':
		return l.make(token.RightBrace)
	case ',':
		return l.make(token.Comma)
	case '.':
		return l.make(token.Dot)
	case '-':
		return l.make(token.Minus)
	case '+':
		return l.make(token.Plus)
	case ';':
		return l.make(token.Semicolon)
	case '*':
		return l.make(token.Star)
	case '/':
		return l.make(token.Slash)
	case '!':
		return l.make(l.chooseTwo('=', token.BangEqual, token.Bang))
	case '=':
		return l.make(l.chooseTwo('=', token.EqualEqual, token.Equal))
	case '<':
		return l.make(l.chooseTwo('=', token.LessEqual, token.Less))
	case '>':
		return l.make(l.chooseTwo('=', token.GreaterEqual, token.Greater))
	case '&':
		if l.matchRune('&') {
			return l.make(token.And)
		}
		return l.errorToken("unexpected character '&'")
	case '|':
		if l.matchRune('|') {
			return l.make(token.Or)
		}
		return l.errorToken("unexpected character '|'")
	case '"':
		return l.string()
	}

	return l.errorToken("unexpected character")
}

func (l *Lexer) atEnd() bool { return l.current >= len(l.source) }

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	return c
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) matchRune(expected byte) bool {
	if l.atEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) chooseTwo(second byte, ifMatch, otherwise token.Type) token.Type {
	if l.matchRune(second) {
		return ifMatch
	}
	return otherwise
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.line++
			l.advance()
		case '/':
			if l.peekNext() == '/' {
				for l.peek() != '\n' && !l.atEnd() {
					l.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) string() token.Token {
	for l.peek() != '"' && !l.atEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.atEnd() {
		return l.errorToken("unterminated string")
	}
	l.advance() // closing quote
	return l.make(token.String)
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.make(token.Number)
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	if kw, ok := token.Lookup(text); ok {
		return l.make(kw)
	}
	return l.make(token.Identifier)
}

func (l *Lexer) make(t token.Type) token.Token {
	return token.Token{Type: t, Lexeme: l.source[l.start:l.current], Line: l.line}
}

func (l *Lexer) errorToken(msg string) token.Token {
	return token.Token{Type: token.Error, Lexeme: msg, Line: l.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
