// Package lexer turns interpreter source text into a token stream.
//
// Grounded on the teacher's runtime/lexer (start/current/line cursor
// fields, ASCII lookup-table classification) generalized from the
// teacher's three-mode shell-embedding lexer down to the single-mode
// scanner the language needs, and on golox's scanner for the
// continue-on-error lexical-error-collection behavior.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/aledsdavies/rill/internal/rlog"
	"github.com/aledsdavies/rill/internal/token"
)

var (
	isDigit      [128]bool
	isIdentStart [128]bool
	isIdentPart  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
	}
}

// Scanner converts source text into a token sequence. It never raises: a
// lexical error is appended to Err (a *multierror.Error) and scanning
// continues from the next character.
type Scanner struct {
	source  string
	tokens  []token.Token
	start   int
	current int
	line    int

	Err *multierror.Error
}

func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// ScanTokens scans the entire source and returns the token sequence,
// always terminated by exactly one EOF. Check s.Err (or HasErrors) after
// calling to see whether any lexical errors were collected.
func (s *Scanner) ScanTokens() []token.Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", nil, s.line))
	rlog.Debugf("lexer: produced %d tokens", len(s.tokens))
	return s.tokens
}

func (s *Scanner) HasErrors() bool {
	return s.Err != nil && len(s.Err.Errors) > 0
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(token.LEFT_PAREN)
	case ')':
		s.addToken(token.RIGHT_PAREN)
	case '{':
		s.addToken(token.LEFT_BRACE)
	case '}':
		s.addToken(token.RIGHT_BRACE)
	case ',':
		s.addToken(token.COMMA)
	case '.':
		s.addToken(token.DOT)
	case '-':
		s.addToken(token.MINUS)
	case '+':
		s.addToken(token.PLUS)
	case ';':
		s.addToken(token.SEMICOLON)
	case '*':
		s.addToken(token.STAR)
	case '!':
		s.addToken(s.choose('=', token.BANG_EQUAL, token.BANG))
	case '=':
		s.addToken(s.choose('=', token.EQUAL_EQUAL, token.EQUAL))
	case '<':
		s.addToken(s.choose('=', token.LESS_EQUAL, token.LESS))
	case '>':
		s.addToken(s.choose('=', token.GREATER_EQUAL, token.GREATER))
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(token.SLASH)
		}
	case ' ', '\t', '\r':
		// discard
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigitByte(c):
			s.scanNumber()
		case isIdentStartByte(c):
			s.scanIdentifier()
		default:
			s.reportf("Unexpected character: %c", c)
		}
	}
}

func (s *Scanner) scanString() {
	startLine := s.line
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		s.reportAt(startLine, "Unterminated string.")
		return
	}
	s.advance() // closing quote
	value := s.source[s.start+1 : s.current-1]
	s.addTokenLiteral(token.STRING, value)
}

func (s *Scanner) scanNumber() {
	for isDigitByte(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigitByte(s.peekNext()) {
		s.advance()
		for isDigitByte(s.peek()) {
			s.advance()
		}
	}
	text := s.source[s.start:s.current]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.reportf("Invalid number literal: %s", text)
		return
	}
	s.addTokenLiteral(token.NUMBER, value)
}

func (s *Scanner) scanIdentifier() {
	for isIdentPartByte(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	if kind, ok := token.Keywords[text]; ok {
		s.addToken(kind)
		return
	}
	s.addToken(token.IDENTIFIER)
}

// --- cursor primitives ---

func (s *Scanner) isAtEnd() bool { return s.current >= len(s.source) }

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) choose(expected byte, ifMatch, otherwise token.Kind) token.Kind {
	if s.match(expected) {
		return ifMatch
	}
	return otherwise
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) addToken(kind token.Kind) {
	s.addTokenLiteral(kind, nil)
}

func (s *Scanner) addTokenLiteral(kind token.Kind, literal any) {
	lexeme := s.source[s.start:s.current]
	s.tokens = append(s.tokens, token.New(kind, lexeme, literal, s.line))
}

func (s *Scanner) reportf(format string, args ...any) {
	s.reportAt(s.line, format, args...)
}

func (s *Scanner) reportAt(line int, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.Err = multierror.Append(s.Err, newLexError(line, msg))
}

func isDigitByte(c byte) bool {
	if c >= 128 {
		return false
	}
	return isDigit[c]
}

func isIdentStartByte(c byte) bool {
	if c >= 128 {
		return false
	}
	return isIdentStart[c]
}

func isIdentPartByte(c byte) bool {
	if c >= 128 {
		return false
	}
	return isIdentPart[c]
}
