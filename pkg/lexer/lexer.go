// Package lexer tokenizes source text for the parser.
package lexer

import (
	"errors"
	"strconv"

	"fortio.org/safecast"

	"github.com/raymyers/ralph-9cc/pkg/diag"
)

// Tokenizer errors, matched with errors.Is
var (
	ErrIllegalChar        = errors.New("illegal character")
	ErrUnterminatedString = errors.New("unterminated string literal")
	ErrInvalidNumber      = errors.New("invalid number literal")
)

// Lexer tokenizes C source code
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
	err     error
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Tokenize reads the whole input. The returned slice always ends with a
// TokenEOF; the first malformed token aborts with a positioned error.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if err := l.Err(); err != nil {
			return nil, err
		}
		if tok.Type == TokenIllegal {
			return nil, diag.Errorf(tok.Line, tok.Column, ErrIllegalChar, "invalid token %q", tok.Literal)
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// Err returns the first error met while reading a literal
func (l *Lexer) Err() error {
	return l.err
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	l.skipComments()
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.column}

	if l.atEnd() {
		tok.Type = TokenEOF
		return tok
	}

	switch l.ch {
	case '+':
		tok = l.newToken(TokenPlus, l.ch)
	case '-':
		tok = l.newToken(TokenMinus, l.ch)
	case '*':
		tok = l.newToken(TokenStar, l.ch)
	case '/':
		tok = l.newToken(TokenSlash, l.ch)
	case '=':
		if l.peekChar() == '=' {
			tok.Type = TokenEq
			tok.Literal = "=="
			l.readChar()
		} else {
			tok = l.newToken(TokenAssign, l.ch)
		}
	case '!':
		if l.peekChar() == '=' {
			tok.Type = TokenNe
			tok.Literal = "!="
			l.readChar()
		} else {
			tok = l.newToken(TokenIllegal, l.ch)
		}
	case '<':
		if l.peekChar() == '=' {
			tok.Type = TokenLe
			tok.Literal = "<="
			l.readChar()
		} else {
			tok = l.newToken(TokenLt, l.ch)
		}
	case '>':
		if l.peekChar() == '=' {
			tok.Type = TokenGe
			tok.Literal = ">="
			l.readChar()
		} else {
			tok = l.newToken(TokenGt, l.ch)
		}
	case '&':
		tok = l.newToken(TokenAmpersand, l.ch)
	case '(':
		tok = l.newToken(TokenLParen, l.ch)
	case ')':
		tok = l.newToken(TokenRParen, l.ch)
	case '{':
		tok = l.newToken(TokenLBrace, l.ch)
	case '}':
		tok = l.newToken(TokenRBrace, l.ch)
	case '[':
		tok = l.newToken(TokenLBracket, l.ch)
	case ']':
		tok = l.newToken(TokenRBracket, l.ch)
	case ';':
		tok = l.newToken(TokenSemicolon, l.ch)
	case ',':
		tok = l.newToken(TokenComma, l.ch)
	case '.':
		tok = l.newToken(TokenDot, l.ch)
	case '"':
		tok.Type = TokenString
		tok.Literal, tok.Contents = l.readString(tok)
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			tok.Type = TokenInt
			tok.Literal = l.readNumber()
			tok.Value = l.numberValue(tok)
			return tok
		} else {
			tok = l.newToken(TokenIllegal, l.ch)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipComments() {
	for l.ch == '/' {
		if l.peekChar() == '/' {
			// Single-line comment
			for l.ch != '\n' && !l.atEnd() {
				l.readChar()
			}
			l.skipWhitespace()
		} else if l.peekChar() == '*' {
			// Multi-line comment
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.atEnd() {
					break
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // consume *
					l.readChar() // consume /
					break
				}
				l.readChar()
			}
			l.skipWhitespace()
		} else {
			break
		}
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

func (l *Lexer) readNumber() string {
	pos := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

func (l *Lexer) numberValue(tok Token) int64 {
	u, err := strconv.ParseUint(tok.Literal, 10, 64)
	if err == nil {
		var v int64
		if v, err = safecast.Conv[int64](u); err == nil {
			return v
		}
	}
	l.fail(diag.Errorf(tok.Line, tok.Column, ErrInvalidNumber, "number %s out of range", tok.Literal))
	return 0
}

// readString consumes a string literal and returns its raw spelling and
// its decoded bytes with a trailing NUL.
func (l *Lexer) readString(start Token) (string, []byte) {
	l.readChar() // consume opening quote
	pos := l.pos
	var buf []byte
	for l.ch != '"' {
		if l.atEnd() || l.ch == '\n' {
			l.fail(diag.Errorf(start.Line, start.Column, ErrUnterminatedString, "unclosed string literal"))
			return l.input[pos:l.pos], nil
		}
		if l.ch == '\\' {
			l.readChar() // skip backslash
			if l.atEnd() {
				continue
			}
			buf = append(buf, escapedChar(l.ch))
			l.readChar()
			continue
		}
		buf = append(buf, l.ch)
		l.readChar()
	}
	str := l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return str, append(buf, 0)
}

func (l *Lexer) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

func escapedChar(c byte) byte {
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'v':
		return '\v'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	case 'e':
		return 27
	case '0':
		return 0
	}
	return c
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
