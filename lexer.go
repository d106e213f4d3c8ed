// lexer.go — whitespace-sensitive scanner for stepscript source.
//
// The lexer distinguishes a '(' that opens a call from one that opens a
// grouping expression: '(' not preceded by whitespace, following something
// that can be a left operand, lexes as CALLPAREN. The same rule applies to
// '[' (INDEXBRACKET vs LBRACKET). This keeps the parser newline-free while
// still letting statements end naturally at line breaks.
package stepscript

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Punctuation
	LPAREN       // "(" opening a group
	CALLPAREN    // "(" opening a call (no whitespace before)
	RPAREN       // ")"
	LBRACKET     // "[" opening an array literal
	INDEXBRACKET // "[" opening an index (no whitespace before)
	RBRACKET     // "]"
	LBRACE       // "{"
	RBRACE       // "}"
	COLON        // ":"
	COMMA        // ","
	PERIOD       // "."
	ELLIPSIS     // "..." (variadic parameter marker)

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESSEQ
	GREATER
	GREATEREQ

	// Literals & identifiers
	ID
	STRING
	INTEGER
	NUMBER
	BOOLEAN
	NULL

	// Keywords
	AND
	OR
	NOT
	LET
	DO
	END
	RETURN
	BREAK
	CONTINUE
	IF
	THEN
	ELIF
	ELSE
	FUNCTION
	FOR
	IN
	WHILE
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int         // 1-based
	Col     int         // 1-based
}

var keywords = map[string]TokenType{
	"null":     NULL,
	"false":    BOOLEAN,
	"true":     BOOLEAN,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"let":      LET,
	"do":       DO,
	"end":      END,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"if":       IF,
	"then":     THEN,
	"elif":     ELIF,
	"else":     ELSE,
	"fun":      FUNCTION,
	"for":      FOR,
	"in":       IN,
	"while":    WHILE,
}

// Lexer scans a stepscript source string into tokens.
type Lexer struct {
	src              string
	start            int // start index of current token
	cur              int // current index
	line             int // 1-based
	col              int // 0-based column within line
	tokens           []Token
	whitespaceBefore bool

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Lex tokenizes the full source, returning the token slice (EOF-terminated).
func Lex(src string) ([]Token, error) {
	return NewLexer(src).Scan()
}

// Scan runs the lexer to completion.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		l.skipIgnored()
		if l.isAtEnd() {
			l.markStart()
			l.add(EOF, nil)
			return l.tokens, nil
		}
		l.markStart()
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekN(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.src[l.cur] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) markStart() {
	l.start = l.cur
	l.tokStartLine = l.line
	l.tokStartCol = l.col + 1
}

func (l *Lexer) add(tt TokenType, lit interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	})
	l.whitespaceBefore = false
}

func (l *Lexer) previousToken() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return &l.tokens[len(l.tokens)-1]
}

// skipIgnored consumes whitespace and `#` comments, tracking whether any
// whitespace preceded the next token (drives CALLPAREN/INDEXBRACKET).
func (l *Lexer) skipIgnored() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.whitespaceBefore = true
			l.advance()
		case '#':
			l.whitespaceBefore = true
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func canBeLeftOperand(t TokenType) bool {
	switch t {
	case ID, STRING, INTEGER, NUMBER, BOOLEAN, NULL, RPAREN, RBRACKET, RBRACE:
		return true
	default:
		return false
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

func (l *Lexer) scanToken() error {
	ch := l.advance()
	switch ch {
	case '(':
		prev := l.previousToken()
		if !l.whitespaceBefore && prev != nil && canBeLeftOperand(prev.Type) {
			l.add(CALLPAREN, nil)
		} else {
			l.add(LPAREN, nil)
		}
	case ')':
		l.add(RPAREN, nil)
	case '[':
		prev := l.previousToken()
		if !l.whitespaceBefore && prev != nil && canBeLeftOperand(prev.Type) {
			l.add(INDEXBRACKET, nil)
		} else {
			l.add(LBRACKET, nil)
		}
	case ']':
		l.add(RBRACKET, nil)
	case '{':
		l.add(LBRACE, nil)
	case '}':
		l.add(RBRACE, nil)
	case ':':
		l.add(COLON, nil)
	case ',':
		l.add(COMMA, nil)
	case '.':
		if l.peek() == '.' && l.peekN(1) == '.' {
			l.advance()
			l.advance()
			l.add(ELLIPSIS, nil)
		} else if isDigit(l.peek()) {
			return l.scanNumberFromDot()
		} else {
			l.add(PERIOD, nil)
		}
	case '+':
		l.add(PLUS, nil)
	case '-':
		l.add(MINUS, nil)
	case '*':
		l.add(STAR, nil)
	case '/':
		l.add(SLASH, nil)
	case '%':
		l.add(PERCENT, nil)
	case '=':
		if l.match('=') {
			l.add(EQ, nil)
		} else {
			l.add(ASSIGN, nil)
		}
	case '!':
		if l.match('=') {
			l.add(NEQ, nil)
		} else {
			return l.err("unexpected character '!'")
		}
	case '<':
		if l.match('=') {
			l.add(LESSEQ, nil)
		} else {
			l.add(LESS, nil)
		}
	case '>':
		if l.match('=') {
			l.add(GREATEREQ, nil)
		} else {
			l.add(GREATER, nil)
		}
	case '"', '\'':
		return l.scanString(ch)
	default:
		if isDigit(ch) {
			return l.scanNumber()
		}
		if isAlpha(ch) {
			l.scanIdent()
			return nil
		}
		return l.err(fmt.Sprintf("unexpected character %q", string(ch)))
	}
	return nil
}

// scanString parses a JSON-style string literal (single or double quotes).
func (l *Lexer) scanString(del byte) error {
	var out []byte
	for !l.isAtEnd() {
		ch := l.advance()
		if ch == del {
			l.add(STRING, string(out))
			return nil
		}
		if ch == '\n' {
			return l.err("unterminated string")
		}
		if ch == '\\' {
			if l.isAtEnd() {
				return l.err("unfinished escape sequence")
			}
			esc := l.advance()
			switch esc {
			case '"', '\'', '\\', '/':
				out = append(out, esc)
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				return l.err(fmt.Sprintf("unknown escape '\\%s'", string(esc)))
			}
			continue
		}
		out = append(out, ch)
	}
	return l.err("unterminated string")
}

func (l *Lexer) scanNumber() error {
	for isDigit(l.peek()) {
		l.advance()
	}
	isNum := false
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isNum = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekN(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekN(2))) {
			isNum = true
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	lex := l.src[l.start:l.cur]
	if isNum {
		f, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			return l.err("malformed number literal")
		}
		l.add(NUMBER, f)
		return nil
	}
	n, err := strconv.ParseInt(lex, 10, 64)
	if err != nil {
		return l.err("integer literal out of range")
	}
	l.add(INTEGER, n)
	return nil
}

// scanNumberFromDot handles literals like `.5` (the leading dot is consumed).
func (l *Lexer) scanNumberFromDot() error {
	for isDigit(l.peek()) {
		l.advance()
	}
	lex := l.src[l.start:l.cur]
	f, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		return l.err("malformed number literal")
	}
	l.add(NUMBER, f)
	return nil
}

func (l *Lexer) scanIdent() {
	for isAlphaNum(l.peek()) {
		l.advance()
	}
	lex := l.src[l.start:l.cur]
	if tt, ok := keywords[lex]; ok {
		switch tt {
		case BOOLEAN:
			l.add(BOOLEAN, lex == "true")
		case NULL:
			l.add(NULL, nil)
		default:
			l.add(tt, nil)
		}
		return
	}
	l.add(ID, nil)
}
