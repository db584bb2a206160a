package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer produces tokens on demand. It never stops on a bad character:
// problems are reported as Error tokens and scanning resumes after them.
type Lexer struct {
	src    []rune
	offset int
	line   int
	col    int
}

// New creates a lexer over src positioned at line 1, column 1.
func New(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// Tokenize scans src to the end. The final token is always EOF.
func Tokenize(src string) []Token {
	lx := New(src)
	var tokens []Token
	for {
		tok := lx.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens
		}
	}
}

// Position returns the cursor position, i.e. the location of the next
// unconsumed character.
func (l *Lexer) Position() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.src) {
		return utf8.RuneError
	}
	return l.src[l.offset]
}

func (l *Lexer) peekAt(n int) rune {
	if l.offset+n >= len(l.src) {
		return utf8.RuneError
	}
	return l.src[l.offset+n]
}

func (l *Lexer) atEnd() bool { return l.offset >= len(l.src) }

func (l *Lexer) advance() rune {
	r := l.src[l.offset]
	l.offset++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipTrivia() {
	for !l.atEnd() {
		r := l.peek()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipTrivia()
	start := l.Position()
	if l.atEnd() {
		return Token{Kind: EOF, Pos: start, End: start}
	}

	r := l.peek()
	var tok Token
	switch {
	case isLetter(r):
		tok = l.scanIdentifier()
	case isDigit(r):
		tok = l.scanNumber()
	case r == '"':
		tok = l.scanString()
	default:
		tok = l.scanOperator()
	}
	tok.Pos = start
	tok.End = l.Position()
	return tok
}

func (l *Lexer) scanIdentifier() Token {
	var b strings.Builder
	for !l.atEnd() && (isLetter(l.peek()) || isDigit(l.peek())) {
		b.WriteRune(l.advance())
	}
	word := b.String()
	kind := LookupKeyword(word)
	if kind == Identifier {
		return Token{Kind: Identifier, Text: word}
	}
	return Token{Kind: kind}
}

func (l *Lexer) scanNumber() Token {
	var b strings.Builder
	for !l.atEnd() && isDigit(l.peek()) {
		b.WriteRune(l.advance())
	}
	// "1..5" is a range, so the dot is only a decimal point when it is
	// not immediately followed by another dot.
	if l.peek() == '.' && l.peekAt(1) != '.' {
		b.WriteRune(l.advance())
		for !l.atEnd() && isDigit(l.peek()) {
			b.WriteRune(l.advance())
		}
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return Token{Kind: Error, Text: fmt.Sprintf("Invalid number literal: %q", b.String())}
	}
	return Token{Kind: Number, Value: value}
}

func (l *Lexer) scanString() Token {
	l.advance() // opening quote
	var b strings.Builder
	for !l.atEnd() {
		r := l.advance()
		switch r {
		case '"':
			return Token{Kind: String, Text: b.String()}
		case '\\':
			l.scanEscape(&b)
		default:
			b.WriteRune(r)
		}
	}
	// Unterminated literals run to the end of input.
	return Token{Kind: String, Text: b.String()}
}

func (l *Lexer) scanEscape(b *strings.Builder) {
	if l.atEnd() {
		b.WriteRune('\\')
		return
	}
	r := l.advance()
	switch r {
	case 'n':
		b.WriteRune('\n')
	case 't':
		b.WriteRune('\t')
	case '"':
		b.WriteRune('"')
	case '\\':
		b.WriteRune('\\')
	case '\'':
		b.WriteRune('\'')
	case 'u':
		l.scanUnicodeEscape(b)
	default:
		b.WriteRune('\\')
		b.WriteRune(r)
	}
}

// scanUnicodeEscape decodes \u{XXXX} or \uXXXX. Malformed escapes are
// reproduced verbatim rather than rejected.
func (l *Lexer) scanUnicodeEscape(b *strings.Builder) {
	if l.peek() == '{' {
		l.advance()
		var digits strings.Builder
		for !l.atEnd() && l.peek() != '}' && l.peek() != '"' {
			digits.WriteRune(l.advance())
		}
		closed := l.peek() == '}'
		if closed {
			l.advance()
		}
		if r, ok := decodeCodePoint(digits.String()); ok && closed {
			b.WriteRune(r)
			return
		}
		b.WriteString(`\u{`)
		b.WriteString(digits.String())
		if closed {
			b.WriteRune('}')
		}
		return
	}

	var digits strings.Builder
	for i := 0; i < 4 && !l.atEnd() && isHexDigit(l.peek()); i++ {
		digits.WriteRune(l.advance())
	}
	if digits.Len() == 4 {
		if r, ok := decodeCodePoint(digits.String()); ok {
			b.WriteRune(r)
			return
		}
	}
	b.WriteString(`\u`)
	b.WriteString(digits.String())
}

func decodeCodePoint(hex string) (rune, bool) {
	if hex == "" || len(hex) > 6 {
		return 0, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return 0, false
	}
	return r, true
}

func (l *Lexer) scanOperator() Token {
	start := l.Position()
	r := l.advance()
	switch r {
	case '(':
		return Token{Kind: LeftParen}
	case ')':
		return Token{Kind: RightParen}
	case '{':
		return Token{Kind: LeftBrace}
	case '}':
		return Token{Kind: RightBrace}
	case '[':
		return Token{Kind: LeftBracket}
	case ']':
		return Token{Kind: RightBracket}
	case ';':
		return Token{Kind: Semicolon}
	case ',':
		return Token{Kind: Comma}
	case ':':
		return Token{Kind: Colon}
	case '+':
		return Token{Kind: Plus}
	case '-':
		return Token{Kind: Minus}
	case '*':
		return Token{Kind: Star}
	case '/':
		return Token{Kind: Slash}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: LessEqual}
		}
		return Token{Kind: Less}
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: GreaterEqual}
		}
		return Token{Kind: Greater}
	case '=':
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: Equal}
		}
		return Token{Kind: Assign}
	case '.':
		if l.peek() == '.' {
			l.advance()
			return Token{Kind: Range}
		}
		return Token{Kind: Error, Text: "Unexpected character: '.'. Did you mean '..' for range?"}
	}
	return Token{
		Kind: Error,
		Text: fmt.Sprintf("Unexpected character: '%c' at line %d, column %d", r, start.Line, start.Column),
	}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
