// Package lexer implements the tokenizer described in spec §4.1 (C1): an
// eager, greedy, single-pass classifier over UTF-8 source bytes. It follows
// the teacher repository's lexer (github.com/cwbudde/go-dws/internal/lexer)
// in structure — a read-ahead rune cursor, a buffered Peek, and an
// accumulated error list instead of fail-fast panics — adapted to this
// language's token set and to byte-range tokens rather than DWScript's
// line/column-only positions.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/uidl-lang/uidlc/internal/token"
)

// Error is a lexical error anchored at a one-byte range, as §4.1 requires
// for unrecognized bytes.
type Error struct {
	Message string
	Offset  int
}

// Lexer scans UTF-8 source text into a flat token.Token sequence.
type Lexer struct {
	input       string
	pos         int // start of current rune
	readPos     int // start of next rune
	ch          rune
	errors      []Error
	tokenBuffer []token.Token
}

// New creates a Lexer over input. It does not strip a BOM itself; callers
// that read files should strip it before constructing the Lexer so that
// byte offsets line up with what the editor/LSP client reports.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Errors returns lexical errors accumulated during scanning.
func (l *Lexer) Errors() []Error { return l.errors }

func (l *Lexer) addError(msg string, offset int) {
	l.errors = append(l.errors, Error{Message: msg, Offset: offset})
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	if r == utf8.RuneError && size == 1 {
		l.addError("invalid UTF-8 encoding", l.pos)
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEOF() bool { return l.pos >= len(l.input) }

// Peek returns the token n positions ahead without consuming it, lazily
// buffering as many tokens as needed. Peek(0) is the next token that
// NextToken would return.
func (l *Lexer) Peek(n int) token.Token {
	for len(l.tokenBuffer) <= n {
		l.tokenBuffer = append(l.tokenBuffer, l.scan())
	}
	return l.tokenBuffer[n]
}

// NextToken consumes and returns the next token, either from the lookahead
// buffer (populated by Peek) or freshly scanned.
func (l *Lexer) NextToken() token.Token {
	if len(l.tokenBuffer) > 0 {
		tok := l.tokenBuffer[0]
		l.tokenBuffer = l.tokenBuffer[1:]
		return tok
	}
	return l.scan()
}

// Tokenize runs the lexer to completion, returning the full flat sequence
// including a final EOF token — the totality property §8 tests.
func Tokenize(input string) ([]token.Token, []Error) {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, l.errors
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

const operatorChars = ".:=|<>+-/*"

func isOperatorChar(r rune) bool {
	return strings.ContainsRune(operatorChars, r)
}

// scan classifies exactly one token starting at the current rune,
// following the priority order in §4.1: directive sigil, identifiers,
// strings, numbers, bracket pairs, ';', whitespace, comments, ',', then a
// maximal operator run. Unknown bytes become a one-character ILLEGAL token
// instead of aborting the scan, so Tokenize always reaches EOF.
func (l *Lexer) scan() token.Token {
	if l.atEOF() {
		return token.Token{Kind: token.EOF, Start: l.pos, End: l.pos}
	}

	start := l.pos

	switch {
	case l.ch == '@':
		return l.scanDirective(start)
	case isIdentStart(l.ch):
		return l.scanIdent(start)
	case l.ch == '"' || l.ch == '\'':
		return l.scanString(start, l.ch)
	case isDigit(l.ch):
		return l.scanNumber(start)
	case (l.ch == '+' || l.ch == '-') && isDigit(l.peekChar()):
		l.readChar() // sign
		return l.scanNumber(start)
	case l.ch == '(':
		l.readChar()
		return token.Token{Kind: token.LPAREN, Start: start, End: l.pos}
	case l.ch == ')':
		l.readChar()
		return token.Token{Kind: token.RPAREN, Start: start, End: l.pos}
	case l.ch == '{':
		l.readChar()
		return token.Token{Kind: token.LBRACE, Start: start, End: l.pos}
	case l.ch == '}':
		l.readChar()
		return token.Token{Kind: token.RBRACE, Start: start, End: l.pos}
	case l.ch == '[':
		l.readChar()
		return token.Token{Kind: token.LBRACKET, Start: start, End: l.pos}
	case l.ch == ']':
		l.readChar()
		return token.Token{Kind: token.RBRACKET, Start: start, End: l.pos}
	case l.ch == ';':
		l.readChar()
		return token.Token{Kind: token.SEMI, Start: start, End: l.pos}
	case unicode.IsSpace(l.ch):
		return l.scanWhitespace(start)
	case l.ch == '/' && l.peekChar() == '/':
		return l.scanLineComment(start)
	case l.ch == '/' && l.peekChar() == '*':
		return l.scanBlockComment(start)
	case l.ch == ',':
		l.readChar()
		return token.Token{Kind: token.COMMA, Start: start, End: l.pos}
	case isOperatorChar(l.ch):
		return l.scanOperator(start)
	default:
		l.addError("unexpected byte", start)
		l.readChar()
		return token.Token{Kind: token.ILLEGAL, Start: start, End: l.pos}
	}
}

func (l *Lexer) scanDirective(start int) token.Token {
	l.readChar() // consume '@'
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.DIRECTIVE, Start: start, End: l.pos}
}

func (l *Lexer) scanIdent(start int) token.Token {
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.IDENT, Start: start, End: l.pos}
}

// scanString scans a single- or double-quoted string with backslash
// escapes for newline, tab, quote, and backslash. An incomplete escape
// sequence at end-of-input fails the whole literal (§4.1): the token is
// still emitted (totality), but an error is recorded.
func (l *Lexer) scanString(start int, quote rune) token.Token {
	l.readChar() // consume opening quote
	for {
		if l.ch == 0 {
			l.addError("unterminated string literal", start)
			break
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n', 't', '\'', '"', '\\':
				l.readChar()
			case 0:
				l.addError("incomplete escape sequence at end of input", l.pos)
			default:
				l.addError("unknown escape sequence", l.pos)
				l.readChar()
			}
			continue
		}
		if l.ch == quote {
			l.readChar()
			break
		}
		l.readChar()
	}
	return token.Token{Kind: token.QUOTED, Start: start, End: l.pos}
}

// scanNumber scans decimal or hex (0x-prefixed) integers and decimals with
// optional underscore digit separators. A '+' or '-' immediately followed
// by a digit is consumed by scan before calling scanNumber, so the sign
// is part of the NUMBER token; a sign run that follows another operator
// character (as in ":-1") stays inside that OPERATOR token.
func (l *Lexer) scanNumber(start int) token.Token {
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return token.Token{Kind: token.NUMBER, Start: start, End: l.pos}
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		if isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-')) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return token.Token{Kind: token.NUMBER, Start: start, End: l.pos}
}

func (l *Lexer) scanWhitespace(start int) token.Token {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.WHITESPACE, Start: start, End: l.pos}
}

func (l *Lexer) scanLineComment(start int) token.Token {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return token.Token{Kind: token.LINE_COMMENT, Start: start, End: l.pos}
}

func (l *Lexer) scanBlockComment(start int) token.Token {
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		if l.ch == 0 {
			l.addError("unterminated block comment", start)
			break
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	return token.Token{Kind: token.BLOCK_COMMENT, Start: start, End: l.pos}
}

func (l *Lexer) scanOperator(start int) token.Token {
	for isOperatorChar(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.OPERATOR, Start: start, End: l.pos}
}
