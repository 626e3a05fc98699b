package lang

import (
	"strings"
)

// tokenKind classifies lexical tokens.
type tokenKind int

const (
	tokenEOF    tokenKind = iota // end of input
	tokenNumber                  // number
	tokenPath                    // name
	tokenPlus                    // '+'
	tokenMinus                   // '-'
	tokenStar                    // '*'
	tokenSlash                   // '/'
	tokenPower                   // '**'
	tokenLParen                  // '('
	tokenRParen                  // ')'
	tokenLBracket                // '['
	tokenRBracket                // ']'
	tokenComma                   // ','
	tokenAssign                  // '='
	tokenInvalid                 // invalid token
)

var tokenNames = [...]string{
	tokenEOF:      "end of input",
	tokenNumber:   "number",
	tokenPath:     "name",
	tokenPlus:     "'+'",
	tokenMinus:    "'-'",
	tokenStar:     "'*'",
	tokenSlash:    "'/'",
	tokenPower:    "'**'",
	tokenLParen:   "'('",
	tokenRParen:   "')'",
	tokenLBracket: "'['",
	tokenRBracket: "']'",
	tokenComma:    "','",
	tokenAssign:   "'='",
	tokenInvalid:  "invalid token",
}

func (k tokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return "unknown"
}

// reservedPrefix marks identifiers owned by the rewriter.
const reservedPrefix = "__"

// token is a lexeme with its byte offset in the source.
type token struct {
	text string
	kind tokenKind
	pos  int
}

// column returns the 1-based column of t.
func (t token) column() int { return t.pos + 1 }

// lexer splits expression text into tokens on demand.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// next returns the next token, or a tokenInvalid token holding the offending
// text when the input cannot be tokenized.
func (l *lexer) next() token {
	l.skipSpace()

	if l.pos >= len(l.input) {
		return token{kind: tokenEOF, pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case isDigit(ch) || (ch == '.' && isDigit(l.at(l.pos+1))):
		return l.number()

	case isIdentStart(ch):
		return l.path()
	}

	l.pos++

	switch ch {
	case '+':
		return l.emit(tokenPlus, start)
	case '-':
		return l.emit(tokenMinus, start)
	case '*':
		if l.at(l.pos) == '*' {
			l.pos++

			return l.emit(tokenPower, start)
		}

		return l.emit(tokenStar, start)
	case '/':
		return l.emit(tokenSlash, start)
	case '(':
		return l.emit(tokenLParen, start)
	case ')':
		return l.emit(tokenRParen, start)
	case '[':
		return l.emit(tokenLBracket, start)
	case ']':
		return l.emit(tokenRBracket, start)
	case ',':
		return l.emit(tokenComma, start)
	case '=':
		return l.emit(tokenAssign, start)
	}

	return l.emit(tokenInvalid, start)
}

func (l *lexer) emit(kind tokenKind, start int) token {
	return token{text: l.input[start:l.pos], kind: kind, pos: start}
}

func (l *lexer) at(i int) byte {
	if i < len(l.input) {
		return l.input[i]
	}

	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

// number scans: digits ('.' digits?)? | '.' digits, then [eE][+-]?digits.
func (l *lexer) number() token {
	start := l.pos

	l.digits()

	if l.at(l.pos) == '.' {
		l.pos++
		l.digits()
	}

	if c := l.at(l.pos); c == 'e' || c == 'E' {
		mark := l.pos
		l.pos++

		if c := l.at(l.pos); c == '+' || c == '-' {
			l.pos++
		}

		if !isDigit(l.at(l.pos)) {
			// Exponent marker without digits belongs to the next token.
			l.pos = mark
		} else {
			l.digits()
		}
	}

	return l.emit(tokenNumber, start)
}

func (l *lexer) digits() {
	for isDigit(l.at(l.pos)) {
		l.pos++
	}
}

// path scans a dotted name with no whitespace around the dots.
func (l *lexer) path() token {
	start := l.pos

	for {
		l.ident()

		if l.at(l.pos) != '.' || !isIdentStart(l.at(l.pos+1)) {
			break
		}

		l.pos++
	}

	if l.at(l.pos) == '.' {
		// Trailing dot: report the malformed path as a whole.
		l.pos++

		return l.emit(tokenInvalid, start)
	}

	return l.emit(tokenPath, start)
}

func (l *lexer) ident() {
	for isIdentPart(l.at(l.pos)) {
		l.pos++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// reservedSegment returns the first segment of path using the reserved
// prefix, or "" if there is none.
func reservedSegment(path string) string {
	for seg := range strings.SplitSeq(path, ".") {
		if strings.HasPrefix(seg, reservedPrefix) {
			return seg
		}
	}

	return ""
}
