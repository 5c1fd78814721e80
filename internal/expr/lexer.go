package expr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokFloat
	tokString
	tokName
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	input []rune
	pos   int
}

// Operators are matched longest first. All of them are ASCII.
var operators = []string{"**", "//", "<=", ">=", "==", "!=", "+", "-", "*", "/", "%", "~", "<", ">"}

var punctuation = map[rune]tokenKind{
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBracket,
	']': tokRBracket,
	',': tokComma,
	'.': tokDot,
}

func tokenize(input string) ([]token, error) {
	lx := &lexer{input: []rune(input)}
	var tokens []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

// hasPrefix reports whether the unread input starts with the ASCII operator op.
func (l *lexer) hasPrefix(op string) bool {
	if l.pos+len(op) > len(l.input) {
		return false
	}
	for i := 0; i < len(op); i++ {
		if l.input[l.pos+i] != rune(op[i]) {
			return false
		}
	}
	return true
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.input[l.pos]
	switch {
	case isDigit(c), c == '.' && isDigit(l.peek(1)):
		return l.number()
	case c == '\'' || c == '"':
		return l.str(c)
	case c == '_' || unicode.IsLetter(c):
		for l.pos < len(l.input) && (l.input[l.pos] == '_' || unicode.IsLetter(l.input[l.pos]) || unicode.IsDigit(l.input[l.pos])) {
			l.pos++
		}
		return token{kind: tokName, text: string(l.input[start:l.pos]), pos: start}, nil
	}

	if kind, ok := punctuation[c]; ok {
		l.pos++
		return token{kind: kind, text: string(c), pos: start}, nil
	}

	for _, op := range operators {
		if l.hasPrefix(op) {
			l.pos += len(op)
			return token{kind: tokOp, text: op, pos: start}, nil
		}
	}
	return token{}, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, c, start)
}

func (l *lexer) number() (token, error) {
	start := l.pos
	kind := tokInt
	for isDigit(l.peek(0)) {
		l.pos++
	}
	if l.peek(0) == '.' {
		kind = tokFloat
		l.pos++
		for isDigit(l.peek(0)) {
			l.pos++
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		offset := 1
		if sign := l.peek(1); sign == '+' || sign == '-' {
			offset = 2
		}
		if isDigit(l.peek(offset)) {
			kind = tokFloat
			l.pos += offset
			for isDigit(l.peek(0)) {
				l.pos++
			}
		}
	}
	text := string(l.input[start:l.pos])
	if next := l.peek(0); next == '_' || unicode.IsLetter(next) {
		return token{}, fmt.Errorf("%w: invalid numeric literal %q", ErrSyntax, text+string(next))
	}
	if kind == tokInt && len(text) > 1 && text[0] == '0' && strings.Trim(text, "0") != "" {
		return token{}, fmt.Errorf("%w: leading zeros in integer literal %q", ErrSyntax, text)
	}
	return token{kind: kind, text: text, pos: start}, nil
}

func (l *lexer) str(quote rune) (token, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.input):
			sb.WriteRune(l.input[l.pos+1])
			l.pos += 2
		case c == quote:
			l.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case c == '\n':
			return token{}, fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
		default:
			sb.WriteRune(c)
			l.pos++
		}
	}
	return token{}, fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
