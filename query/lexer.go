package query

import (
	"fmt"

	"github.com/graftdb/graft"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokQuery           // ?-
	tokLParen          // (
	tokRParen          // )
	tokComma           // ,
	tokPeriod          // .
	tokIdent           // bare identifier (a variable)
	tokString          // double-quoted literal, unescaped
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of query"
	case tokQuery:
		return `"?-"`
	case tokLParen:
		return `"("`
	case tokRParen:
		return `")"`
	case tokComma:
		return `","`
	case tokPeriod:
		return `"."`
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string // identifier name or unescaped string value
	pos  int    // byte offset in the source
}

// lexer is a small hand-rolled scanner for the query language. Whitespace
// separates tokens and `%` comments run to end of line.
type lexer struct {
	src string
	off int
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	line, col := 1, 1
	for _, r := range l.src[:pos] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return graft.Errorf(graft.CodeMalformed, "%d:%d: %s", line, col, fmt.Sprintf(format, args...))
}

func (l *lexer) skip() {
	for l.off < len(l.src) {
		switch c := l.src[l.off]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.off++
		case c == '%':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.off++
			}
		default:
			return
		}
	}
}

func isIdentRune(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func isIdentStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

func (l *lexer) next() (token, error) {
	l.skip()
	start := l.off
	if l.off >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	switch c := l.src[l.off]; {
	case c == '(':
		l.off++
		return token{kind: tokLParen, pos: start}, nil
	case c == ')':
		l.off++
		return token{kind: tokRParen, pos: start}, nil
	case c == ',':
		l.off++
		return token{kind: tokComma, pos: start}, nil
	case c == '.':
		l.off++
		return token{kind: tokPeriod, pos: start}, nil
	case c == '?':
		if l.off+1 < len(l.src) && l.src[l.off+1] == '-' {
			l.off += 2
			return token{kind: tokQuery, pos: start}, nil
		}
		return token{}, l.errorf(start, "unexpected character %q", c)
	case c == '"':
		return l.scanString()
	case isIdentStart(c):
		for l.off < len(l.src) && isIdentRune(l.src[l.off]) {
			l.off++
		}
		return token{kind: tokIdent, text: l.src[start:l.off], pos: start}, nil
	default:
		return token{}, l.errorf(start, "unexpected character %q", c)
	}
}

// scanString consumes a double-quoted literal and resolves its escapes.
// The recognized escapes are \t \r \n \" \' and \\.
func (l *lexer) scanString() (token, error) {
	start := l.off
	l.off++ // opening quote
	var out []byte
	for l.off < len(l.src) {
		switch c := l.src[l.off]; c {
		case '"':
			l.off++
			return token{kind: tokString, text: string(out), pos: start}, nil
		case '\\':
			if l.off+1 >= len(l.src) {
				return token{}, l.errorf(start, "unterminated string literal")
			}
			esc := l.src[l.off+1]
			switch esc {
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case 'n':
				out = append(out, '\n')
			case '"', '\'', '\\':
				out = append(out, esc)
			default:
				return token{}, l.errorf(l.off, `invalid escape \%c`, esc)
			}
			l.off += 2
		case '\n':
			return token{}, l.errorf(start, "unterminated string literal")
		default:
			out = append(out, c)
			l.off++
		}
	}
	return token{}, l.errorf(start, "unterminated string literal")
}
