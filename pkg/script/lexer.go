// Package script implements the sandboxed predicate sub-language used by
// the translator. Programs are restricted to integer arithmetic, string
// operations, and a small control-flow subset; there is no file or network
// I/O, no floats, and no closures, and every statement and call counts
// against a hard operation budget.
package script

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString
	tokPunct
	tokKeyword
)

type token struct {
	kind tokenKind
	text string
	num  int64
	pos  int
}

var keywords = map[string]bool{
	"fn": true, "let": true, "if": true, "else": true, "for": true,
	"in": true, "return": true, "true": true, "false": true,
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF, pos: l.pos})
			return l.toks, nil
		}
		c := l.src[l.pos]
		switch {
		case isDigit(c):
			l.lexNumber()
		case isIdentStart(c):
			l.lexIdent()
		case c == '"':
			if err := l.lexString(); err != nil {
				return nil, err
			}
		default:
			if err := l.lexPunct(); err != nil {
				return nil, err
			}
		}
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentCont(c byte) bool  { return isIdentStart(c) || isDigit(c) }

func (l *lexer) lexNumber() {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	var n int64
	for _, c := range text {
		n = n*10 + int64(c-'0')
	}
	l.toks = append(l.toks, token{kind: tokInt, text: text, num: n, pos: start})
}

func (l *lexer) lexIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	kind := tokIdent
	if keywords[text] {
		kind = tokKeyword
	}
	l.toks = append(l.toks, token{kind: kind, text: text, pos: start})
}

func (l *lexer) lexString() error {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			switch l.src[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(l.src[l.pos])
			}
			l.pos++
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	if l.pos >= len(l.src) {
		return fmt.Errorf("script: unterminated string literal at %d", start)
	}
	l.pos++ // closing quote
	l.toks = append(l.toks, token{kind: tokString, text: b.String(), pos: start})
	return nil
}

var twoCharPunct = []string{"==", "!=", "<=", ">=", "&&", "||"}

func (l *lexer) lexPunct() error {
	start := l.pos
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		for _, p := range twoCharPunct {
			if two == p {
				l.pos += 2
				l.toks = append(l.toks, token{kind: tokPunct, text: two, pos: start})
				return nil
			}
		}
	}
	c := l.src[l.pos]
	switch c {
	case '+', '-', '*', '/', '%', '(', ')', '{', '}', '[', ']', ',', ';', '=', '<', '>', '!', ':':
		l.pos++
		l.toks = append(l.toks, token{kind: tokPunct, text: string(c), pos: start})
		return nil
	default:
		return fmt.Errorf("script: unexpected character %q at %d", c, start)
	}
}
