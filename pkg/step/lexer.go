package step

import (
	"fmt"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokKeyword
	tokInstance
	tokInteger
	tokReal
	tokString
	tokEnum
	tokBinary
	tokLParen
	tokRParen
	tokComma
	tokEquals
	tokSemicolon
	tokDollar
	tokStar
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokKeyword:
		return "keyword"
	case tokInstance:
		return "instance name"
	case tokInteger:
		return "integer"
	case tokReal:
		return "real"
	case tokString:
		return "string"
	case tokEnum:
		return "enumeration"
	case tokBinary:
		return "binary"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokEquals:
		return "'='"
	case tokSemicolon:
		return "';'"
	case tokDollar:
		return "'$'"
	case tokStar:
		return "'*'"
	}
	return "unknown"
}

type token struct {
	kind tokenKind
	text string
	line int
}

// SyntaxError reports malformed exchange-file content.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("step: line %d: %s", e.Line, e.Msg)
}

type lexer struct {
	src  []byte
	pos  int
	line int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) errorf(format string, args ...any) error {
	return &SyntaxError{Line: l.line, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpace() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			start := l.line
			l.pos += 2
			for {
				if l.pos+1 >= len(l.src) {
					return &SyntaxError{Line: start, Msg: "unterminated comment"}
				}
				if l.src[l.pos] == '\n' {
					l.line++
				}
				if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				l.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isKeywordStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' || c == '!'
}

func isKeywordPart(c byte) bool {
	return isKeywordStart(c) || isDigit(c) || c == '-'
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpace(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}
	start := l.pos
	line := l.line
	c := l.src[l.pos]

	single := func(k tokenKind) (token, error) {
		l.pos++
		return token{kind: k, text: string(c), line: line}, nil
	}

	switch {
	case c == '(':
		return single(tokLParen)
	case c == ')':
		return single(tokRParen)
	case c == ',':
		return single(tokComma)
	case c == '=':
		return single(tokEquals)
	case c == ';':
		return single(tokSemicolon)
	case c == '$':
		return single(tokDollar)
	case c == '*':
		return single(tokStar)
	case c == '#':
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if l.pos == start+1 {
			return token{}, l.errorf("expected digits after '#'")
		}
		return token{kind: tokInstance, text: string(l.src[start+1 : l.pos]), line: line}, nil
	case c == '\'':
		l.pos++
		for {
			if l.pos >= len(l.src) {
				return token{}, &SyntaxError{Line: line, Msg: "unterminated string"}
			}
			ch := l.src[l.pos]
			if ch == '\n' {
				l.line++
			}
			if ch == '\'' {
				if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
					l.pos += 2
					continue
				}
				l.pos++
				break
			}
			l.pos++
		}
		return token{kind: tokString, text: string(l.src[start:l.pos]), line: line}, nil
	case c == '"':
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			l.pos++
		}
		if l.pos >= len(l.src) {
			return token{}, &SyntaxError{Line: line, Msg: "unterminated binary"}
		}
		l.pos++
		return token{kind: tokBinary, text: string(l.src[start:l.pos]), line: line}, nil
	case c == '.':
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != '.' {
			if !isKeywordPart(l.src[l.pos]) {
				return token{}, l.errorf("invalid character %q in enumeration", l.src[l.pos])
			}
			l.pos++
		}
		if l.pos >= len(l.src) {
			return token{}, &SyntaxError{Line: line, Msg: "unterminated enumeration"}
		}
		l.pos++
		return token{kind: tokEnum, text: string(l.src[start:l.pos]), line: line}, nil
	case isDigit(c) || c == '-' || c == '+':
		return l.number()
	case isKeywordStart(c):
		for l.pos < len(l.src) && isKeywordPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokKeyword, text: string(l.src[start:l.pos]), line: line}, nil
	}
	return token{}, l.errorf("unexpected character %q", c)
}

func (l *lexer) number() (token, error) {
	start := l.pos
	line := l.line
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}
	digits := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == digits {
		return token{}, l.errorf("expected digits in number")
	}
	kind := tokInteger
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		kind = tokReal
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'E' || l.src[l.pos] == 'e') {
		kind = tokReal
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '-' || l.src[l.pos] == '+') {
			l.pos++
		}
		exp := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if l.pos == exp {
			return token{}, l.errorf("expected digits in exponent")
		}
	}
	return token{kind: kind, text: string(l.src[start:l.pos]), line: line}, nil
}
