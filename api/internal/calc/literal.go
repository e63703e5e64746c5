package calc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseLiteral reads a Python-style literal: strings in single or double
// quotes, numbers, True/False/None, lists, tuples and dicts. The JSON
// spellings true/false/null are names in Python and are rejected, leaving
// JSON-shaped text to the json strategy. Names, calls and operators are rejected, so nothing is ever
// evaluated. The result uses the same shapes as encoding/json with UseNumber:
// map[string]any, []any, string, json.Number, bool and nil.
func ParseLiteral(s string) (any, error) {
	p := &literalParser{s: s}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, p.errorf("unexpected trailing input")
	}
	return v, nil
}

// maxLiteralDepth matches the nesting limit of encoding/json.
const maxLiteralDepth = 10000

type literalParser struct {
	s     string
	pos   int
	depth int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("literal: offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		case '#':
			for p.pos < len(p.s) && p.s[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *literalParser) consume(c byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *literalParser) value() (any, error) {
	if p.pos >= len(p.s) {
		return nil, p.errorf("unexpected end of input")
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxLiteralDepth {
		return nil, p.errorf("nesting exceeds %d levels", maxLiteralDepth)
	}
	c := p.s[p.pos]
	switch {
	case c == '[':
		p.pos++
		return p.items(']')
	case c == '(':
		return p.tuple()
	case c == '{':
		return p.dict()
	case c == '\'' || c == '"':
		return p.stringLit()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		if _, _, ok := p.stringPrefix(); ok {
			return p.stringLit()
		}
		return p.name()
	}
	return nil, p.errorf("unexpected character %q", c)
}

// items reads comma separated values up to close; the opening bracket is
// already consumed. A trailing comma is allowed.
func (p *literalParser) items(close byte) ([]any, error) {
	out := []any{}
	for {
		p.skipSpace()
		if p.consume(close) {
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(close) {
			return out, nil
		}
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated sequence, expected %q", close)
		}
		return nil, p.errorf("expected ',' or %q, got %q", close, p.s[p.pos])
	}
}

// tuple handles "()", "(x)" (plain grouping) and "(x, ...)".
func (p *literalParser) tuple() (any, error) {
	p.pos++
	p.skipSpace()
	if p.consume(')') {
		return []any{}, nil
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.consume(')') {
		return first, nil
	}
	if !p.consume(',') {
		return nil, p.errorf("expected ',' or ')'")
	}
	rest, err := p.items(')')
	if err != nil {
		return nil, err
	}
	return append([]any{first}, rest...), nil
}

func (p *literalParser) dict() (any, error) {
	p.pos++
	out := map[string]any{}
	for {
		p.skipSpace()
		if p.consume('}') {
			return out, nil
		}
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		key, ok := dictKey(k)
		if !ok {
			return nil, p.errorf("unhashable dict key of type %T", k)
		}
		p.skipSpace()
		if !p.consume(':') {
			return nil, p.errorf("expected ':' after dict key")
		}
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[key] = v
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume('}') {
			return out, nil
		}
		return nil, p.errorf("expected ',' or '}' in dict")
	}
}

func dictKey(k any) (string, bool) {
	switch v := k.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "True", true
		}
		return "False", true
	case nil:
		return "None", true
	}
	return "", false
}

func (p *literalParser) name() (any, error) {
	start := p.pos
	for p.pos < len(p.s) && isIdentPart(p.s[p.pos]) {
		p.pos++
	}
	switch ident := p.s[start:p.pos]; ident {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	default:
		p.pos = start
		return nil, p.errorf("name %q is not a literal", ident)
	}
}

func (p *literalParser) number() (any, error) {
	sign := ""
	switch p.s[p.pos] {
	case '-':
		sign = "-"
		p.pos++
		p.skipSpace()
	case '+':
		p.pos++
		p.skipSpace()
	}

	var b strings.Builder
	b.WriteString(sign)
	intDigits := p.digits(&b)
	fracDigits := 0
	if p.consume('.') {
		if intDigits == 0 {
			b.WriteByte('0')
		}
		b.WriteByte('.')
		fracDigits = p.digits(&b)
		if fracDigits == 0 {
			b.WriteByte('0')
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return nil, p.errorf("malformed number")
	}
	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		b.WriteByte('e')
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			b.WriteByte(p.s[p.pos])
			p.pos++
		}
		if p.digits(&b) == 0 {
			return nil, p.errorf("malformed exponent")
		}
	}
	if p.pos < len(p.s) && isIdentPart(p.s[p.pos]) {
		return nil, p.errorf("unsupported numeric literal")
	}
	return json.Number(b.String()), nil
}

// digits copies a run of digits (Python allows '_' separators) into b.
func (p *literalParser) digits(b *strings.Builder) int {
	n := 0
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if isDigit(c) {
			b.WriteByte(c)
			n++
		} else if c != '_' || n == 0 {
			break
		}
		p.pos++
	}
	return n
}

// stringPrefix detects u/r prefixes directly followed by a quote.
func (p *literalParser) stringPrefix() (raw bool, n int, ok bool) {
	for n = 0; n < 2 && p.pos+n < len(p.s); n++ {
		switch p.s[p.pos+n] {
		case 'r', 'R':
			raw = true
		case 'u', 'U':
		case '\'', '"':
			return raw, n, n > 0
		default:
			return false, 0, false
		}
	}
	if p.pos+n < len(p.s) && (p.s[p.pos+n] == '\'' || p.s[p.pos+n] == '"') {
		return raw, n, true
	}
	return false, 0, false
}

// stringLit reads one or more adjacent string literals and joins them.
func (p *literalParser) stringLit() (any, error) {
	var b strings.Builder
	for {
		raw := false
		if c := p.s[p.pos]; c != '\'' && c != '"' {
			r, n, _ := p.stringPrefix()
			raw = r
			p.pos += n
		}
		if err := p.stringBody(&b, raw); err != nil {
			return nil, err
		}
		save := p.pos
		p.skipSpace()
		if p.pos < len(p.s) {
			c := p.s[p.pos]
			if c == '\'' || c == '"' {
				continue
			}
			if _, _, ok := p.stringPrefix(); ok {
				continue
			}
		}
		p.pos = save
		return b.String(), nil
	}
}

func (p *literalParser) stringBody(b *strings.Builder, raw bool) error {
	q := p.s[p.pos]
	delim := string(q)
	if strings.HasPrefix(p.s[p.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	triple := len(delim) == 3
	p.pos += len(delim)

	for p.pos < len(p.s) {
		if strings.HasPrefix(p.s[p.pos:], delim) {
			p.pos += len(delim)
			return nil
		}
		c := p.s[p.pos]
		switch {
		case c == '\n' && !triple:
			return p.errorf("newline in string literal")
		case c == '\\':
			if p.pos+1 >= len(p.s) {
				return p.errorf("unterminated string literal")
			}
			if raw {
				b.WriteByte('\\')
				b.WriteByte(p.s[p.pos+1])
				p.pos += 2
				continue
			}
			if err := p.escape(b); err != nil {
				return err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return p.errorf("unterminated string literal")
}

// escape decodes one backslash sequence. Unknown escapes are kept verbatim.
func (p *literalParser) escape(b *strings.Builder) error {
	c := p.s[p.pos+1]
	p.pos += 2
	switch c {
	case '\n':
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'a':
		b.WriteByte('\a')
	case 'x':
		return p.hexEscape(b, 2)
	case 'u':
		return p.hexEscape(b, 4)
	case 'U':
		return p.hexEscape(b, 8)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int(c - '0')
		for i := 0; i < 2 && p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '7'; i++ {
			v = v*8 + int(p.s[p.pos]-'0')
			p.pos++
		}
		b.WriteRune(rune(v))
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) hexEscape(b *strings.Builder, n int) error {
	if p.pos+n > len(p.s) {
		return p.errorf("truncated \\x/\\u escape")
	}
	v, err := strconv.ParseUint(p.s[p.pos:p.pos+n], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return p.errorf("bad escape %q", p.s[p.pos:p.pos+n])
	}
	b.WriteRune(rune(v))
	p.pos += n
	return nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
