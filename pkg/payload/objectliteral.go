// Package payload implements the Payload CMS domain tools: structural
// validation of collection/field/global/config code, template generation,
// project scaffolding, and a client for live Payload instances.
package payload

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Function marks a property whose value was a function expression in the
// source. Validation only cares that such properties exist, not what they
// compute.
type Function struct{}

// ParseObjectLiteral parses a JavaScript object literal into generic Go
// values. It accepts the syntax the generators emit and strict JSON as a
// subset: single or double quoted strings, bare keys, trailing commas,
// comments, and function expressions (which become Function markers).
func ParseObjectLiteral(code string) (interface{}, error) {
	p := &literalParser{src: []rune(code)}
	p.skipTrivia()
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipTrivia()
	if p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
		p.skipTrivia()
	}
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", p.pos)
	}
	return value, nil
}

type literalParser struct {
	src []rune
	pos int
}

func (p *literalParser) peek() (rune, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *literalParser) skipTrivia() {
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case unicode.IsSpace(r):
			p.pos++
		case r == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case r == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			p.pos += 2
			for p.pos+1 < len(p.src) && !(p.src[p.pos] == '*' && p.src[p.pos+1] == '/') {
				p.pos++
			}
			p.pos += 2
		default:
			return
		}
	}
}

func (p *literalParser) parseValue() (interface{}, error) {
	r, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch {
	case r == '{':
		return p.parseObject()
	case r == '[':
		return p.parseArray()
	case r == '\'' || r == '"' || r == '`':
		return p.parseString()
	case unicode.IsDigit(r) || r == '-':
		return p.parseNumber()
	default:
		return p.parseExpression()
	}
}

func (p *literalParser) parseObject() (map[string]interface{}, error) {
	p.pos++ // consume {
	obj := make(map[string]interface{})

	for {
		p.skipTrivia()
		r, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("unterminated object literal")
		}
		if r == '}' {
			p.pos++
			return obj, nil
		}

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		p.skipTrivia()
		if r, ok := p.peek(); !ok || r != ':' {
			return nil, fmt.Errorf("expected ':' after key %q", key)
		}
		p.pos++

		p.skipTrivia()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = value

		p.skipTrivia()
		r, ok = p.peek()
		switch {
		case !ok:
			return nil, fmt.Errorf("unterminated object literal")
		case r == ',':
			p.pos++
		case r == '}':
			// next loop iteration closes the object
		default:
			return nil, fmt.Errorf("expected ',' or '}' after value of %q", key)
		}
	}
}

func (p *literalParser) parseArray() ([]interface{}, error) {
	p.pos++ // consume [
	arr := []interface{}{}

	for {
		p.skipTrivia()
		r, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("unterminated array literal")
		}
		if r == ']' {
			p.pos++
			return arr, nil
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)

		p.skipTrivia()
		r, ok = p.peek()
		switch {
		case !ok:
			return nil, fmt.Errorf("unterminated array literal")
		case r == ',':
			p.pos++
		case r == ']':
		default:
			return nil, fmt.Errorf("expected ',' or ']' in array literal")
		}
	}
}

func (p *literalParser) parseKey() (string, error) {
	r, _ := p.peek()
	if r == '\'' || r == '"' {
		return p.parseString()
	}
	if !isIdentRune(r) {
		return "", fmt.Errorf("expected object key at offset %d", p.pos)
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentRune(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos]), nil
}

func (p *literalParser) parseString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder

	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch r {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", fmt.Errorf("unterminated string literal")
			}
			switch p.src[p.pos] {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(p.src[p.pos])
			}
			p.pos++
		default:
			b.WriteRune(r)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string literal")
}

func (p *literalParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if unicode.IsDigit(r) || r == '-' || r == '+' || r == '.' || r == 'e' || r == 'E' {
			p.pos++
			continue
		}
		break
	}
	raw := string(p.src[start:p.pos])
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return n, nil
}

// parseExpression consumes a non-literal value: keywords, identifiers,
// arrow functions, regexes. Anything containing => becomes a Function
// marker; other expressions are kept as their raw text.
func (p *literalParser) parseExpression() (interface{}, error) {
	start := p.pos
	depth := 0

	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch r {
		case '\'', '"', '`':
			if _, err := p.parseString(); err != nil {
				return nil, err
			}
			continue
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			if depth == 0 {
				return p.finishExpression(start)
			}
			depth--
		case ',':
			if depth == 0 {
				return p.finishExpression(start)
			}
		}
		p.pos++
	}
	return p.finishExpression(start)
}

func (p *literalParser) finishExpression(start int) (interface{}, error) {
	raw := strings.TrimSpace(string(p.src[start:p.pos]))
	if raw == "" {
		return nil, fmt.Errorf("expected value at offset %d", start)
	}

	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	}

	if strings.Contains(raw, "=>") || strings.HasPrefix(raw, "function") {
		return Function{}, nil
	}
	return raw, nil
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}
