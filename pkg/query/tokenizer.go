// Package query implements the constrained query language served by the
// mcp_query tool plus the free-text rule search behind the query tool.
// Structured queries are processed in strict stages: tokenize, plan,
// validate, execute. A rejected query never partially executes and the
// rule catalog is read-only throughout.
package query

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenSymbol
)

type token struct {
	kind tokenKind
	text string
}

func (t token) isWord(keyword string) bool {
	return t.kind == tokenWord && strings.EqualFold(t.text, keyword)
}

func (t token) isSymbol(sym string) bool {
	return t.kind == tokenSymbol && t.text == sym
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}

// tokenize splits a query string into words, quoted strings and symbols.
// It is whitespace and quote aware; quoted literals keep their spacing.
func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '\'' || r == '"':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, &ParseError{Detail: "unterminated string literal"}
			}
			tokens = append(tokens, token{kind: tokenString, text: string(runes[i+1 : j])})
			i = j + 1

		case strings.ContainsRune(",()*=!<>", r):
			tokens = append(tokens, token{kind: tokenSymbol, text: string(r)})
			i++

		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[i:j])})
			i = j

		default:
			return nil, &ParseError{Detail: fmt.Sprintf("unexpected character %q", string(r))}
		}
	}

	if len(tokens) == 0 {
		return nil, &ParseError{Detail: "empty query"}
	}
	return tokens, nil
}
