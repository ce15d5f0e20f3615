package query

import (
	"fmt"
	"strings"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/catalog"
)

// ParseError reports an unknown keyword, unsupported construct or
// malformed clause.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Detail
}

// FieldError reports a reference to a field that does not exist on
// RuleRecord. Unresolved fields are rejected, never silently dropped.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// Predicate is one equality comparison from the WHERE clause.
type Predicate struct {
	Field string
	Value string
}

// QueryPlan is the validated representation of a structured query.
type QueryPlan struct {
	Fields  []string
	Star    bool
	Count   bool
	Where   []Predicate
	GroupBy []string
	OrderBy string
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) expectWord(keyword string) error {
	t, ok := p.next()
	if !ok || !t.isWord(keyword) {
		return &ParseError{Detail: fmt.Sprintf("expected %s", keyword)}
	}
	return nil
}

// parse builds a QueryPlan from tokens. Structural problems come back as
// ParseErrors; field existence is checked separately by validate.
func parse(tokens []token) (*QueryPlan, error) {
	p := &parser{tokens: tokens}
	plan := &QueryPlan{}

	if err := p.expectWord("SELECT"); err != nil {
		return nil, &ParseError{Detail: "only SELECT queries are supported"}
	}

	if err := p.parseSelectList(plan); err != nil {
		return nil, err
	}

	if err := p.expectWord("FROM"); err != nil {
		return nil, err
	}
	table, ok := p.next()
	if !ok || table.kind != tokenWord {
		return nil, &ParseError{Detail: "expected table name after FROM"}
	}
	if !strings.EqualFold(table.text, "rules") {
		return nil, &ParseError{Detail: fmt.Sprintf("unknown table %q", table.text)}
	}

	if t, ok := p.peek(); ok && t.isWord("WHERE") {
		p.next()
		if err := p.parseWhere(plan); err != nil {
			return nil, err
		}
	}

	if t, ok := p.peek(); ok && t.isWord("GROUP") {
		p.next()
		if err := p.expectWord("BY"); err != nil {
			return nil, err
		}
		if err := p.parseGroupBy(plan); err != nil {
			return nil, err
		}
	}

	if t, ok := p.peek(); ok && t.isWord("ORDER") {
		p.next()
		if err := p.expectWord("BY"); err != nil {
			return nil, err
		}
		if err := p.parseOrderBy(plan); err != nil {
			return nil, err
		}
	}

	if t, ok := p.peek(); ok {
		return nil, &ParseError{Detail: fmt.Sprintf("unsupported construct %q", t.text)}
	}

	if plan.Star && len(plan.GroupBy) > 0 {
		return nil, &ParseError{Detail: "SELECT * cannot be combined with GROUP BY"}
	}
	if len(plan.GroupBy) > 0 {
		for _, f := range plan.Fields {
			if !contains(plan.GroupBy, f) {
				return nil, &ParseError{Detail: fmt.Sprintf("selected field %q must appear in GROUP BY", f)}
			}
		}
	}

	return plan, nil
}

func (p *parser) parseSelectList(plan *QueryPlan) error {
	if t, ok := p.peek(); ok && t.isSymbol("*") {
		p.next()
		plan.Star = true
		return nil
	}

	for {
		t, ok := p.next()
		if !ok || t.kind != tokenWord {
			return &ParseError{Detail: "expected field name in select list"}
		}

		if strings.EqualFold(t.text, "COUNT") {
			if err := p.parseCountArgs(); err != nil {
				return err
			}
			plan.Count = true
		} else {
			plan.Fields = append(plan.Fields, t.text)
		}

		if t, ok := p.peek(); ok && t.isSymbol(",") {
			p.next()
			continue
		}
		return nil
	}
}

func (p *parser) parseCountArgs() error {
	open, ok := p.next()
	if !ok || !open.isSymbol("(") {
		return &ParseError{Detail: "expected ( after COUNT"}
	}
	star, ok := p.next()
	if !ok || !star.isSymbol("*") {
		return &ParseError{Detail: "count only supports COUNT(*)"}
	}
	closing, ok := p.next()
	if !ok || !closing.isSymbol(")") {
		return &ParseError{Detail: "expected ) to close COUNT(*)"}
	}
	return nil
}

func (p *parser) parseWhere(plan *QueryPlan) error {
	for {
		field, ok := p.next()
		if !ok || field.kind != tokenWord {
			return &ParseError{Detail: "expected field name in WHERE clause"}
		}

		op, ok := p.next()
		if !ok {
			return &ParseError{Detail: "expected = after WHERE field"}
		}
		switch {
		case op.isSymbol("="):
		case op.isSymbol("!"), op.isSymbol("<"), op.isSymbol(">"):
			return &ParseError{Detail: fmt.Sprintf("unsupported operator %q: only = is allowed", op.text)}
		case op.isWord("LIKE"), op.isWord("IN"):
			return &ParseError{Detail: fmt.Sprintf("unsupported operator %s: only = is allowed", strings.ToUpper(op.text))}
		default:
			return &ParseError{Detail: "expected = after WHERE field"}
		}

		value, ok := p.next()
		if !ok || (value.kind != tokenString && value.kind != tokenWord) {
			return &ParseError{Detail: "expected literal after ="}
		}

		plan.Where = append(plan.Where, Predicate{Field: field.text, Value: value.text})

		t, ok := p.peek()
		if !ok {
			return nil
		}
		switch {
		case t.isWord("AND"):
			p.next()
		case t.isWord("OR"):
			return &ParseError{Detail: "unsupported construct OR: predicates combine with AND only"}
		default:
			return nil
		}
	}
}

func (p *parser) parseGroupBy(plan *QueryPlan) error {
	for {
		t, ok := p.next()
		if !ok || t.kind != tokenWord {
			return &ParseError{Detail: "expected field name after GROUP BY"}
		}
		plan.GroupBy = append(plan.GroupBy, t.text)

		if t, ok := p.peek(); ok && t.isSymbol(",") {
			p.next()
			continue
		}
		return nil
	}
}

func (p *parser) parseOrderBy(plan *QueryPlan) error {
	t, ok := p.next()
	if !ok || t.kind != tokenWord {
		return &ParseError{Detail: "expected field name after ORDER BY"}
	}
	plan.OrderBy = t.text

	if next, ok := p.peek(); ok {
		if next.isWord("ASC") {
			p.next()
		} else if next.isWord("DESC") {
			return &ParseError{Detail: "unsupported construct DESC: ordering is ascending only"}
		}
	}
	return nil
}

// validate checks every field the plan references against RuleRecord.
func (plan *QueryPlan) validate() error {
	check := func(fields []string) error {
		for _, f := range fields {
			if !catalog.HasField(f) {
				return &FieldError{Field: f}
			}
		}
		return nil
	}

	if err := check(plan.Fields); err != nil {
		return err
	}
	for _, pred := range plan.Where {
		if !catalog.HasField(pred.Field) {
			return &FieldError{Field: pred.Field}
		}
	}
	if err := check(plan.GroupBy); err != nil {
		return err
	}
	if plan.OrderBy != "" && !catalog.HasField(plan.OrderBy) {
		// count is orderable only when the plan computes it
		if !(plan.Count && plan.OrderBy == "count") {
			return &FieldError{Field: plan.OrderBy}
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
