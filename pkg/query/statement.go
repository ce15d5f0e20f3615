package query

import (
	"errors"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/catalog"
)

// State is the lifecycle stage of a structured query.
type State string

const (
	StateNew        State = "NEW"
	StateTokenized  State = "TOKENIZED"
	StatePlanned    State = "PLANNED"
	StateExecuted   State = "EXECUTED"
	StateParseError State = "PARSE_ERROR"
	StateFieldError State = "FIELD_ERROR"
)

// Statement carries a query through its stages. Parse errors are terminal
// from TOKENIZED; field errors are terminal from PLANNED. A failed
// statement never executes.
type Statement struct {
	sql   string
	state State
	plan  *QueryPlan
}

// NewStatement wraps a raw query string.
func NewStatement(sql string) *Statement {
	return &Statement{sql: sql, state: StateNew}
}

// State returns the statement's current lifecycle stage.
func (s *Statement) State() State {
	return s.state
}

// Plan returns the query plan once the statement has reached PLANNED.
func (s *Statement) Plan() *QueryPlan {
	return s.plan
}

// Run advances the statement through tokenize, plan, validate and execute.
func (s *Statement) Run(cat *catalog.Catalog) (*Result, error) {
	tokens, err := tokenize(s.sql)
	if err != nil {
		s.state = StateParseError
		return nil, err
	}
	s.state = StateTokenized

	plan, err := parse(tokens)
	if err != nil {
		s.state = StateParseError
		return nil, err
	}
	s.state = StatePlanned
	s.plan = plan

	if err := plan.validate(); err != nil {
		s.state = StateFieldError
		return nil, err
	}

	result := plan.execute(cat)
	s.state = StateExecuted
	return result, nil
}

// Run parses and executes a structured query against the catalog.
func Run(cat *catalog.Catalog, sql string) (*Result, error) {
	return NewStatement(sql).Run(cat)
}

// IsFieldError reports whether err is a field resolution failure.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

// IsParseError reports whether err is a parse failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
