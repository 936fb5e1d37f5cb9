// Package search filters component descriptors with small field:value
// queries such as `name:filter AND NOT author:"Jane Doe"`.
package search

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType represents the descriptor field a condition looks at
type FieldType string

const (
	FieldName    FieldType = "name"
	FieldAuthor  FieldType = "author"
	FieldVersion FieldType = "version"
	FieldInput   FieldType = "input"
	FieldOutput  FieldType = "output"
	FieldParam   FieldType = "param"
	FieldContent FieldType = "content"
)

// Operator represents a search operator
type Operator string

const (
	OperatorEquals   Operator = "="
	OperatorContains Operator = "contains"
	OperatorAND      Operator = "AND"
	OperatorOR       Operator = "OR"
)

// Condition represents a single search condition
type Condition struct {
	Field    FieldType
	Operator Operator
	Value    string
	Negate   bool
}

// Query represents a parsed search query
type Query struct {
	Conditions []Condition
	Logic      []Operator // Logic operators between conditions
	Raw        string
}

// Parser handles parsing of search queries
type Parser struct {
	fieldPattern  *regexp.Regexp
	quotedPattern *regexp.Regexp
}

// NewParser creates a new search query parser
func NewParser() *Parser {
	return &Parser{
		fieldPattern:  regexp.MustCompile(`^(\w+):(.+)$`),
		quotedPattern: regexp.MustCompile(`^"([^"]*)"$`),
	}
}

// Parse parses a search query string into a Query object
func (p *Parser) Parse(input string) (*Query, error) {
	query := &Query{Raw: input}

	tokens := p.tokenize(input)
	if err := p.parseTokens(tokens, query); err != nil {
		return nil, err
	}
	return query, nil
}

// tokenize splits on spaces outside double quotes
func (p *Parser) tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ' ' && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

func (p *Parser) parseTokens(tokens []string, query *Query) error {
	negate := false
	pendingLogic := false

	for _, token := range tokens {
		switch strings.ToUpper(token) {
		case "AND", "OR":
			if len(query.Conditions) == 0 || pendingLogic {
				return fmt.Errorf("unexpected operator %s", token)
			}
			query.Logic = append(query.Logic, Operator(strings.ToUpper(token)))
			pendingLogic = true
			continue
		case "NOT":
			negate = !negate
			continue
		}

		cond, err := p.parseCondition(token)
		if err != nil {
			return err
		}
		cond.Negate = negate
		negate = false

		// Adjacent conditions are ANDed
		if len(query.Conditions) > 0 && !pendingLogic {
			query.Logic = append(query.Logic, OperatorAND)
		}
		pendingLogic = false
		query.Conditions = append(query.Conditions, cond)
	}

	if negate {
		return fmt.Errorf("NOT operator requires a condition")
	}
	if pendingLogic {
		return fmt.Errorf("operator %s requires a condition", query.Logic[len(query.Logic)-1])
	}
	return nil
}

func (p *Parser) parseCondition(token string) (Condition, error) {
	matches := p.fieldPattern.FindStringSubmatch(token)
	if len(matches) != 3 {
		return Condition{Field: FieldContent, Operator: OperatorContains, Value: p.unquote(token)}, nil
	}

	cond := Condition{Value: p.unquote(matches[2])}
	switch field := FieldType(strings.ToLower(matches[1])); field {
	case FieldName, FieldAuthor, FieldContent:
		cond.Field = field
		cond.Operator = OperatorContains
	case FieldVersion, FieldInput, FieldOutput, FieldParam:
		cond.Field = field
		cond.Operator = OperatorEquals
	default:
		return Condition{}, fmt.Errorf("unknown field: %s", matches[1])
	}
	return cond, nil
}

// unquote removes quotes from a string if present
func (p *Parser) unquote(s string) string {
	if matches := p.quotedPattern.FindStringSubmatch(s); len(matches) == 2 {
		return matches[1]
	}
	return s
}
