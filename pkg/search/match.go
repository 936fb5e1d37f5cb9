package search

import (
	"sort"
	"strings"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// Match reports whether desc satisfies the query. Conditions are evaluated
// left to right; AND and OR have equal precedence. An empty query matches
// everything.
func (q *Query) Match(desc models.Descriptor) bool {
	if len(q.Conditions) == 0 {
		return true
	}

	result := evaluate(q.Conditions[0], desc)
	for i, logic := range q.Logic {
		next := evaluate(q.Conditions[i+1], desc)
		if logic == OperatorOR {
			result = result || next
		} else {
			result = result && next
		}
	}
	return result
}

func evaluate(cond Condition, desc models.Descriptor) bool {
	value := strings.ToLower(cond.Value)

	var ok bool
	switch cond.Field {
	case FieldName:
		ok = strings.Contains(strings.ToLower(desc.Name), value)
	case FieldAuthor:
		ok = strings.Contains(strings.ToLower(desc.Author), value)
	case FieldVersion:
		ok = strings.EqualFold(desc.Version, cond.Value)
	case FieldInput:
		_, ok = desc.Inputs[cond.Value]
	case FieldOutput:
		_, ok = desc.Outputs[cond.Value]
	case FieldParam:
		_, ok = desc.Parameters[cond.Value]
	case FieldContent:
		ok = strings.Contains(strings.ToLower(desc.Name), value) ||
			strings.Contains(strings.ToLower(desc.Description), value)
	}

	if cond.Negate {
		return !ok
	}
	return ok
}

// Filter parses query and returns the sorted addresses of the components
// that match it.
func Filter(components map[string]models.Descriptor, query string) ([]string, error) {
	q, err := NewParser().Parse(query)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(components))
	for addr, desc := range components {
		if q.Match(desc) {
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)
	return addrs, nil
}
