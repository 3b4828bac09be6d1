package queryir

import (
	"fmt"
	"slices"
	"strings"
)

// Schema lists the columns of every readable table.
type Schema map[string][]string

// ValidationError lists every problem found in a query.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + strings.Join(e.Problems, "; ")
}

// Validate checks a query against schema: the table exists, every
// selected and filtered column belongs to it, and every literal has a
// supported type. Returns a *ValidationError listing all problems, or nil.
//
// Validate is a pure function with no side effects.
func Validate(query Query, schema Schema) error {
	v := &validator{schema: schema}
	v.validateQuery(query)
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	schema   Schema
	columns  []string
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addProblem("nil query")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addProblem("nil query")
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	columns, ok := v.schema[sel.From]
	if !ok {
		v.addProblem("unknown table %q", sel.From)
		return
	}
	v.columns = columns

	if len(sel.Columns) == 0 {
		v.addProblem("no columns selected from %s", sel.From)
	}
	for _, c := range sel.Columns {
		v.checkField(sel.From, c)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.From, sel.Filter)
	}
}

func (v *validator) validatePredicate(table string, p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.validateEquals(table, pred)
	case *Equals:
		v.validateEquals(table, *pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(table, sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(table, sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) validateEquals(table string, eq Equals) {
	v.checkField(table, eq.Field)
	switch eq.Value.(type) {
	case string, int, int64, bool:
	case nil:
		v.addProblem("field %q compared to NULL", eq.Field)
	default:
		v.addProblem("field %q: unsupported value type %T", eq.Field, eq.Value)
	}
}

func (v *validator) checkField(table, field string) {
	if !slices.Contains(v.columns, field) {
		v.addProblem("table %s has no column %q", table, field)
	}
}
