// Package querysql compiles history queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/pulsenet/internal/queryir"
)

// DefaultOrderKeys is the stable row order of each history table. Text
// columns use COLLATE BINARY so ordering does not depend on locale.
var DefaultOrderKeys = map[string]string{
	"circuits":      "hash COLLATE BINARY ASC",
	"runs":          "seq ASC",
	"press_stats":   "run_id COLLATE BINARY ASC, press ASC",
	"feeder_cycles": "run_id COLLATE BINARY ASC, feeder COLLATE BINARY ASC",
}

// SQLCompiler compiles queryir queries to SQL.
//
// Every compiled query ends in ORDER BY the table's order key, and every
// literal is passed as a ? parameter, never interpolated.
type SQLCompiler struct {
	// OrderKeys maps a table to its ORDER BY clause.
	OrderKeys map[string]string
}

// NewSQLCompiler creates a compiler using DefaultOrderKeys.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{OrderKeys: DefaultOrderKeys}
}

// Compile converts a query to (sql, params). The query should have passed
// queryir.Validate; Compile only rejects what it cannot express.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		if query == nil {
			return "", nil, fmt.Errorf("cannot compile nil query")
		}
		return c.compileSelect(*query)
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("select from %s: explicit columns required", q.From)
	}
	orderBy, ok := c.OrderKeys[q.From]
	if !ok {
		return "", nil, fmt.Errorf("select from %s: no stable order key", q.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(q.Columns, ", "), q.From)

	var params []any
	if q.Filter != nil {
		where, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = filterParams
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)
	return b.String(), params, nil
}

func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compileEquals(pred)
	case *queryir.Equals:
		return compileEquals(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := toParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", eq.Field, err)
	}
	return eq.Field + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, predParams, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if _, nested := pred.(queryir.And); nested {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// toParam converts a literal to a SQLite parameter. Booleans are stored
// as 0/1 integers.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case nil:
		return nil, fmt.Errorf("NULL cannot be compared with =")
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", v)
	}
}
