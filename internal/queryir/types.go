package queryir

// Query is an abstract read over the history tables.
//
// Sealed: only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate is a filter condition in a Select.
//
// Sealed: only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Select reads Columns from one table, keeping the rows Filter accepts.
//
//	Select{
//	  From:    "runs",
//	  Columns: []string{"id", "mode", "result"},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "mode", Value: "period"},
//	    Equals{Field: "target", Value: "rx"},
//	  }},
//	}
//
// reads as
//
//	SELECT id, mode, result FROM runs WHERE mode = ? AND target = ?
//
// Row order is not part of the query; backends always apply the table's
// stable order key.
type Select struct {
	From    string    // table name
	Columns []string  // explicit column list, in output order
	Filter  Predicate // nil = every row
}

func (Select) queryNode() {}

// Equals compares a column to a literal.
//
// Value must be a string, int, int64 or bool. Nil and floats are rejected
// by Validate.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// And holds when every predicate holds. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Where builds the filter for a set of column constraints, skipping empty
// string values. Fields are applied in the order given. Returns nil when
// nothing constrains the query.
func Where(pairs ...Equals) Predicate {
	var preds []Predicate
	for _, p := range pairs {
		if s, ok := p.Value.(string); ok && s == "" {
			continue
		}
		preds = append(preds, p)
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return And{Predicates: preds}
	}
}
