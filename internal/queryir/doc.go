// Package queryir provides a small query representation for reading the
// run history.
//
// A query is a Select over one history table with an explicit column list
// and an optional filter. Filters are built from Equals and And only: there
// is no OR, no NULL comparison, no subquery and no aggregation. The query is
// checked against a Schema before a backend compiles it, so a field name
// that reaches SQL is always a known column.
//
//	[history flags] → [queryir.Select] → Validate → [querysql] → SQLite
//
// Query and Predicate are sealed interfaces using the marker method
// pattern, so backends can switch over every node type exhaustively.
package queryir
