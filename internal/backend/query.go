package backend

import "context"

// Filter is a single equality predicate (column = value).
type Filter struct {
	Column string
	Value  string
}

// Query is a fully assembled select, handed to a QueryExecutor.
type Query struct {
	Table   string
	Columns string
	Filters []Filter
}

// QueryBuilder assembles a tabular query fluently:
//
//	rows, err := c.From("user_roles").Select("role_name").Eq("user_id", id).Do(ctx)
//
// Builders are single-use and not safe for concurrent mutation.
type QueryBuilder struct {
	exec    QueryExecutor
	table   string
	columns string
	filters []Filter
	inserts []Row
}

// NewQuery starts a builder against table, executed through exec.
func NewQuery(exec QueryExecutor, table string) *QueryBuilder {
	return &QueryBuilder{exec: exec, table: table, columns: "*"}
}

// Select sets the projected columns, in the backend's embedded-resource
// syntax (e.g. "role_name, roles(role_name)").
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Eq adds an equality filter on column.
func (q *QueryBuilder) Eq(column, value string) *QueryBuilder {
	q.filters = append(q.filters, Filter{Column: column, Value: value})
	return q
}

// Insert switches the builder to an insert of the given rows.
func (q *QueryBuilder) Insert(rows ...Row) *QueryBuilder {
	q.inserts = rows
	return q
}

// Do executes the query. Selects return the decoded result elements: rows
// are normally Row maps, but sources projecting a single scalar yield plain
// strings, so elements are typed any. Inserts return (nil, nil) on success.
func (q *QueryBuilder) Do(ctx context.Context) ([]any, error) {
	if q.inserts != nil {
		return nil, q.exec.ExecInsert(ctx, q.table, q.inserts)
	}
	return q.exec.ExecSelect(ctx, Query{Table: q.table, Columns: q.columns, Filters: q.filters})
}
