package domain

import "slices"

// Direction is the sort direction of an ordered query.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter matches documents whose Field is exactly equal to Value.
// Equality is typed: the number 1 never equals the string "1".
type Filter struct {
	Field string
	Value any
}

// Order sorts results by Field. Documents without the field are left out.
type Order struct {
	Field     string
	Direction Direction
}

// Query selects documents from one collection. The zero value selects all of them.
type Query struct {
	Filters []Filter
	Order   *Order
}

// All selects every document of a collection.
func All() Query { return Query{} }

// Where selects documents whose field equals value.
func Where(field string, value any) Query { return Query{}.Where(field, value) }

// Where adds an equality filter; filters are combined with AND.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(slices.Clone(q.Filters), Filter{Field: field, Value: value})
	return q
}

// OrderBy sorts the results by field.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.Order = &Order{Field: field, Direction: dir}
	return q
}

// IndexSpec describes a secondary index a store driver may create for a collection.
type IndexSpec struct {
	Collection string
	Field      string
	Desc       bool
}
