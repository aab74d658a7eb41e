// Package query builds parameterized PostgreSQL statements from a projection
// of view names onto qualified table columns.
package query

import "strings"

// ProjectionMap maps view names (the names API callers filter and sort by)
// onto alias-qualified columns of one table.
type ProjectionMap struct {
	from    string
	alias   string
	byView  map[string]string
	ordered []string
}

// NewProjectionMap starts an empty projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:   schema + "." + table + " " + alias,
		alias:  alias,
		byView: map[string]string{},
	}
}

// Project appends column to the select list under viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.byView[viewName] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// From is the FROM target, "schema.table alias".
func (p *ProjectionMap) From() string {
	return p.from
}

// Column resolves a view name. Unknown names pass through unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.byView[viewName]; ok {
		return col
	}
	return viewName
}

// Columns is the select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}
