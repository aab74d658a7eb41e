package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// clause is a WHERE fragment whose "?" markers are numbered at render time.
type clause struct {
	text string
	args []any
}

// Builder assembles PostgreSQL statements over a ProjectionMap. Conditions
// are ANDed in the order they are added and placeholders are numbered
// $1..$n across all of them.
type Builder struct {
	projection *ProjectionMap
	clauses    []clause
	order      []SortField
	fallback   []SortField
}

// NewBuilder starts a query over projection. defaultSort applies when
// OrderByFields is never called or is given an empty list.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, fallback: defaultSort}
}

// Build returns a SELECT of every projected column.
func (b *Builder) Build() (string, []any) {
	where, args := b.Where()
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From() + where + b.orderBy(), args
}

// BuildCount returns a COUNT(*) honoring the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.Where()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage returns the ordered SELECT limited to one 1-indexed page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, (page-1)*pageSize), args
}

// BuildSingle selects the row whose idField equals id, ignoring other conditions.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(), b.projection.From(), b.projection.Column(idField),
	)
	return sql, []any{id}
}

// Where renders the accumulated conditions as " WHERE ..." for callers
// that write their own select list, such as aggregate queries. It returns
// an empty string when there are no conditions.
func (b *Builder) Where() (string, []any) {
	if len(b.clauses) == 0 {
		return "", nil
	}

	var sb strings.Builder
	var args []any
	n := 1

	sb.WriteString(" WHERE ")
	for i, c := range b.clauses {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		for _, r := range c.text {
			if r != '?' {
				sb.WriteRune(r)
				continue
			}
			sb.WriteString("$" + strconv.Itoa(n))
			n++
		}
		args = append(args, c.args...)
	}
	return sb.String(), args
}

// OrderByFields replaces the default sort.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.order = fields
	return b
}

// WhereEquals matches field = value. Nil values, including typed nil
// pointers, add nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.add(b.projection.Column(field)+" = ?", value)
}

// WhereRange bounds field to the half-open interval [from, to). Either
// bound may be nil to leave that side open.
func (b *Builder) WhereRange(field string, from, to any) *Builder {
	col := b.projection.Column(field)
	if !isNil(from) {
		b.add(col+" >= ?", from)
	}
	if !isNil(to) {
		b.add(col+" < ?", to)
	}
	return b
}

// WhereSearch matches search as a case-insensitive substring of any of
// fields. A nil or empty search adds nothing.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + *search + "%"
	terms := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		terms[i] = b.projection.Column(f) + " ILIKE ?"
		args[i] = pattern
	}
	return b.add("("+strings.Join(terms, " OR ")+")", args...)
}

func (b *Builder) add(text string, args ...any) *Builder {
	b.clauses = append(b.clauses, clause{text: text, args: args})
	return b
}

func (b *Builder) orderBy() string {
	fields := b.order
	if len(fields) == 0 {
		fields = b.fallback
	}
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		terms[i] = f.render(b.projection)
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
