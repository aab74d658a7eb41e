package query

import "strings"

// SortField is one ORDER BY term. Field is a projection view name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields reads a comma-separated list such as "-SubmittedAt,Label".
// A leading "-" sorts that field descending. Blank entries are skipped and
// an empty string yields nil.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

func (f SortField) render(p *ProjectionMap) string {
	if f.Descending {
		return p.Column(f.Field) + " DESC"
	}
	return p.Column(f.Field) + " ASC"
}
