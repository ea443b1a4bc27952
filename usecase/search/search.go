// Package search composes free-text search with a status filter over fetched rows.
package search

import (
	"strings"

	"github.com/fastygo/compliance/domain"
)

// Searchable is a row that exposes its searchable text and workflow status.
type Searchable interface {
	SearchFields() []string
	StatusValue() string
}

// Query is a search term ANDed with a status filter. An empty status means "all".
type Query struct {
	Term   string
	Status string
}

// Filter returns the rows matching q in input order. Rows match the term when
// any search field contains it case-insensitively. A status that no row
// carries, including unknown values, yields an empty result.
func Filter[T Searchable](rows []T, q Query) []T {
	term := strings.ToLower(q.Term)
	status := q.Status
	if status == "" {
		status = domain.StatusAll
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if status != domain.StatusAll && row.StatusValue() != status {
			continue
		}
		if !matches(row.SearchFields(), term) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func matches(fields []string, term string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
