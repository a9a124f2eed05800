// Package catalog derives filtered views of a fetched movie catalog.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/five82/marquee/internal/tmdb"
)

// Normalize returns the form of query used for matching: surrounding
// whitespace trimmed and case folded. An empty result means "no filter".
func Normalize(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ""
	}
	return cases.Fold().String(trimmed)
}

// Filter returns the movies whose title contains query, ignoring case.
// Order is preserved. An empty (or all-whitespace) query returns movies
// unchanged. Filter never modifies movies.
func Filter(movies []tmdb.Movie, query string) []tmdb.Movie {
	needle := Normalize(query)
	if needle == "" {
		return movies
	}
	fold := cases.Fold()
	out := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if strings.Contains(fold.String(m.Title), needle) {
			out = append(out, m)
		}
	}
	return out
}
