// Package catalog narrows the seed publication list for the publications
// page.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/model"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "All"

// NoResults is shown in place of an empty filtered list.
const NoResults = "No publications found matching your criteria."

// Criteria is the current filter state of the publications page.
type Criteria struct {
	Category string
	Term     string
}

// Filter returns the publications matching both the category and the
// case-insensitive title term, in source order. The source slice is never
// modified.
func Filter(pubs []model.Publication, c Criteria) []model.Publication {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(c.Term))
	out := make([]model.Publication, 0, len(pubs))
	for _, p := range pubs {
		if c.Category != "" && c.Category != AllCategories && p.Category != c.Category {
			continue
		}
		if term != "" && !strings.Contains(fold.String(p.Title), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns AllCategories followed by each distinct category in
// first-seen order.
func Categories(pubs []model.Publication) []string {
	seen := make(map[string]bool, len(pubs))
	out := []string{AllCategories}
	for _, p := range pubs {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
