// Package query implements the filter → sort → paginate stage applied to
// an already-merged, already-cached collection. It never refetches and
// never mutates its input; every request sorts a fresh copy.
package query

import (
	"sort"
	"strings"
)

// Params are the client-supplied query parameters for one request.
type Params struct {
	// Search filters by case-insensitive substring match across the
	// kind's configured text fields. Empty or whitespace means identity.
	Search string

	// Sort names the default sort key (commonly "updated").
	Sort string

	// TableSort, when present, fully overrides Sort.
	TableSort string

	// TableSortDirection is "asc" (default) or "desc".
	TableSortDirection string

	// Page is 1-based; values below 1 are treated as 1.
	Page int

	// PerPage is clamped to [1,100].
	PerPage int
}

// Pagination describes one result page of a filtered collection.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// LessFunc is a strict-weak ascending comparison for a sort key.
// Implementations treat absent values as the type's zero value.
type LessFunc[T any] func(a, b T) bool

// Pipeline holds the kind-specific query configuration: which text fields
// the search matches, and which sort keys exist.
type Pipeline[T any] struct {
	// SearchFields extract the text fields matched by Search.
	SearchFields []func(T) string

	// Sorts maps sort key names (and their aliases) to comparators.
	Sorts map[string]LessFunc[T]

	// DefaultSort is applied when no table sort is given or the requested
	// key is unrecognized. It is applied descending, matching the
	// "most recently updated first" default presentation.
	DefaultSort string
}

// Run applies filter, sort, and pagination and returns the result page
// with its pagination envelope.
func (p *Pipeline[T]) Run(items []T, params Params) ([]T, Pagination) {
	filtered := p.Filter(items, params.Search)
	sorted := p.Sort(filtered, params.Sort, params.TableSort, params.TableSortDirection)
	return Paginate(sorted, params.Page, params.PerPage)
}

// Filter returns the items matching the search query in ANY configured
// field. An empty or whitespace query returns the input unchanged.
func (p *Pipeline[T]) Filter(items []T, search string) []T {
	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return items
	}

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range p.SearchFields {
			if strings.Contains(strings.ToLower(field(item)), query) {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// Sort returns a sorted copy of items. A table sort overrides the default
// sort and honors direction ("asc" default, "desc" reverses); otherwise
// the named default sort is applied descending. Unrecognized keys fall
// back to the default sort. The sort is stable: ties keep their prior
// relative order.
func (p *Pipeline[T]) Sort(items []T, sortKey, tableSort, tableSortDirection string) []T {
	key := sortKey
	descending := true
	if tableSort != "" {
		key = tableSort
		descending = tableSortDirection == "desc"
	}

	less, ok := p.Sorts[key]
	if !ok {
		// Unrecognized keys fall back to the default presentation order
		// rather than erroring.
		less = p.Sorts[p.DefaultSort]
		descending = true
	}
	if less == nil {
		return items
	}

	sorted := make([]T, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// Paginate slices one page out of items. perPage is clamped to [1,100],
// page to >= 1; totalPages is at least 1 even for an empty collection.
func Paginate[T any](items []T, page, perPage int) ([]T, Pagination) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 100 {
		perPage = 100
	}

	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return items[start:end], Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    page*perPage < total,
		HasPrev:    page > 1,
	}
}
