package catalog

import (
	"strings"

	"marketplace/internal/catalog/types"
)

// Slice is one page of the filtered catalog.
type Slice struct {
	Items      []types.Product
	TotalCount int
	TotalPages int
	Page       int
	// First and Last are the 1-based positions of Items within the filtered list,
	// both zero when nothing matched.
	First int
	Last  int
}

func (s Slice) HasPrev() bool {
	return s.Page > 1
}

func (s Slice) HasNext() bool {
	return s.Page < s.TotalPages
}

func (s Slice) Empty() bool {
	return len(s.Items) == 0
}

// Filter returns the products matching every active filter of state, in source order.
func Filter(all []types.Product, state ViewState) []types.Product {
	term := strings.ToLower(state.Search)
	matched := make([]types.Product, 0, len(all))
	for _, p := range all {
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		if state.Category != "" && p.Category != state.Category {
			continue
		}
		if state.Brand != "" && p.Brand != state.Brand {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func matchesTerm(p types.Product, lowerTerm string) bool {
	for _, field := range [...]string{p.Title, p.Description, p.Category, p.Brand} {
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	return false
}

// TotalPages is ceil(count/pageSize), and zero for an empty list.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ComputeVisibleSlice filters all by state and cuts out state.Page. It has no side effects;
// a page past the end yields an empty Items with the totals still filled in.
func ComputeVisibleSlice(all []types.Product, state ViewState, pageSize int) Slice {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := state.Page
	if page < 1 {
		page = 1
	}

	filtered := Filter(all, state)
	out := Slice{
		TotalCount: len(filtered),
		TotalPages: TotalPages(len(filtered), pageSize),
		Page:       page,
	}

	start := (page - 1) * pageSize
	if start >= len(filtered) {
		out.Items = []types.Product{}
		return out
	}
	end := min(start+pageSize, len(filtered))
	out.Items = filtered[start:end]
	out.First = start + 1
	out.Last = end
	return out
}
