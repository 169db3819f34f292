package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"marketplace/internal/catalog/types"
)

// Query parameter names used by the list surface.
const (
	ParamSearch   = "q"
	ParamCategory = "category"
	ParamBrand    = "brand"
	ParamPage     = "page"
)

// ViewStateFromQuery replays the query as user actions: filters first, which lands on
// page 1, then a page request that is honored only if it is in range for the filtered
// collection.
func ViewStateFromQuery(q url.Values, all []types.Product, pageSize int) ViewState {
	state := NewViewState()
	state.SetSearch(strings.TrimSpace(q.Get(ParamSearch)))
	state.SetCategory(q.Get(ParamCategory))
	state.SetBrand(q.Get(ParamBrand))

	if raw := q.Get(ParamPage); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			if pageSize <= 0 {
				pageSize = DefaultPageSize
			}
			state.GoToPage(p, TotalPages(len(Filter(all, state)), pageSize))
		}
	}
	return state
}

// Values is the inverse of ViewStateFromQuery. Empty filters and page 1 are omitted.
func (s ViewState) Values() url.Values {
	v := url.Values{}
	if s.Search != "" {
		v.Set(ParamSearch, s.Search)
	}
	if s.Category != "" {
		v.Set(ParamCategory, s.Category)
	}
	if s.Brand != "" {
		v.Set(ParamBrand, s.Brand)
	}
	if s.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return v
}

// Encode renders the state as a query string without the leading '?'.
func (s ViewState) Encode() string {
	return s.Values().Encode()
}

// WithPage is a copy of s on page p; it does not check range.
func (s ViewState) WithPage(p int) ViewState {
	s.Page = p
	return s
}

// Cleared is a copy of s with all filters reset.
func (s ViewState) Cleared() ViewState {
	s.ResetFilters()
	return s
}

// BuildFromQuery loads the catalog and builds the view for a request query.
func (s *Store) BuildFromQuery(ctx context.Context, q url.Values, pageSize int) (*View, error) {
	all, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	state := ViewStateFromQuery(q, all, pageSize)
	return &View{
		State:   state,
		Slice:   ComputeVisibleSlice(all, state, pageSize),
		Options: s.Options(all),
	}, nil
}
