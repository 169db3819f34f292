package catalog

// DefaultPageSize is the number of products on one page of the list.
const DefaultPageSize = 10

// ViewState is the list surface's search, filter and page selection. The zero value is
// not valid, use NewViewState.
type ViewState struct {
	Search   string
	Category string
	Brand    string
	Page     int
}

func NewViewState() ViewState {
	return ViewState{Page: 1}
}

// SetSearch, SetCategory and SetBrand always return to the first page, even when the
// value does not change.
func (s *ViewState) SetSearch(term string) {
	s.Search = term
	s.Page = 1
}

func (s *ViewState) SetCategory(category string) {
	s.Category = category
	s.Page = 1
}

func (s *ViewState) SetBrand(brand string) {
	s.Brand = brand
	s.Page = 1
}

func (s *ViewState) ResetFilters() {
	s.Search = ""
	s.Category = ""
	s.Brand = ""
	s.Page = 1
}

// Filtered reports whether any filter is active.
func (s ViewState) Filtered() bool {
	return s.Search != "" || s.Category != "" || s.Brand != ""
}

// GoToPage moves to page p when 1 <= p <= totalPages and reports whether it did.
// Requests outside that range leave the state untouched.
func (s *ViewState) GoToPage(p, totalPages int) bool {
	if p < 1 || p > totalPages {
		return false
	}
	s.Page = p
	return true
}

func (s *ViewState) Next(totalPages int) bool {
	return s.GoToPage(s.Page+1, totalPages)
}

func (s *ViewState) Prev(totalPages int) bool {
	return s.GoToPage(s.Page-1, totalPages)
}
