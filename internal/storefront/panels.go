package storefront

import (
	"net/url"
	"strconv"

	"marketplace/internal/catalog"
	"marketplace/internal/detail"
)

const (
	paramSelected = "selected"
	paramOverlay  = "overlay"
	paramImage    = "img"

	overlayClosed = "closed"
)

// page is the data for the full document.
type page struct {
	Year   int
	List   listPanel
	Detail detailPanel
}

// listPanel renders the list surface. View is nil when the catalog failed to load.
type listPanel struct {
	View       *catalog.View
	Error      string
	SelectedID int
	// BasePath is where list navigation stays: "/" or the selected product's route.
	BasePath string
}

func newListPanel(selectedID int) listPanel {
	l := listPanel{SelectedID: selectedID, BasePath: "/"}
	if selectedID != 0 {
		l.BasePath = "/products/" + strconv.Itoa(selectedID)
	}
	return l
}

func (l listPanel) href(s catalog.ViewState) string {
	if q := s.Encode(); q != "" {
		return l.BasePath + "?" + q
	}
	return l.BasePath
}

func (l listPanel) partialHref(s catalog.ViewState) string {
	v := s.Values()
	if l.SelectedID != 0 {
		v.Set(paramSelected, strconv.Itoa(l.SelectedID))
	}
	if q := v.Encode(); q != "" {
		return "/partials/products?" + q
	}
	return "/partials/products"
}

// URL is the address of the current list state, pushed to history on partial swaps.
func (l listPanel) URL() string {
	if l.View == nil {
		return l.BasePath
	}
	return l.href(l.View.State)
}

func (l listPanel) ProductURL(id int) string {
	path := "/products/" + strconv.Itoa(id)
	if l.View == nil {
		return path
	}
	if q := l.View.State.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func (l listPanel) PrevURL() string {
	return l.href(l.View.State.WithPage(l.View.Slice.Page - 1))
}

func (l listPanel) NextURL() string {
	return l.href(l.View.State.WithPage(l.View.Slice.Page + 1))
}

func (l listPanel) ClearURL() string {
	return l.href(l.View.State.Cleared())
}

func (l listPanel) PrevPartialURL() string {
	return l.partialHref(l.View.State.WithPage(l.View.Slice.Page - 1))
}

func (l listPanel) NextPartialURL() string {
	return l.partialHref(l.View.State.WithPage(l.View.Slice.Page + 1))
}

func (l listPanel) ClearPartialURL() string {
	return l.partialHref(l.View.State.Cleared())
}

// detailPanel renders both detail shells, the inline panel and the overlay.
type detailPanel struct {
	Selected  bool
	ID        int
	Status    detail.Status
	Message   string
	View      *detail.View
	Overlay   bool
	Dismissed bool // carried on gallery links so they do not reopen the overlay
	Gallery   detail.Gallery

	path string
	// query is the request query minus the parameters the panel owns.
	query url.Values
}

func (d detailPanel) Ready() bool {
	return d.Status == detail.Ready && d.View != nil
}

func (d detailPanel) url(path string, set map[string]string) string {
	v := url.Values{}
	for k, vs := range d.query {
		v[k] = vs
	}
	for k, val := range set {
		v.Set(k, val)
	}
	if q := v.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func (d detailPanel) productPath() string {
	if d.path == "" {
		return "/products/" + strconv.Itoa(d.ID)
	}
	return d.path
}

// CloseURL keeps the selection but dismisses the overlay.
func (d detailPanel) CloseURL() string {
	set := map[string]string{paramOverlay: overlayClosed}
	if d.Gallery.Index > 0 {
		set[paramImage] = strconv.Itoa(d.Gallery.Index)
	}
	return d.url(d.productPath(), set)
}

func (d detailPanel) imageParams(i int) map[string]string {
	set := map[string]string{paramImage: strconv.Itoa(i)}
	if d.Dismissed {
		set[paramOverlay] = overlayClosed
	}
	return set
}

func (d detailPanel) ImageURL(i int) string {
	return d.url(d.productPath(), d.imageParams(i))
}

func (d detailPanel) ImagePartialURL(i int) string {
	return d.url("/partials"+d.productPath(), d.imageParams(i))
}

func (d detailPanel) IsCurrent(i int) bool {
	return d.Gallery.Index == i
}

func (d detailPanel) PrimaryImage() string {
	if d.View == nil || len(d.View.Images) == 0 {
		return ""
	}
	return d.View.Images[d.Gallery.Index]
}
