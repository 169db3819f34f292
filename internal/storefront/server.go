// Package storefront serves the catalog list and the product detail surfaces as HTML.
package storefront

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"marketplace/internal/catalog"
	"marketplace/internal/config"
	"marketplace/internal/detail"
	"marketplace/internal/templates"
)

type server struct {
	store    *catalog.Store
	products detail.Fetcher
	ui       config.UIConfig
	now      func() time.Time
}

// NewHandler serves the list from store and fetches details from products. Templates must
// be initialized.
func NewHandler(store *catalog.Store, products detail.Fetcher, ui config.UIConfig) *server {
	if ui.PageSize <= 0 {
		ui.PageSize = catalog.DefaultPageSize
	}
	return &server{
		store:    store,
		products: products,
		ui:       ui,
		now:      time.Now,
	}
}

func (s *server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /products/{id}", s.handleProduct)
	mux.HandleFunc("GET /partials/products", s.handleListPartial)
	mux.HandleFunc("GET /partials/products/{id}", s.handleDetailPartial)
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	p := page{
		Year: s.now().Year(),
		List: s.list(r.Context(), r.URL.Query(), 0),
	}
	w.Header().Set("Accept-CH", strings.Join(viewportHeaders, ", "))
	render(w, r, templates.Home, http.StatusOK, p)
}

func (s *server) handleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := r.PathValue("id")
	selectedID, _ := parseID(rawID)

	// list and detail load independently; neither failure affects the other
	var list listPanel
	var det detailPanel
	var g errgroup.Group
	g.Go(func() error {
		list = s.list(ctx, r.URL.Query(), selectedID)
		return nil
	})
	g.Go(func() error {
		det = s.detail(r, rawID)
		return nil
	})
	_ = g.Wait()

	status := http.StatusOK
	if det.Status == detail.NotFound {
		status = http.StatusNotFound
	}
	w.Header().Set("Accept-CH", strings.Join(viewportHeaders, ", "))
	render(w, r, templates.Home, status, page{
		Year:   s.now().Year(),
		List:   list,
		Detail: det,
	})
}

// handleListPartial answers htmx swaps of #product-list. The browser URL follows the
// list state through HX-Push-Url.
func (s *server) handleListPartial(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	selectedID, _ := parseID(q.Get(paramSelected))
	list := s.list(r.Context(), q, selectedID)
	w.Header().Set("HX-Push-Url", list.URL())
	render(w, r, templates.ProductList, http.StatusOK, list)
}

// handleDetailPartial always answers 200 so htmx swaps the not-found message in.
func (s *server) handleDetailPartial(w http.ResponseWriter, r *http.Request) {
	render(w, r, templates.DetailPanel, http.StatusOK, s.detail(r, r.PathValue("id")))
}

func (s *server) list(ctx context.Context, q url.Values, selectedID int) listPanel {
	l := newListPanel(selectedID)
	view, err := s.store.BuildFromQuery(ctx, q, s.ui.PageSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load products", "error", err)
		l.Error = catalog.LoadFailedMessage
		return l
	}
	l.View = view
	return l
}

func (s *server) detail(r *http.Request, rawID string) detailPanel {
	ctx := r.Context()
	q := r.URL.Query()
	dismissed := q.Get(paramOverlay) == overlayClosed

	id, valid := parseID(rawID)
	d := detailPanel{
		Selected:  true,
		ID:        id,
		Dismissed: dismissed,
		path:      "/products/" + url.PathEscape(rawID),
		query:     listQuery(q),
	}

	selector := detail.NewSelector(viewportOf(r, s.ui.NarrowWidth))
	selector.Select(id)
	if dismissed {
		selector.Dismiss()
	}
	d.Overlay = selector.OverlayOpen()

	var content detail.Content
	if valid {
		content = detail.Load(ctx, s.products, id)
	} else {
		slog.InfoContext(ctx, "invalid product id", "id", rawID)
		content = detail.ContentFor(nil, nil)
	}
	d.Status = content.Status
	d.Message = content.Message
	if content.Status == detail.Ready {
		v := detail.BuildView(*content.Product, s.now())
		d.View = &v
		d.Gallery = detail.Gallery{Count: len(v.Images)}
		if i, err := strconv.Atoi(q.Get(paramImage)); err == nil {
			d.Gallery.Show(i)
		}
	}
	return d
}

// parseID accepts positive integers only.
func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// listQuery keeps only the list parameters of q.
func listQuery(q url.Values) url.Values {
	out := url.Values{}
	for _, k := range []string{catalog.ParamSearch, catalog.ParamCategory, catalog.ParamBrand, catalog.ParamPage} {
		if v := q.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

func render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.ErrorContext(r.Context(), "template execute error", "template", tmpl.Name(), "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
