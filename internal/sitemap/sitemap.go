// Package sitemap lists every product page for crawlers.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"marketplace/internal/catalog/types"
)

type products interface {
	Products(ctx context.Context) ([]types.Product, error)
}

type Server struct {
	products products
	origin   string
}

const robots = `# Allow all search engines to crawl the site
User-agent: *
Allow: /
Disallow: /partials/

# Sitemap location
Sitemap: %s/sitemap.xml
`

// New serves links under origin, e.g. "https://shop.example.com".
func New(p products, origin string) *Server {
	return &Server{products: p, origin: origin}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	all, err := s.products.Products(r.Context())
	if err != nil {
		http.Error(w, "failed to load sitemap", http.StatusInternalServerError)
		slog.ErrorContext(r.Context(), "failed to read sitemap urls", "error", err)
		return
	}

	entries := make([]urlEntry, 0, len(all)+1)
	entries = append(entries, urlEntry{Loc: s.origin + "/"})
	for _, p := range all {
		entries = append(entries, urlEntry{Loc: s.origin + "/products/" + strconv.Itoa(p.ID)})
	}
	slog.InfoContext(r.Context(), "serving sitemap", "count", len(entries))

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write sitemap header", "error", err)
		return
	}
	if err := xml.NewEncoder(w).Encode(urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  entries,
	}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode sitemap", "error", err)
	}
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := fmt.Fprintf(w, robots, s.origin); err != nil {
		slog.ErrorContext(r.Context(), "failed to write robots.txt", "error", err)
	}
}
