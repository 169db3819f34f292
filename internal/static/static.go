package static

import (
	"crypto/sha256"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
)

//go:embed style.css
var styleCSS []byte

//go:embed app.js
var appJS []byte

//go:embed favicon.svg
var favicon []byte

//go:embed placeholder.svg
var placeholder []byte

// PlaceholderPath is shown for products without images.
const PlaceholderPath = "/static/placeholder.svg"

// HtmxPath is the pinned htmx build loaded by the layout.
const HtmxPath = "https://unpkg.com/htmx.org@2.0.8/dist/htmx.min.js"

var (
	StyleAssetPath  string
	ScriptAssetPath string
)

func Init() {
	StyleAssetPath = fmt.Sprintf("/static/style.%s.css", hash(styleCSS))
	ScriptAssetPath = fmt.Sprintf("/static/app.%s.js", hash(appJS))
}

func hash(b []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(b))[:12]
}

// Register serves the embedded assets. Init must have been called.
func Register(mux *http.ServeMux) {
	// Content addressed, so these can be cached forever.
	mux.Handle("GET "+StyleAssetPath, asset("text/css; charset=utf-8", "public, max-age=31536000, immutable", styleCSS))
	mux.Handle("GET "+ScriptAssetPath, asset("application/javascript; charset=utf-8", "public, max-age=31536000, immutable", appJS))
	mux.Handle("GET "+PlaceholderPath, asset("image/svg+xml", "public, max-age=86400", placeholder))
	mux.Handle("GET /favicon.ico", asset("image/svg+xml", "public, max-age=86400", favicon))
}

func asset(contentType, cacheControl string, body []byte) http.Handler {
	etag := fmt.Sprintf(`"%s"`, hash(body))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", cacheControl)
		w.Header().Set("ETag", etag)
		if _, err := w.Write(body); err != nil {
			slog.ErrorContext(r.Context(), "failed to write static asset", "path", r.URL.Path, "error", err)
		}
	})
}
