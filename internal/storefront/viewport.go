package storefront

import (
	"net/http"
	"strconv"

	"marketplace/internal/detail"
)

const viewportCookie = "viewport"

// viewportHeaders are the client hints asked for with Accept-CH.
var viewportHeaders = []string{"Sec-CH-Viewport-Width", "Viewport-Width"}

// viewportOf classifies the requesting window from client hints, falling back to the cookie
// app.js keeps current. With neither the width is unknown and the class is narrow, so the
// overlay is rendered and the stylesheet hides it on wide screens.
func viewportOf(r *http.Request, narrowWidth int) detail.Viewport {
	for _, h := range viewportHeaders {
		if w, ok := parseWidth(r.Header.Get(h)); ok {
			return detail.Classify(w, narrowWidth)
		}
	}
	if c, err := r.Cookie(viewportCookie); err == nil {
		if w, ok := parseWidth(c.Value); ok {
			return detail.Classify(w, narrowWidth)
		}
	}
	return detail.Classify(0, narrowWidth)
}

func parseWidth(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	w, err := strconv.Atoi(raw)
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}
