package static

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	Init()
	mux := http.NewServeMux()
	Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRegisterServesEmbeddedAssets(t *testing.T) {
	server := newServer(t)

	if !strings.HasPrefix(StyleAssetPath, "/static/style.") || !strings.HasPrefix(ScriptAssetPath, "/static/app.") {
		t.Fatalf("unexpected asset paths: %q %q", StyleAssetPath, ScriptAssetPath)
	}

	resp, err := http.Get(server.URL + ScriptAssetPath)
	if err != nil {
		t.Fatalf("GET script failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for script, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); !strings.Contains(got, "javascript") {
		t.Fatalf("expected javascript content-type, got %q", got)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !strings.Contains(string(body), "viewport=") {
		t.Fatal("expected the viewport cookie writer in app.js")
	}
	if !strings.Contains(string(body), `"detail-overlay-skeleton"`) {
		t.Fatal("expected app.js to load narrow selections into the overlay skeleton")
	}

	for _, path := range []string{StyleAssetPath, PlaceholderPath, "/favicon.ico"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, resp.StatusCode)
		}
	}
}

func TestRegisterReturnsNotModifiedWithMatchingETag(t *testing.T) {
	server := newServer(t)

	first, err := http.Get(server.URL + StyleAssetPath)
	if err != nil {
		t.Fatalf("initial GET failed: %v", err)
	}
	etag := first.Header.Get("ETag")
	_ = first.Body.Close()
	if etag == "" {
		t.Fatal("expected ETag from initial response")
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+StyleAssetPath, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("If-None-Match", etag)
	second, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET failed: %v", err)
	}
	defer func() { _ = second.Body.Close() }()

	if second.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304 for matching ETag, got %d", second.StatusCode)
	}
}
