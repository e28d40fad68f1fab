package handlers

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// NewAppHandler serves the frontend for page requests that pass the
// route gate: a reverse proxy when an upstream dev server is
// configured, otherwise static files with SPA index fallback.
func NewAppHandler(upstreamURL, staticDir string) (http.Handler, error) {
	if upstreamURL != "" {
		target, err := url.Parse(upstreamURL)
		if err != nil {
			return nil, err
		}
		return httputil.NewSingleHostReverseProxy(target), nil
	}
	return &spaHandler{dir: staticDir}, nil
}

// spaHandler serves files from dir, falling back to index.html for
// client-routed paths.
type spaHandler struct {
	dir string
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))

	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		// Client-side routes resolve to the SPA shell. Asset-looking
		// paths that are genuinely missing stay 404.
		if strings.Contains(filepath.Base(r.URL.Path), ".") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}

	http.ServeFile(w, r, name)
}
