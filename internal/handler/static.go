package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// spaHandler serves the built web console. Unknown paths fall back to
// index.html so client-side routing works on hard reloads; a missing
// build directory yields 404s instead of a startup failure.
func spaHandler(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))

	return func(w http.ResponseWriter, r *http.Request) {
		if staticDir == "" {
			http.NotFound(w, r)
			return
		}

		requested := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		// SPA routes must never be cached as if they were the assets.
		if !strings.HasPrefix(r.URL.Path, "/assets") {
			w.Header().Set("Cache-Control", "no-store")
		}
		http.ServeFile(w, r, index)
	}
}
