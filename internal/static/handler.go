package static

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Handler serves the demo frontend: index page, wasm bundle, and support
// scripts.
type Handler struct {
	dir string
}

func NewHandler(dir string) *Handler {
	return &Handler{dir: dir}
}

// Serve returns an http.Handler over the static directory. Hashed bundle
// files get immutable cache headers; everything else is revalidated.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch filepath.Ext(r.URL.Path) {
		case ".wasm":
			w.Header().Set("Content-Type", "application/wasm")
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case ".js", ".css":
			w.Header().Set("Cache-Control", "public, max-age=3600")
		default:
			w.Header().Set("Cache-Control", "no-cache")
		}

		// Fall back to the index page for client-side routes.
		if !strings.Contains(r.URL.Path, ".") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(h.dir, filepath.Clean(r.URL.Path))); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
				return
			}
		}

		fs.ServeHTTP(w, r)
	})
}
