package httpapi

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// spaHandler serves the built client. Paths that do not name a file fall back
// to index.html so client-side routes resolve; unknown /api paths stay 404.
type spaHandler struct {
	root  string
	files http.Handler
}

func newSPAHandler(root string) spaHandler {
	return spaHandler{root: root, files: http.FileServer(http.Dir(root))}
}

func (s spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	if clean == "/api" || strings.HasPrefix(clean, "/api/") {
		notFound(w, r)
		return
	}

	info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(s.root, "index.html"))
		return
	}
	s.files.ServeHTTP(w, r)
}
