package httpapi

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// staticHandler serves files from dir and falls back to index.html for any
// path that does not name a readable file, as single page apps expect.
type staticHandler struct {
	dir string
}

func newStaticHandler(dir string) http.Handler {
	return staticHandler{dir: dir}
}

func (h staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

	info, err := os.Stat(name)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}
	// ENOTDIR (e.g. /index.html/x) is a missing file too; only a denied
	// stat is a server error.
	if err != nil && errors.Is(err, fs.ErrPermission) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		notFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
