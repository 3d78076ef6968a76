package site

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".txt":   "text/plain; charset=utf-8",
	".webp":  "image/webp",
	".woff2": "font/woff2",
}

const defaultContentType = "application/octet-stream"

// ContentType returns the response type for a file name.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// FileHandler serves files below root. Directories are never listed.
type FileHandler struct {
	root string
}

// NewFileHandler creates a handler for the asset tree at root.
func NewFileHandler(root string) *FileHandler {
	return &FileHandler{root: root}
}

func (h *FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if unsafePath(r.URL.Path) {
		writeError(w, "Invalid path", http.StatusBadRequest)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name == "/" {
		name = "/index.html"
	}
	full := filepath.Join(h.root, filepath.FromSlash(name))

	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && info.IsDir():
		writeError(w, "Not found", http.StatusNotFound)
		return
	case err != nil:
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	f, err := os.Open(full)
	if err != nil {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", ContentType(name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
