package handlers

import (
	"io/fs"
	"net/http"
)

// AppHandler serves the embedded browser client.
type AppHandler struct {
	content fs.FS
}

// NewAppHandler creates an AppHandler over the embedded static assets.
// root is the subdirectory inside the filesystem holding index.html.
func NewAppHandler(staticFS fs.FS, root string) (*AppHandler, error) {
	content, err := fs.Sub(staticFS, root)
	if err != nil {
		return nil, err
	}
	return &AppHandler{content: content}, nil
}

// Index serves the single-page client.
func (h *AppHandler) Index(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.content, "index.html")
	if err != nil {
		http.Error(w, "client not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
