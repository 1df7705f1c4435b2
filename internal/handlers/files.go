package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecron24/delmas-app-sub000/internal/httpx"
	"github.com/ecron24/delmas-app-sub000/internal/storage"
)

// FileHandler serves stored invoice documents behind signed URLs.
type FileHandler struct {
	Store *storage.FileStore
}

func NewFileHandler(store *storage.FileStore) *FileHandler { return &FileHandler{Store: store} }

// Serve: GET /files/{path...}?exp=...&sig=... — the target of SignedURL.
// Unauthenticated by design: the signature is the credential.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_expiry", nil)
		return
	}
	sig := r.URL.Query().Get("sig")
	if err := h.Store.Verify(path, exp, sig); err != nil {
		if errors.Is(err, storage.ErrBadSignature) {
			httpx.JSONError(w, http.StatusForbidden, "bad_or_expired_signature", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "invalid_path", nil)
		return
	}
	data, err := h.Store.Get(path)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
