package api

import (
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds the data-URI request body. Base64 inflates the
// image by a third, so this allows images of roughly 15 MB.
const maxUploadBytes = 20 << 20

// UploadImage handles POST /upload/image. The raw body is a
// "data:image/<ext>;base64,<payload>" string.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	saved, err := h.uploads.SaveImage(body)
	if err != nil {
		writeServiceError(w, "upload image", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// ListImages handles GET /upload/images.
func (h *Handler) ListImages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.uploads.List())
}

// ServeImage handles GET /upload/images/{filename}.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.uploads.Path(filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		writeJSON(w, http.StatusNotFound, errorBody("image not found"))
		return
	}
	http.ServeFile(w, r, abs)
}
