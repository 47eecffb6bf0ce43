package api

import (
	"encoding/json"
	"net/http"
)

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeServiceError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	id, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// RenameCategory handles PUT /categories/{id}.
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid category id"))
		return
	}
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.categories.Rename(r.Context(), id, req.Name); err != nil {
		writeServiceError(w, "rename category", err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Message: "category renamed"})
}

// DeleteCategory handles DELETE /categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid category id"))
		return
	}
	if err := h.categories.Remove(r.Context(), id); err != nil {
		writeServiceError(w, "delete category", err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Message: "category deleted"})
}

// ListTags handles GET /tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeServiceError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}
