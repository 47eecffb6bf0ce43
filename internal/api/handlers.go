// Package api implements the REST API of the notes server using chi.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/service"
	"github.com/starford/mannaz/internal/store"
	"github.com/starford/mannaz/internal/upload"
)

const maxBodyBytes = 10 << 20

// Handler holds the API route handlers.
type Handler struct {
	notes      *service.Notes
	categories *service.Categories
	tags       *service.Tags
	uploads    *upload.Service
}

// NewHandler creates a new Handler.
func NewHandler(notes *service.Notes, categories *service.Categories, tags *service.Tags, uploads *upload.Service) *Handler {
	return &Handler{notes: notes, categories: categories, tags: tags, uploads: uploads}
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ListNotes handles GET /notes with filter and pagination query params.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f store.NoteFilter
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.CategoryID = &id
		}
	}
	f.Search = q.Get("search")
	f.Tag = q.Get("tag")
	f.Favorites = q.Get("favorites") == "true"

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	list, err := h.notes.List(r.Context(), f, page, pageSize)
	if err != nil {
		writeServiceError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.notes.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}

	id, err := h.notes.Create(r.Context(), service.CreateNote{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		IsPinned:   req.IsPinned,
		IsFavorite: req.IsFavorite,
		Tags:       req.Tags,
	})
	if err != nil {
		writeServiceError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateNote handles PUT /notes/{id} with partial-update semantics.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	err := h.notes.Update(r.Context(), id, service.UpdateNote{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		IsPinned:   req.IsPinned,
		IsFavorite: req.IsFavorite,
		Tags:       req.Tags,
	})
	if err != nil {
		writeServiceError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Message: "note updated"})
}

// SoftDeleteNote handles DELETE /notes/{id} (moves the note to the trash).
func (h *Handler) SoftDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.notes.SoftDelete(r.Context(), id); err != nil {
		writeServiceError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Message: "note moved to trash"})
}

// SearchByTitle handles GET /notes/search/title.
func (h *Handler) SearchByTitle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.notes.SearchByTitle(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search by title", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Backlinks handles GET /notes/{id}/backlinks.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	notes, err := h.notes.Backlinks(r.Context(), id)
	if err != nil {
		writeServiceError(w, "backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.notes.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
