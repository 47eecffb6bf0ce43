package api

import "net/http"

// ListTrash handles GET /trash.
func (h *Handler) ListTrash(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.Trash(r.Context())
	if err != nil {
		writeServiceError(w, "list trash", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// RestoreNote handles POST /trash/{id}/restore.
func (h *Handler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.notes.Restore(r.Context(), id); err != nil {
		writeServiceError(w, "restore note", err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Message: "note restored"})
}

// PermanentDeleteNote handles DELETE /trash/{id}.
func (h *Handler) PermanentDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.notes.PermanentDelete(r.Context(), id); err != nil {
		writeServiceError(w, "permanent delete", err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Message: "note permanently deleted"})
}

// EmptyTrash handles DELETE /trash.
func (h *Handler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.EmptyTrash(r.Context()); err != nil {
		writeServiceError(w, "empty trash", err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Message: "trash emptied"})
}
