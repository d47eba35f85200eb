// internal/api/notes.go
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devboard/internal/notes"
)

// noteID parses the {id} path parameter.
func noteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// listNotes returns the caller's notes, newest first.
// GET /v1/notes
func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Notes.List(r.Context(), identity(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

// createNote adds a note for the caller.
// POST /v1/notes
func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var in notes.NewNote
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	note, err := h.Notes.Create(r.Context(), identity(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, note)
}

// updateNote applies a partial update to one of the caller's notes.
// PATCH /v1/notes/{id}
func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var p notes.Patch
	if err := decodeJSON(r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	note, err := h.Notes.Update(r.Context(), identity(r).UserID, id, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, note)
}

// deleteNote removes one of the caller's notes.
// DELETE /v1/notes/{id}
func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := h.Notes.Delete(r.Context(), identity(r).UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
