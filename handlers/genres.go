package handlers

import (
	"net/http"

	"github.com/arkantrust/vidly/models"
	"github.com/arkantrust/vidly/validation"
)

// listGenres handles GET /api/genres. Sorted by name.
func (h *Handler) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.store.ListGenres(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// getGenre handles GET /api/genres/{id}.
func (h *Handler) getGenre(w http.ResponseWriter, r *http.Request) {
	genre, err := h.store.GetGenre(r.Context(), pathID(r))
	respond(h, w, r, genre, err, "genre")
}

// createGenre handles POST /api/genres. Requires a logged-in user.
func (h *Handler) createGenre(w http.ResponseWriter, r *http.Request) {
	var in models.GenreInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}

	genre := &models.Genre{Name: in.Name}
	if err := h.store.CreateGenre(r.Context(), genre); err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, genre)
}

// updateGenre handles PUT /api/genres/{id}. Movies keep the genre name they
// were saved with.
func (h *Handler) updateGenre(w http.ResponseWriter, r *http.Request) {
	var in models.GenreInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}

	genre := &models.Genre{ID: pathID(r), Name: in.Name}
	err := h.store.UpdateGenre(r.Context(), genre)
	respond(h, w, r, genre, err, "genre")
}

// deleteGenre handles DELETE /api/genres/{id}. Requires an admin.
func (h *Handler) deleteGenre(w http.ResponseWriter, r *http.Request) {
	genre, err := h.store.DeleteGenre(r.Context(), pathID(r))
	respond(h, w, r, genre, err, "genre")
}
