package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arkantrust/vidly/models"
	"github.com/arkantrust/vidly/validation"
)

// listMovies handles GET /api/movies. Sorted by title.
func (h *Handler) listMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.store.ListMovies(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// getMovie handles GET /api/movies/{id}.
func (h *Handler) getMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.store.GetMovie(r.Context(), pathID(r))
	respond(h, w, r, movie, err, "movie")
}

// decodeMovie validates a movie body and resolves its genre. It reports
// whether the handler may continue.
func (h *Handler) decodeMovie(w http.ResponseWriter, r *http.Request) (models.Movie, bool) {
	var in models.MovieInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return models.Movie{}, false
	}

	genreID, _ := primitive.ObjectIDFromHex(in.GenreID)
	genre, ok := reference(h, w, r, "genre", func() (*models.Genre, error) {
		return h.store.GetGenre(r.Context(), genreID)
	})
	if !ok {
		return models.Movie{}, false
	}
	return in.Movie(*genre), true
}

// createMovie handles POST /api/movies.
func (h *Handler) createMovie(w http.ResponseWriter, r *http.Request) {
	movie, ok := h.decodeMovie(w, r)
	if !ok {
		return
	}
	if err := h.store.CreateMovie(r.Context(), &movie); err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

// updateMovie handles PUT /api/movies/{id}.
func (h *Handler) updateMovie(w http.ResponseWriter, r *http.Request) {
	movie, ok := h.decodeMovie(w, r)
	if !ok {
		return
	}
	movie.ID = pathID(r)
	err := h.store.UpdateMovie(r.Context(), &movie)
	respond(h, w, r, &movie, err, "movie")
}

// deleteMovie handles DELETE /api/movies/{id}.
func (h *Handler) deleteMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.store.DeleteMovie(r.Context(), pathID(r))
	respond(h, w, r, movie, err, "movie")
}
