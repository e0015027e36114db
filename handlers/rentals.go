package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arkantrust/vidly/metrics"
	"github.com/arkantrust/vidly/models"
	"github.com/arkantrust/vidly/store"
	"github.com/arkantrust/vidly/validation"
)

const msgNotInStock = "Movie not in stock."

// listRentals handles GET /api/rentals. Most recent first.
func (h *Handler) listRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.store.ListRentals(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

// getRental handles GET /api/rentals/{id}.
func (h *Handler) getRental(w http.ResponseWriter, r *http.Request) {
	rental, err := h.store.GetRental(r.Context(), pathID(r))
	respond(h, w, r, rental, err, "rental")
}

// createRental handles POST /api/rentals. The stock check here only saves a
// write; the store decides who gets the last copy.
func (h *Handler) createRental(w http.ResponseWriter, r *http.Request) {
	var in models.RentalInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}
	ctx := r.Context()

	customerID, _ := primitive.ObjectIDFromHex(in.CustomerID)
	customer, ok := reference(h, w, r, "customer", func() (*models.Customer, error) {
		return h.store.GetCustomer(ctx, customerID)
	})
	if !ok {
		return
	}

	movieID, _ := primitive.ObjectIDFromHex(in.MovieID)
	movie, ok := reference(h, w, r, "movie", func() (*models.Movie, error) {
		return h.store.GetMovie(ctx, movieID)
	})
	if !ok {
		return
	}
	if movie.NumberInStock <= 0 {
		h.metrics.RecordRental(metrics.RentalOutOfStock)
		writeText(w, http.StatusBadRequest, msgNotInStock)
		return
	}

	rental := models.NewRental(*customer, *movie, time.Now())
	err := h.store.CreateRental(ctx, &rental)
	switch {
	case errors.Is(err, store.ErrOutOfStock):
		h.metrics.RecordRental(metrics.RentalOutOfStock)
		writeText(w, http.StatusBadRequest, msgNotInStock)
		return
	case errors.Is(err, store.ErrNotFound):
		// Deleted between the lookup and the write.
		writeText(w, http.StatusBadRequest, "Invalid movie.")
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	h.metrics.RecordRental(metrics.RentalCreated)
	writeJSON(w, http.StatusOK, rental)
}
