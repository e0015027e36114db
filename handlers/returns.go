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

// createReturn handles POST /api/returns: it closes the open rental of the
// movie by the customer, charges the fee and puts the copy back in stock.
func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request) {
	var in models.ReturnInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}

	customerID, _ := primitive.ObjectIDFromHex(in.CustomerID)
	movieID, _ := primitive.ObjectIDFromHex(in.MovieID)

	rental, err := h.store.ReturnRental(r.Context(), customerID, movieID, time.Now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeText(w, http.StatusNotFound, "Rental not found.")
		return
	case errors.Is(err, store.ErrAlreadyReturned):
		writeText(w, http.StatusBadRequest, "Return already processed.")
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	h.metrics.RecordRental(metrics.RentalReturned)
	writeJSON(w, http.StatusOK, rental)
}
