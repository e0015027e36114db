package handlers

import (
	"net/http"

	"github.com/arkantrust/vidly/models"
	"github.com/arkantrust/vidly/validation"
)

// listCustomers handles GET /api/customers. Sorted by name.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// getCustomer handles GET /api/customers/{id}.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.GetCustomer(r.Context(), pathID(r))
	respond(h, w, r, customer, err, "customer")
}

// createCustomer handles POST /api/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}

	customer := in.Customer()
	if err := h.store.CreateCustomer(r.Context(), &customer); err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// updateCustomer handles PUT /api/customers/{id}. Omitting isGold resets it
// to false: PUT replaces the whole document.
func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}

	customer := in.Customer()
	customer.ID = pathID(r)
	err := h.store.UpdateCustomer(r.Context(), &customer)
	respond(h, w, r, &customer, err, "customer")
}

// deleteCustomer handles DELETE /api/customers/{id}.
func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.DeleteCustomer(r.Context(), pathID(r))
	respond(h, w, r, customer, err, "customer")
}
