package handlers

import (
	"errors"
	"net/http"

	"github.com/arkantrust/vidly/models"
	"github.com/arkantrust/vidly/store"
	"github.com/arkantrust/vidly/validation"
)

// login handles POST /api/auth. The response body is the bare token.
// Unknown emails and wrong passwords get the same answer.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), in.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.internalError(w, r, err)
		return
	}
	if user == nil || !h.auth.ComparePassword(user.Password, in.Password) {
		writeText(w, http.StatusBadRequest, "Invalid email or password.")
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, token)
}
