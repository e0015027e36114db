package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/arkantrust/vidly/auth"
	"github.com/arkantrust/vidly/middleware"
	"github.com/arkantrust/vidly/models"
	"github.com/arkantrust/vidly/store"
	"github.com/arkantrust/vidly/validation"
)

const msgAlreadyRegistered = "User already registered."

// registered is the body returned by POST /api/users.
type registered struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// createUser handles POST /api/users. The new user is logged in straight
// away: the token comes back in the x-auth-token header.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if msg, ok := validation.Decode(r.Body, &in); !ok {
		writeText(w, http.StatusBadRequest, msg)
		return
	}
	ctx := r.Context()

	_, err := h.store.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		writeText(w, http.StatusBadRequest, msgAlreadyRegistered)
		return
	case !errors.Is(err, store.ErrNotFound):
		h.internalError(w, r, err)
		return
	}

	hash, err := h.auth.HashPassword(in.Password)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		writeText(w, http.StatusBadRequest, `"password" length must be less than or equal to 72 bytes long`)
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	user := &models.User{Name: in.Name, Email: in.Email, Password: hash}
	err = h.store.CreateUser(ctx, user)
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		// Lost a race with another registration for the same email.
		writeText(w, http.StatusBadRequest, msgAlreadyRegistered)
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	w.Header().Set(middleware.TokenHeader, token)
	writeJSON(w, http.StatusOK, registered{ID: user.ID, Name: user.Name, Email: user.Email})
}

// me handles GET /api/users/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeText(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}
	id, err := claims.UserID()
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid token.")
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	respond(h, w, r, user, err, "user")
}
