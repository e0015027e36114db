package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidateObjectID answers 404 when the {id} route variable is not a valid
// ObjectId, before any lookup is attempted.
func ValidateObjectID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !primitive.IsValidObjectID(mux.Vars(r)["id"]) {
			deny(w, http.StatusNotFound, "Invalid ID.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
