package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arkantrust/vidly/auth"
)

// TokenHeader carries the auth token on requests and on registration
// responses.
const TokenHeader = "x-auth-token"

// RequireAuthenticated verifies the token in TokenHeader and stores its
// claims in the request context. A missing token is 401; a token that does
// not verify is 400.
func RequireAuthenticated(svc *auth.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				deny(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			claims, err := svc.VerifyToken(token)
			if err != nil {
				deny(w, http.StatusBadRequest, "Invalid token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin lets through only requests whose claims carry the admin flag.
// It must run after RequireAuthenticated.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin {
			deny(w, http.StatusForbidden, "Access denied.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
