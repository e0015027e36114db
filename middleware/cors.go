package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"
)

// CORS lets browser clients on the given origins reach the API. "*" allows
// any origin. The auth token header is both accepted and exposed, since
// registration returns the token in it.
func CORS(origins []string) mux.MiddlewareFunc {
	allowAll := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(origins, origin)) {
				setCORSHeaders(w, origin)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setCORSHeaders(w http.ResponseWriter, origin string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Add("Vary", "Origin")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", TokenHeader, TraceHeader}, ", "))
	h.Set("Access-Control-Expose-Headers", strings.Join([]string{TokenHeader, TraceHeader}, ", "))
}
