// Package middleware holds the request interceptors of the HTTP API.
//
// Every interceptor has the shape func(http.Handler) http.Handler: it either
// calls the next handler, possibly with an enriched request context, or
// writes a response itself and stops the pipeline.
package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Chain wraps h so that mws run in the order given, the first one outermost.
func Chain(h http.Handler, mws ...mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// deny writes msg as a plain-text response and ends the pipeline.
func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg)) //nolint:errcheck
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
