package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/arkantrust/vidly/logging"
)

// TraceHeader carries the request trace ID in both directions.
const TraceHeader = "X-Trace-ID"

// RequestLogger tags each request with a trace ID, taken from TraceHeader or
// freshly generated, stores a log entry carrying it in the context and logs
// the request once it completes.
func RequestLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set(TraceHeader, traceID)

			entry := logger.WithField("trace_id", traceID)
			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r.WithContext(logging.WithEntry(r.Context(), entry)))

			entry.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   wrapped.statusCode,
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}

// Recover turns a panic in a later handler into a 500 response.
func Recover(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logging.FromContext(r.Context(), logger).WithFields(logrus.Fields{
						"panic": v,
						"stack": string(debug.Stack()),
						"path":  r.URL.Path,
					}).Error("handler panicked")
					deny(w, http.StatusInternalServerError, "Something failed.")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
