package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/arkantrust/vidly/logging"
)

// health handles GET /health by pinging the store.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.FromContext(r.Context(), h.log).WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
