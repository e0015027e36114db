package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arkantrust/vidly/logging"
	"github.com/arkantrust/vidly/store"
)

// writeJSON serialises v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeText writes msg as a plain-text body. Error messages and the login
// token travel this way.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg)) //nolint:errcheck
}

// internalError logs err against the request and answers 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context(), h.log).WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	writeText(w, http.StatusInternalServerError, "Something failed.")
}

// pathID returns the {id} route variable. ValidateObjectID has already
// rejected malformed ids, so the zero value never reaches a store.
func pathID(r *http.Request) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	return id
}

// notFound is the 404 message for an id-addressed lookup of entity.
func notFound(entity string) string {
	return "The " + entity + " with the given ID was not found."
}

// respond answers with doc, or with 404 when err is store.ErrNotFound.
func respond[T any](h *Handler, w http.ResponseWriter, r *http.Request, doc *T, err error, entity string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeText(w, http.StatusNotFound, notFound(entity))
	case err != nil:
		h.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, doc)
	}
}

// reference loads a document named by a request body field. A missing
// document is the client's mistake: 400 "Invalid <entity>.". It reports
// whether the handler may continue.
func reference[T any](h *Handler, w http.ResponseWriter, r *http.Request, entity string, load func() (*T, error)) (*T, bool) {
	doc, err := load()
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeText(w, http.StatusBadRequest, "Invalid "+entity+".")
		return nil, false
	case err != nil:
		h.internalError(w, r, err)
		return nil, false
	}
	return doc, true
}
