// Package handlers provides the HTTP handlers of the rental REST API.
//
// Every mutating handler follows the same steps: decode and validate the
// body, look up any entity it references, write through the store, then
// shape the response. Validation failures and bad references answer 400,
// missing documents answer 404, and anything unexpected is logged and
// answered with 500.
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/arkantrust/vidly/auth"
	"github.com/arkantrust/vidly/metrics"
	"github.com/arkantrust/vidly/store"
)

// Handler holds the dependencies shared by all handlers. It is built once at
// startup and only read afterwards.
type Handler struct {
	store   store.Store
	auth    *auth.Service
	log     *logrus.Logger
	metrics *metrics.Metrics
}

// New creates a new Handler.
func New(s store.Store, a *auth.Service, log *logrus.Logger, m *metrics.Metrics) *Handler {
	return &Handler{store: s, auth: a, log: log, metrics: m}
}
