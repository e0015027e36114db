package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arkantrust/vidly/middleware"
)

// Routes returns the complete HTTP handler: every API route plus /health and
// /metrics, wrapped in request logging, panic recovery and CORS.
func (h *Handler) Routes(origins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(h.metrics))

	r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	authed := middleware.RequireAuthenticated(h.auth)
	byID := middleware.ValidateObjectID

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/genres", h.listGenres).Methods(http.MethodGet)
	api.Handle("/genres", middleware.Chain(http.HandlerFunc(h.createGenre), authed)).Methods(http.MethodPost)
	api.Handle("/genres/{id}", byID(http.HandlerFunc(h.getGenre))).Methods(http.MethodGet)
	api.Handle("/genres/{id}", byID(http.HandlerFunc(h.updateGenre))).Methods(http.MethodPut)
	api.Handle("/genres/{id}", middleware.Chain(http.HandlerFunc(h.deleteGenre), authed, middleware.RequireAdmin, byID)).Methods(http.MethodDelete)

	api.HandleFunc("/movies", h.listMovies).Methods(http.MethodGet)
	api.HandleFunc("/movies", h.createMovie).Methods(http.MethodPost)
	api.Handle("/movies/{id}", byID(http.HandlerFunc(h.getMovie))).Methods(http.MethodGet)
	api.Handle("/movies/{id}", byID(http.HandlerFunc(h.updateMovie))).Methods(http.MethodPut)
	api.Handle("/movies/{id}", byID(http.HandlerFunc(h.deleteMovie))).Methods(http.MethodDelete)

	api.HandleFunc("/customers", h.listCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.createCustomer).Methods(http.MethodPost)
	api.Handle("/customers/{id}", byID(http.HandlerFunc(h.getCustomer))).Methods(http.MethodGet)
	api.Handle("/customers/{id}", byID(http.HandlerFunc(h.updateCustomer))).Methods(http.MethodPut)
	api.Handle("/customers/{id}", byID(http.HandlerFunc(h.deleteCustomer))).Methods(http.MethodDelete)

	api.HandleFunc("/rentals", h.listRentals).Methods(http.MethodGet)
	api.HandleFunc("/rentals", h.createRental).Methods(http.MethodPost)
	api.Handle("/rentals/{id}", byID(http.HandlerFunc(h.getRental))).Methods(http.MethodGet)

	api.Handle("/returns", middleware.Chain(http.HandlerFunc(h.createReturn), authed)).Methods(http.MethodPost)

	api.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	api.Handle("/users/me", middleware.Chain(http.HandlerFunc(h.me), authed)).Methods(http.MethodGet)

	api.HandleFunc("/auth", h.login).Methods(http.MethodPost)

	return middleware.Chain(r,
		middleware.RequestLogger(h.log),
		middleware.Recover(h.log),
		middleware.CORS(origins),
	)
}
