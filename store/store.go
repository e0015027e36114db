// Package store provides the document persistence layer of the rental
// backend.
//
// Two backends implement Store. Mongo talks to a MongoDB deployment and is
// what production runs on. Bolt keeps the same documents, BSON encoded, in a
// single BoltDB file, which is handy for local runs and tests: no external
// database process is required.
//
// Both backends give the same guarantees:
//   - Emails are unique across users (ErrDuplicateKey).
//   - Taking a copy of a movie out for a rental is a single conditional step,
//     so concurrent rentals can never drive numberInStock below zero
//     (ErrOutOfStock).
//   - A rental can be returned once (ErrAlreadyReturned).
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arkantrust/vidly/models"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey is returned when a write collides with a unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrOutOfStock is returned when a rental is requested for a movie with
	// no copies left.
	ErrOutOfStock = errors.New("movie not in stock")

	// ErrAlreadyReturned is returned when the only rentals matching a return
	// have already been closed.
	ErrAlreadyReturned = errors.New("rental already returned")
)

// GenreStore persists genres.
type GenreStore interface {
	// ListGenres returns every genre sorted by name.
	ListGenres(ctx context.Context) ([]models.Genre, error)
	GetGenre(ctx context.Context, id primitive.ObjectID) (*models.Genre, error)
	// CreateGenre inserts g, assigning a fresh ID when g.ID is zero.
	CreateGenre(ctx context.Context, g *models.Genre) error
	// UpdateGenre replaces the genre with ID g.ID.
	UpdateGenre(ctx context.Context, g *models.Genre) error
	// DeleteGenre removes a genre and returns the removed document.
	DeleteGenre(ctx context.Context, id primitive.ObjectID) (*models.Genre, error)
}

// MovieStore persists movies.
type MovieStore interface {
	// ListMovies returns every movie sorted by title.
	ListMovies(ctx context.Context) ([]models.Movie, error)
	GetMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	CreateMovie(ctx context.Context, m *models.Movie) error
	UpdateMovie(ctx context.Context, m *models.Movie) error
	DeleteMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
}

// CustomerStore persists customers.
type CustomerStore interface {
	// ListCustomers returns every customer sorted by name.
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
}

// RentalStore persists rentals and keeps movie stock in step with them.
type RentalStore interface {
	// ListRentals returns every rental, most recent dateOut first.
	ListRentals(ctx context.Context) ([]models.Rental, error)
	GetRental(ctx context.Context, id primitive.ObjectID) (*models.Rental, error)

	// CreateRental takes one copy of r.Movie.ID out of stock and records r.
	// It returns ErrOutOfStock when no copy is left and ErrNotFound when the
	// movie no longer exists. Either both writes happen or neither does.
	CreateRental(ctx context.Context, r *models.Rental) error

	// ReturnRental closes the open rental of movieID by customerID at now and
	// puts the copy back in stock. It returns ErrNotFound when the customer
	// never rented the movie and ErrAlreadyReturned when every such rental is
	// already closed.
	ReturnRental(ctx context.Context, customerID, movieID primitive.ObjectID, now time.Time) (*models.Rental, error)
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts u. It returns ErrDuplicateKey when the email is
	// already registered.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is the full persistence surface used by the HTTP handlers.
type Store interface {
	GenreStore
	MovieStore
	CustomerStore
	RentalStore
	UserStore

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// BoltScheme prefixes database URIs that select the embedded Bolt backend,
// e.g. "bolt://vidly.db". Any other URI is handed to the MongoDB driver.
const BoltScheme = "bolt://"

// Open connects to the backend selected by uri.
func Open(ctx context.Context, uri string) (Store, error) {
	if path, ok := strings.CutPrefix(uri, BoltScheme); ok {
		return NewBolt(path)
	}
	return NewMongo(ctx, uri)
}

// Backend names the backend uri selects, for logging without credentials.
func Backend(uri string) string {
	if strings.HasPrefix(uri, BoltScheme) {
		return "bolt"
	}
	return "mongodb"
}
