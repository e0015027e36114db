package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovieSnapshot is the part of a Movie a rental keeps for itself.
type MovieSnapshot struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id"`
	Title           string             `json:"title" bson:"title"`
	DailyRentalRate float64            `json:"dailyRentalRate" bson:"dailyRentalRate"`
}

// Rental records one copy of a movie going out to a customer.
//
// Customer and Movie are copies taken when the rental is created. They keep
// the rate and contact details that applied at the time, whatever happens to
// the source documents afterwards.
type Rental struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Customer Customer           `json:"customer" bson:"customer"`
	Movie    MovieSnapshot      `json:"movie" bson:"movie"`
	DateOut  time.Time          `json:"dateOut" bson:"dateOut"`

	// DateReturned and RentalFee stay nil until the copy comes back.
	DateReturned *time.Time `json:"dateReturned,omitempty" bson:"dateReturned"`
	RentalFee    *float64   `json:"rentalFee,omitempty" bson:"rentalFee"`
}

// NewRental snapshots customer and movie into a rental that starts at now.
func NewRental(customer Customer, movie Movie, now time.Time) Rental {
	return Rental{
		Customer: customer,
		Movie: MovieSnapshot{
			ID:              movie.ID,
			Title:           movie.Title,
			DailyRentalRate: movie.DailyRentalRate,
		},
		DateOut: now.UTC(),
	}
}

// Returned reports whether the rental has been closed.
func (r *Rental) Returned() bool {
	return r.DateReturned != nil
}

// Return closes the rental at now and charges the daily rate for every full
// day the copy was out.
func (r *Rental) Return(now time.Time) {
	now = now.UTC()
	days := int(now.Sub(r.DateOut) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	fee := float64(days) * r.Movie.DailyRentalRate
	r.DateReturned = &now
	r.RentalFee = &fee
}

// RentalInput is the body accepted by POST /api/rentals.
type RentalInput struct {
	CustomerID string `json:"customerId" validate:"required,objectid"`
	MovieID    string `json:"movieId" validate:"required,objectid"`
}

// ReturnInput is the body accepted by POST /api/returns.
type ReturnInput struct {
	CustomerID string `json:"customerId" validate:"required,objectid"`
	MovieID    string `json:"movieId" validate:"required,objectid"`
}
